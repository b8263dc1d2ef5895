package markup

import (
	"github.com/emirpasic/gods/stacks/arraystack"
)

// openStyle is a style pushed by an open tag at a given output offset.
type openStyle struct {
	style Style
	start int
}

// styleStack tracks open style tags. Popping a style that is not open is a
// no-op reported through the ok result, never a failure: legacy corpora close
// tags they never opened.
type styleStack struct {
	stack *arraystack.Stack
}

func newStyleStack() *styleStack {
	return &styleStack{stack: arraystack.New()}
}

// Push opens a style at an output offset.
func (s *styleStack) Push(style Style, start int) {
	s.stack.Push(openStyle{style: style, start: start})
}

// Pop closes the innermost open instance of style and returns the offset it was
// opened at. Styles opened after it stay open.
func (s *styleStack) Pop(style Style) (start int, ok bool) {
	var above []openStyle
	defer func() {
		for i := len(above) - 1; i >= 0; i-- {
			s.stack.Push(above[i])
		}
	}()

	for {
		v, found := s.stack.Pop()
		if !found {
			return 0, false
		}
		open := v.(openStyle)
		if open.style == style {
			return open.start, true
		}
		above = append(above, open)
	}
}

// PopAny removes the innermost open style, whatever it is.
func (s *styleStack) PopAny() (openStyle, bool) {
	v, ok := s.stack.Pop()
	if !ok {
		return openStyle{}, false
	}
	return v.(openStyle), true
}

// Len returns the number of open styles.
func (s *styleStack) Len() int {
	return s.stack.Size()
}
