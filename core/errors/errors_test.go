package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      *NotFoundError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with ID",
			err:      &NotFoundError{Resource: "lexicon entry", ID: "H0430"},
			wantMsg:  "lexicon entry not found: H0430",
			wantBase: ErrNotFound,
		},
		{
			name:     "without ID",
			err:      &NotFoundError{Resource: "verse"},
			wantMsg:  "verse not found",
			wantBase: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("disk error")
		err := &NotFoundError{Resource: "book", ID: "1", Err: underlyingErr}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestUnavailableError(t *testing.T) {
	cause := fmt.Errorf("no such file")
	err := NewUnavailable("lexicon", cause)

	if got, want := err.Error(), "lexicon temporarily unavailable: no such file"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("errors.Is(err, ErrUnavailable) = false, want true")
	}
	if !errors.Is(err, ErrLexiconUnavailable) {
		t.Error("errors.Is(err, ErrLexiconUnavailable) = false, want true")
	}
	if errors.Is(NewUnavailable("bible", nil), ErrLexiconUnavailable) {
		t.Error("a bible UnavailableError must not match ErrLexiconUnavailable")
	}
	if err.Cause() != cause {
		t.Errorf("Cause() = %v, want %v", err.Cause(), cause)
	}

	wrapped := fmt.Errorf("vocabulary: %w", err)
	var ue *UnavailableError
	if !As(wrapped, &ue) || ue.Resource != "lexicon" {
		t.Errorf("As() did not recover the UnavailableError from %v", wrapped)
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidation("data_dir", "must not be empty")
	if got, want := err.Error(), "validation failed for data_dir: must not be empty"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should unwrap to ErrInvalidInput")
	}

	noField := &ValidationError{Message: "bad"}
	if got, want := noField.Error(), "validation failed: bad"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIOError(t *testing.T) {
	base := fmt.Errorf("database is locked")
	err := NewIO("query", "lexicon.SQLite3", base)
	if got, want := err.Error(), "failed to query lexicon.SQLite3: database is locked"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, base) {
		t.Error("IOError should unwrap to its cause")
	}

	noPath := NewIO("scan", "", base)
	if got, want := noPath.Error(), "failed to scan: database is locked"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParseError(t *testing.T) {
	err := NewParse("reference", "Gen x", "unexpected token")
	if got, want := err.Error(), `failed to parse reference "Gen x": unexpected token`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ParseError should unwrap to ErrInvalidInput")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "ctx %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	err := Wrapf(ErrNotFound, "lookup %s", "H0001")
	if got, want := err.Error(), "lookup H0001: not found"; got != want {
		t.Errorf("Wrapf() = %q, want %q", got, want)
	}
	if !Is(err, ErrNotFound) {
		t.Error("Is() should see through Wrapf")
	}
	if got, want := Wrap(ErrUnsupported, "rtf").Error(), "rtf: unsupported"; got != want {
		t.Errorf("Wrap() = %q, want %q", got, want)
	}
}

func TestJoin(t *testing.T) {
	if Join() != nil {
		t.Error("Join() with no errors should be nil")
	}
	if Join(nil, nil) != nil {
		t.Error("Join(nil, nil) should be nil")
	}
	err := Join(NewNotFound("verse", "1:1:1"), NewIO("close", "/tmp/x", ErrUnsupported))
	if !Is(err, ErrNotFound) || !Is(err, ErrUnsupported) {
		t.Errorf("joined error should match both causes: %v", err)
	}
}
