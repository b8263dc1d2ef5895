package logging

import (
	"context"

	"github.com/google/uuid"
)

// NewRequestID returns a random request ID.
func NewRequestID() string {
	return uuid.NewString()
}

// StartRequest returns ctx carrying a request ID, generating one unless ctx
// already has one.
func StartRequest(ctx context.Context) context.Context {
	if GetRequestID(ctx) != "" {
		return ctx
	}
	return WithRequestID(ctx, NewRequestID())
}
