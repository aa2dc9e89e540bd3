package model

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// timeoutErr mimics a driver error whose message does not mention the context.
type timeoutErr struct{ cause error }

func (e timeoutErr) Error() string { return "statement aborted" }
func (e timeoutErr) Unwrap() error { return e.cause }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", fmt.Errorf("horsepower: %w", ErrValidation), ErrorTypeValidation},
		{"no offers", fmt.Errorf("listing abc: %w", ErrNoOffers), ErrorTypeNoOffers},
		{"missing retail price", ErrMissingRetailPrice, ErrorTypeMissingRetailPrice},
		{"panic", fmt.Errorf("%w: boom", ErrItemPanic), ErrorTypePanic},
		{"wrapped canceled", fmt.Errorf("load listings: %w", context.Canceled), ErrorTypeCancelled},
		{"wrapped deadline", fmt.Errorf("load listings: %w", context.DeadlineExceeded), ErrorTypeCancelled},
		{"canceled behind opaque message", timeoutErr{cause: context.Canceled}, ErrorTypeCancelled},
		{"deadline behind opaque message", timeoutErr{cause: context.DeadlineExceeded}, ErrorTypeCancelled},
		{"database", errors.New("dial tcp 127.0.0.1:5432: connection refused"), ErrorTypeDatabase},
		{"unknown", errors.New("something odd"), ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}
