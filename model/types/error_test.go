package types

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	type testCase struct {
		name   string
		err    error
		expect func(err error) bool
	}
	testCases := []testCase{
		{name: "configuration", err: NewConfigurationError("missing %s", "api key"), expect: IsConfiguration},
		{name: "concurrency", err: &ConcurrencyError{RunID: "r1"}, expect: IsConcurrency},
		{name: "transport", err: NewTransportError("review", errors.New("connection reset")), expect: IsTransport},
		{name: "parse", err: NewParseError("no json", "hello"), expect: IsParse},
		{name: "not found", err: NewNotFoundError("change", "42"), expect: IsNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.expect(tc.err))
			assert.True(t, tc.expect(fmt.Errorf("wrapped: %w", tc.err)))
		})
	}
}

func TestNewTransportError_Timeout(t *testing.T) {
	err := NewTransportError("review", fmt.Errorf("call: %w", context.DeadlineExceeded))
	var transport *TransportError
	if assert.True(t, errors.As(err, &transport)) {
		assert.True(t, transport.Timeout)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
}
