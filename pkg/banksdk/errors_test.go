package banksdk

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMatchingByCode(t *testing.T) {
	err := newError(ErrTANTimeout, 0, "no approval after 60s", nil)

	require.ErrorIs(t, err, ErrTANTimeout)
	require.NotErrorIs(t, err, ErrAuthentication)
}

func TestErrorMatchesThroughWrapping(t *testing.T) {
	inner := newError(ErrValidation, 422, "bad query", nil)
	wrapped := fmt.Errorf("fetching transactions: %w", inner)

	require.ErrorIs(t, wrapped, ErrValidation)

	var sdkErr *Error
	require.ErrorAs(t, wrapped, &sdkErr)
	require.Equal(t, 422, sdkErr.StatusCode)
}

func TestErrorUnwrapExposesCause(t *testing.T) {
	cause := context.DeadlineExceeded
	err := newError(ErrNetworkTimeout, 0, "poll timed out", cause)

	require.ErrorIs(t, err, ErrNetworkTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestErrorString(t *testing.T) {
	err := newError(ErrAccountNotFound, 404, "account not found", nil)
	require.Equal(t, "account_not_found: account not found", err.Error())

	bare := &Error{Code: ErrorCodeServer}
	require.Equal(t, "server_error", bare.Error())
}

func TestMapTransportError(t *testing.T) {
	require.ErrorIs(t,
		mapTransportError(context.DeadlineExceeded, "call failed"),
		ErrNetworkTimeout,
	)
	require.ErrorIs(t,
		mapTransportError(errors.New("connection refused"), "call failed"),
		ErrServer,
	)
}
