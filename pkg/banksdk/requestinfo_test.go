package banksdk

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRequestIDIsNineDigits(t *testing.T) {
	id := requestID(time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))
	require.Len(t, id, 9)
	require.Regexp(t, `^\d{9}$`, id)
}

func TestRequestInfoHeaderShape(t *testing.T) {
	header := requestInfoHeader("corr-123", time.Now())

	var payload struct {
		ClientRequestID struct {
			SessionID string `json:"sessionId"`
			RequestID string `json:"requestId"`
		} `json:"clientRequestId"`
	}
	require.NoError(t, json.Unmarshal([]byte(header), &payload))
	require.Equal(t, "corr-123", payload.ClientRequestID.SessionID)
	require.Len(t, payload.ClientRequestID.RequestID, 9)
}

func TestSanitizeToken(t *testing.T) {
	require.Equal(t, "abcdefgh...", sanitizeToken("abcdefghijklmnop"))
	require.Equal(t, "***", sanitizeToken("short"))
	require.Equal(t, "***", sanitizeToken(""))
}
