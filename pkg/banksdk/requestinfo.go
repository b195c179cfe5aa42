package banksdk

import (
	"encoding/json"
	"fmt"
	"time"
)

// requestID derives the bank's 9-digit request ID from the current time
// (last nine digits of the Unix millisecond timestamp).
func requestID(now time.Time) string {
	millis := fmt.Sprintf("%d", now.UnixMilli())
	if len(millis) > 9 {
		millis = millis[len(millis)-9:]
	}
	return millis
}

// requestInfoHeader builds the x-http-request-info header the bank
// requires on every session-scoped call.
func requestInfoHeader(correlationID string, now time.Time) string {
	payload := map[string]any{
		"clientRequestId": map[string]string{
			"sessionId": correlationID,
			"requestId": requestID(now),
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

// sanitizeToken shortens a token for logging: 8-char prefix only.
func sanitizeToken(token string) string {
	const prefix = 8
	if len(token) <= prefix {
		return "***"
	}
	return token[:prefix] + "..."
}
