package banksdk

import "time"

// Credential is an issued token pair together with its absolute expiry.
// Access and refresh token are always replaced together; the SDK never
// mutates one without the other.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// tokenResponse is the body of a successful /oauth/token exchange.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// TAN challenge kinds as reported by the bank.
const (
	TANKindPush  = "P_TAN_PUSH"
	TANKindPhoto = "P_TAN"
	TANKindSMS   = "M_TAN"
)

// challengeSession is the transient state of one TAN challenge. It lives
// only for the duration of a single Authenticate call.
type challengeSession struct {
	sessionID   string
	challengeID string
	kind        string
	pollPath    string
	createdAt   time.Time
}

// TANStatus is reported to the optional TAN status callback while the SDK
// waits for an out-of-band approval.
type TANStatus string

const (
	TANStatusRequested TANStatus = "requested"
	TANStatusPending   TANStatus = "pending"
	TANStatusApproved  TANStatus = "approved"
	TANStatusTimeout   TANStatus = "timeout"
)

// TANStatusInfo carries context for a TAN status callback invocation.
type TANStatusInfo struct {
	Kind        string
	ChallengeID string
	Elapsed     time.Duration
	Remaining   time.Duration
	Timeout     time.Duration
}

// ReauthReason explains why the SDK gave up on automatic credential
// recovery and a fresh Authenticate call is required.
type ReauthReason string

const (
	// ReauthTokenRefreshFailed: a manually requested refresh failed.
	ReauthTokenRefreshFailed ReauthReason = "token_refresh_failed"

	// ReauthAutomaticRefreshFailed: the background refresh loop failed.
	ReauthAutomaticRefreshFailed ReauthReason = "automatic_refresh_failed"

	// ReauthAPIRequestUnauthorized: a 401 on a live API call could not be
	// recovered by a reactive refresh.
	ReauthAPIRequestUnauthorized ReauthReason = "api_request_unauthorized"
)
