// Package banksdk is a client SDK for the comdirect banking API.
//
// It drives the multi-step photoTAN/push-TAN login flow, keeps the issued
// credential pair (access + refresh token) rotated before expiry, retries
// unauthorized API calls after a reactive refresh, and can persist tokens
// to a restricted-permission file so a process restart does not require a
// new TAN approval.
//
// A Client is created once via New, authenticated via Authenticate, and
// then used for banking calls (AccountBalances, AccountTransactions) or
// raw requests via Do. Close stops the background refresh loop and removes
// the persisted token file.
package banksdk
