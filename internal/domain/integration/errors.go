package integration

import "errors"

// ---------------------------------------------------------------------------
// Integration Errors
// ---------------------------------------------------------------------------

var (
	// Configuration errors - fatal, never retried
	ErrUICredentialsMissing = errors.New("integration: UI credentials not configured")
	ErrQuotaExhausted       = errors.New("integration: all API credentials have reached their call quota")

	// Transport errors
	ErrRateLimited     = errors.New("integration: platform rate limited")
	ErrRequestFailed   = errors.New("integration: platform request failed")
	ErrInvalidResponse = errors.New("integration: invalid platform response")

	// Browser session errors - fatal for the current session-acquisition attempt
	ErrLoginFailed     = errors.New("integration: failed to login")
	ErrTwoFactorFailed = errors.New("integration: failed to login twofa")

	// Upsert business errors
	ErrUpsertRejected = errors.New("integration: upsert rejected by platform")
)
