package entity

// Denial reasons returned to clients alongside the error message. These are
// stable API values; changing one is a breaking change.
const (
	ReasonUnauthorizedIdentity = "UNAUTHORIZED_IDENTITY"
	ReasonCooldownActive       = "COOLDOWN_ACTIVE"
	ReasonNoPendingCode        = "NO_PENDING_CODE"
	ReasonCodeExpired          = "CODE_EXPIRED"
	ReasonMaxAttemptsExceeded  = "MAX_ATTEMPTS_EXCEEDED"
	ReasonCodeMismatch         = "CODE_MISMATCH"
	ReasonDeliveryFailed       = "DELIVERY_FAILED"
	ReasonTokenExpired         = "TOKEN_EXPIRED"
	ReasonTokenInvalid         = "TOKEN_INVALID"
)

// RoleAdmin is the role embedded in every session token this service issues.
const RoleAdmin = "admin"
