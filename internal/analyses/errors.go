package analyses

import "errors"

var (
	ErrProfileRequired = errors.New("profile is required")
	ErrSportRequired   = errors.New("sport is required")
)

const (
	ErrorCodeValidation         = "validation_error"
	ErrorCodeNotConfigured      = "llm_not_configured"
	ErrorCodeServiceUnavailable = "AI_SERVICE_UNAVAILABLE"
	ErrorCodeMalformedOutput    = "AI_MALFORMED_OUTPUT"
	ErrorCodeTimeout            = "AI_SERVICE_TIMEOUT"
	ErrorCodeInternal           = "internal_error"
)
