package handler

const (
	errInternalServer = "Internal server error"

	// Deliberately generic: does not reveal whether the link was
	// malformed, expired, or tampered with.
	errInvalidLink = "invalid or expired link, request a new one"

	errDeliveryFailed = "failed to send email, try again"
)
