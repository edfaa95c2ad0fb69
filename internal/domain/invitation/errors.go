package invitation

import "errors"

var (
	ErrInvalidCodeFormat    = errors.New("invalid invitation code format")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationExpired    = errors.New("invitation expired")
	ErrAlreadyInFamily      = errors.New("already in family")
	ErrFamilyNotFound       = errors.New("family not found")
	ErrCodeTaken            = errors.New("invitation code taken")
	ErrCodeGenerationFailed = errors.New("invitation code generation failed")
	ErrInvalidEmail         = errors.New("invalid email")
	ErrDeliveryFailed       = errors.New("invitation delivery failed")
)

// FormatError carries the validator result for a rejected code.
type FormatError struct {
	Result FormatResult
}

func (e *FormatError) Error() string {
	return e.Result.FirstError()
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidCodeFormat
}
