package domain

import (
	"errors"
	"strings"
)

// Business rule violations. The text is shown to the user as is.
var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrEmailTaken         = errors.New("This email is already in use")

	ErrCompanyEmailTaken = errors.New("This email is already used by another company")
	ErrCompanyHasOffers  = errors.New("This company cannot be deleted: job offers are still attached to it")
	ErrCompanyNotFound   = errors.New("Company not found")
	ErrOfferNotFound     = errors.New("Offer not found")

	ErrOfferUnavailable        = errors.New("Offer not found or archived")
	ErrAlreadyApplied          = errors.New("You have already applied to this offer")
	ErrAcceptedApplicationLock = errors.New("You already have an accepted application. You can no longer apply to other offers.")
	ErrCoverLetterRequired     = errors.New("A cover letter is required")

	ErrInvalidStatus       = errors.New("Invalid status")
	ErrInvalidTransition   = errors.New("This status change is not allowed")
	ErrApplicationNotFound = errors.New("Application not found")
	ErrStudentNotFound     = errors.New("Student not found")
)

// ValidationError carries every rule the input broke.
type ValidationError struct {
	Messages []string
}

func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

func (e *ValidationError) Error() string { return strings.Join(e.Messages, "; ") }

// Messages returns the user-facing messages of err: the validation list, or
// the error text of a known business error.
func Messages(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Messages
	}
	if IsBusiness(err) {
		return []string{err.Error()}
	}
	return nil
}

var business = []error{
	ErrInvalidCredentials, ErrEmailTaken, ErrCompanyEmailTaken, ErrCompanyHasOffers,
	ErrCompanyNotFound, ErrOfferNotFound, ErrOfferUnavailable, ErrAlreadyApplied,
	ErrAcceptedApplicationLock, ErrCoverLetterRequired, ErrInvalidStatus,
	ErrInvalidTransition, ErrApplicationNotFound, ErrStudentNotFound,
}

// IsBusiness reports whether err is one of the sentinel rule violations.
func IsBusiness(err error) bool {
	for _, b := range business {
		if errors.Is(err, b) {
			return true
		}
	}
	return false
}
