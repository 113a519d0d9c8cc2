package service

import "errors"

// Domain errors surfaced by the services. Handlers translate these into HTTP
// status codes and machine-readable kinds; none of them are transient, so
// callers must not retry without changing input.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrClassroomNotFound  = errors.New("classroom not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrAttemptNotFound    = errors.New("attempt not found")

	ErrForbidden           = errors.New("insufficient permissions")
	ErrInvalidAttemptState = errors.New("attempt is not in the required state")
	ErrAlreadyCompleted    = errors.New("a completed attempt already exists for this assignment")
	ErrQuestionMismatch    = errors.New("question does not belong to the attempt's assignment")
	ErrInvalidOption       = errors.New("chosen option must be one of A, B, C or D")
	ErrAssignmentClosed    = errors.New("assignment is not open for attempts")

	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrQuestionBankFrozen  = errors.New("questions cannot be modified once attempts exist")
)

// ErrorKind returns the machine-readable kind for a domain error, or the
// empty string for errors outside the taxonomy.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrClassroomNotFound),
		errors.Is(err, ErrAssignmentNotFound),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrAttemptNotFound):
		return "NotFound"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrInvalidAttemptState):
		return "InvalidAttemptState"
	case errors.Is(err, ErrAlreadyCompleted):
		return "AlreadyCompleted"
	case errors.Is(err, ErrQuestionMismatch):
		return "QuestionMismatch"
	case errors.Is(err, ErrInvalidOption):
		return "InvalidOption"
	case errors.Is(err, ErrAssignmentClosed):
		return "AssignmentClosed"
	case errors.Is(err, ErrEmailTaken):
		return "EmailTaken"
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidRefreshToken):
		return "InvalidCredentials"
	case errors.Is(err, ErrQuestionBankFrozen):
		return "QuestionBankFrozen"
	case errors.Is(err, ErrInvalidWindow):
		return "InvalidWindow"
	case errors.Is(err, ErrUnsupportedImage):
		return "UnsupportedImage"
	default:
		return ""
	}
}
