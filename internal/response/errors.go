package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Polls ─────────────────────────────────────────────────────────
	ErrPollNotFound         ErrCode = "POLL_NOT_FOUND"
	ErrPollClosed           ErrCode = "POLL_CLOSED"
	ErrInvalidOption        ErrCode = "INVALID_OPTION"
	ErrDuplicateVote        ErrCode = "DUPLICATE_VOTE"
	ErrStudentNotRegistered ErrCode = "STUDENT_NOT_REGISTERED"

	// ─── Classes & Enrollment ──────────────────────────────────────────
	ErrClassNotFound ErrCode = "CLASS_NOT_FOUND"
	ErrClassInactive ErrCode = "CLASS_INACTIVE"

	// ─── Quizzes & Answers ─────────────────────────────────────────────
	ErrQuizNotFound        ErrCode = "QUIZ_NOT_FOUND"
	ErrAnswerSubmitted     ErrCode = "ANSWER_ALREADY_SUBMITTED"
	ErrAnswerRequired      ErrCode = "ANSWER_REQUIRED"
	ErrUnsupportedQuizType ErrCode = "UNSUPPORTED_QUIZ_TYPE"
	ErrAnswerRejected      ErrCode = "ANSWER_REJECTED"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid credentials."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrTeacherAccessOnly:
		return "This resource is restricted to teachers."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrDependencyExists:
		return "This record is still referenced by other data and cannot be deleted."

	// ─── Polls ─────────────────────────────────────────────────────────
	case ErrPollNotFound:
		return "Poll not found."
	case ErrPollClosed:
		return "This poll is closed."
	case ErrInvalidOption:
		return "Invalid option for this poll."
	case ErrDuplicateVote:
		return "You have already voted in this poll."
	case ErrStudentNotRegistered:
		return "You are not registered as a student. Please use your registered name and email."

	// ─── Classes & Enrollment ──────────────────────────────────────────
	case ErrClassNotFound:
		return "Invalid or inactive class code."
	case ErrClassInactive:
		return "This class is not active."

	// ─── Quizzes & Answers ─────────────────────────────────────────────
	case ErrQuizNotFound:
		return "Quiz not found."
	case ErrAnswerSubmitted:
		return "You have already submitted an answer for this quiz."
	case ErrAnswerRequired:
		return "An answer must include answer data or an uploaded file."
	case ErrUnsupportedQuizType:
		return "This quiz type is not supported."
	case ErrAnswerRejected:
		return "The answer does not satisfy the rules of this quiz."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "The file exceeds the size limit."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
