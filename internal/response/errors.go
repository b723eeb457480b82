package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrRecordNotFound ErrCode = "RECORD_NOT_FOUND"
	ErrUnknownClass   ErrCode = "UNKNOWN_CLASS"

	// ─── Attendance ────────────────────────────────────────────────────
	ErrScanRejected        ErrCode = "SCAN_REJECTED"
	ErrSessionActive       ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionNotFound     ErrCode = "SESSION_NOT_FOUND"
	ErrSessionsUnsupported ErrCode = "SESSIONS_UNSUPPORTED"
	ErrQRNotGenerated      ErrCode = "QR_NOT_GENERATED"

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
		return "Invalid ID or Password"
	case ErrSessionInvalidated:
		return "Your session ended because you signed in on another device."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrStudentAccessOnly:
		return "This resource is for students only."
	case ErrTeacherAccessOnly:
		return "This resource is for teachers only."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Some fields are invalid."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request body is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrRecordNotFound:
		return "Attendance record not found!"
	case ErrUnknownClass:
		return "Invalid Class ID"

	// ─── Attendance ────────────────────────────────────────────────────
	case ErrScanRejected:
		return "Scan rejected."
	case ErrSessionActive:
		return "This class already has an open session."
	case ErrSessionNotFound:
		return "No open session with this ID for your class."
	case ErrSessionsUnsupported:
		return "Class sessions require the database storage backend."
	case ErrQRNotGenerated:
		return "No QR code has been generated for this class yet."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
