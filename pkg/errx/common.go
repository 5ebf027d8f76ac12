package errx

// UnexpectedMessage is the only text ever shown for INTERNAL errors.
const UnexpectedMessage = "An unexpected error occurred, please try again"

func Validation(message string) *Error { return New(message, TypeValidation) }

func Unauthenticated(message string) *Error { return New(message, TypeAuthentication) }

// Internal carries message to the logs; clients see UnexpectedMessage.
func Internal(message string) *Error { return New(message, TypeInternal) }
