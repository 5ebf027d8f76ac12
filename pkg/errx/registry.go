package errx

// ErrorCode is a registered code with its fixed message.
type ErrorCode struct {
	Code       string
	Type       Type
	HTTPStatus int
	Message    string
}

// Registry owns the codes of one bounded context. Codes are registered in
// package-level var blocks, so it needs no locking.
type Registry struct {
	prefix string
	codes  map[string]struct{}
}

func NewRegistry(prefix string) *Registry {
	return &Registry{prefix: prefix, codes: make(map[string]struct{})}
}

// Register returns the code PREFIX_CODE. Registering the same code twice is
// a programming error and panics.
func (r *Registry) Register(code string, errType Type, httpStatus int, message string) *ErrorCode {
	full := r.prefix + "_" + code
	if _, dup := r.codes[full]; dup {
		panic("errx: duplicate error code " + full)
	}
	r.codes[full] = struct{}{}
	if httpStatus == 0 {
		httpStatus = errType.HTTPStatus()
	}
	return &ErrorCode{Code: full, Type: errType, HTTPStatus: httpStatus, Message: message}
}

func (r *Registry) New(code *ErrorCode) *Error {
	return &Error{
		Code:       code.Code,
		Message:    code.Message,
		Type:       code.Type,
		HTTPStatus: code.HTTPStatus,
	}
}

// NewWithMessage keeps the code but replaces the client-facing text.
func (r *Registry) NewWithMessage(code *ErrorCode, message string) *Error {
	e := r.New(code)
	e.Message = message
	return e
}

func (r *Registry) NewWithCause(code *ErrorCode, cause error) *Error {
	e := r.New(code)
	e.Err = cause
	return e
}
