package errx

// Type is the category an error is rendered under. Each maps to one status
// family unless the registered code says otherwise.
type Type string

const (
	TypeValidation     Type = "VALIDATION"     // missing or malformed input
	TypeAuthentication Type = "AUTHENTICATION" // no usable credential
	TypeAuthorization  Type = "AUTHORIZATION"  // tier or placement denies the action
	TypeNotFound       Type = "NOT_FOUND"
	TypeConflict       Type = "CONFLICT" // duplicates and blocked deletes
	TypeExternal       Type = "EXTERNAL" // identity provider failures
	TypeInternal       Type = "INTERNAL"
)

func (t Type) String() string { return string(t) }

var typeStatus = map[Type]int{
	TypeValidation:     400,
	TypeAuthentication: 401,
	TypeAuthorization:  403,
	TypeNotFound:       404,
	TypeConflict:       409,
	TypeExternal:       502,
}

// HTTPStatus is the default status for t; unknown types are 500.
func (t Type) HTTPStatus() int {
	if s, ok := typeStatus[t]; ok {
		return s
	}
	return 500
}
