package errx

// Response is the JSON body rendered for an error.
type Response struct {
	Error     string         `json:"error"`
	Code      string         `json:"code"`
	Type      string         `json:"type"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse builds the client-safe body. INTERNAL errors never expose their message.
func (e *Error) ToResponse(requestID string) Response {
	msg := e.Message
	details := e.Details
	if e.Type == TypeInternal {
		msg = UnexpectedMessage
		details = nil
	}
	return Response{
		Error:     msg,
		Code:      e.Code,
		Type:      string(e.Type),
		RequestID: requestID,
		Details:   details,
	}
}

// Status returns the HTTP status for any error.
func Status(err error) int {
	e := From(err)
	if e.HTTPStatus == 0 {
		return e.Type.HTTPStatus()
	}
	return e.HTTPStatus
}
