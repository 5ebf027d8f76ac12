package notifx

import "github.com/Abraxas-365/staffhub/pkg/errx"

var notifxErrors = errx.NewRegistry("NOTIFX")

var (
	ErrInvalidMessage   = notifxErrors.Register("INVALID_MESSAGE", errx.TypeValidation, 400, "Invalid email message")
	ErrTemplateNotFound = notifxErrors.Register("TEMPLATE_NOT_FOUND", errx.TypeInternal, 500, "Email template not found")
	ErrTemplateRender   = notifxErrors.Register("TEMPLATE_RENDER", errx.TypeInternal, 500, "Failed to render email template")
)
