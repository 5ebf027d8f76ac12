package notifx

import (
	"html/template"
	"strings"
)

// accountEmails holds every built-in email body as a named definition.
var accountEmails = template.Must(template.New("account").Parse(`
{{define "account_created"}}<p>Hello {{if .FirstName}}{{.FirstName}}{{else}}there{{end}},</p>
<p>An account of type <b>{{.UserType}}</b> was created for {{.Email}}.
Your temporary credentials arrive in a separate email.</p>
{{if .ShiftCode}}<p>Your shift code is <b>{{.ShiftCode}}</b>.</p>{{end}}
{{if .QRCodeURL}}<p><img src="{{.QRCodeURL}}" alt="shift QR code" width="256" height="256"></p>{{end}}{{end}}

{{define "password_reset_by_admin"}}<p>Hello,</p>
<p>The password of {{.Email}} was reset by {{.ResetBy}}. Ask them for the new password
and change it after signing in.</p>{{end}}
`))

func render(name string, data any) (string, error) {
	if accountEmails.Lookup(name) == nil {
		return "", notifxErrors.New(ErrTemplateNotFound).WithDetail("template", name)
	}
	var sb strings.Builder
	if err := accountEmails.ExecuteTemplate(&sb, name, data); err != nil {
		return "", notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name)
	}
	return sb.String(), nil
}
