package notifx

import (
	"context"
)

// EmailSender sends a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error
}

// AccountNotifier delivers account lifecycle emails. Callers treat failures
// as best effort.
type AccountNotifier interface {
	AccountCreated(ctx context.Context, data AccountCreated) error
	PasswordResetByAdmin(ctx context.Context, data PasswordResetByAdmin) error
}

const (
	TemplateAccountCreated = "account_created"
	TemplatePasswordReset  = "password_reset_by_admin"
)

// Client renders account emails and hands them to an EmailSender.
type Client struct {
	provider EmailSender
	from     string
	opts     []Option
}

// NewClient returns a client sending as from. opts apply to every message.
func NewClient(provider EmailSender, from string, opts ...Option) *Client {
	return &Client{provider: provider, from: from, opts: opts}
}

func (c *Client) SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error {
	if len(msg.To) == 0 {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients")
	}
	if msg.Subject == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty subject")
	}
	if msg.From == "" {
		msg.From = c.from
	}
	all := make([]Option, 0, len(c.opts)+len(opts))
	all = append(all, c.opts...)
	return c.provider.SendEmail(ctx, msg, append(all, opts...)...)
}

// SendTemplate renders the named account template as the HTML body of msg.
func (c *Client) SendTemplate(ctx context.Context, name string, data any, msg EmailMessage, opts ...Option) error {
	body, err := render(name, data)
	if err != nil {
		return err
	}
	msg.HTMLBody = body
	return c.SendEmail(ctx, msg, append(opts, WithTag("event", name))...)
}

func (c *Client) AccountCreated(ctx context.Context, data AccountCreated) error {
	return c.SendTemplate(ctx, TemplateAccountCreated, data, EmailMessage{
		To:      []string{data.Email},
		Subject: "Welcome to the employee management system",
	}, WithTag("user_type", data.UserType))
}

func (c *Client) PasswordResetByAdmin(ctx context.Context, data PasswordResetByAdmin) error {
	return c.SendTemplate(ctx, TemplatePasswordReset, data, EmailMessage{
		To:      []string{data.Email},
		Subject: "Your password was reset",
	})
}
