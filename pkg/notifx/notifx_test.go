package notifx_test

import (
	"context"
	"strings"
	"testing"

	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/notifx"
)

type recordingSender struct {
	sent []notifx.EmailMessage
	opts []notifx.SendOptions
}

func (r *recordingSender) SendEmail(_ context.Context, msg notifx.EmailMessage, opts ...notifx.Option) error {
	r.sent = append(r.sent, msg)
	r.opts = append(r.opts, notifx.ApplySendOptions(opts))
	return nil
}

func TestAccountCreatedEmail(t *testing.T) {
	rec := &recordingSender{}
	c := notifx.NewClient(rec, "Staffhub <noreply@staffhub.local>", notifx.WithConfigurationSet("staffhub"))

	err := c.AccountCreated(context.Background(), notifx.AccountCreated{
		Email:     "ana@example.com",
		FirstName: "Ana",
		UserType:  "employee",
		ShiftCode: "A1B2C3",
		QRCodeURL: "https://cdn.example.com/e1.png",
	})
	if err != nil {
		t.Fatalf("AccountCreated() error = %v", err)
	}
	if len(rec.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(rec.sent))
	}

	msg := rec.sent[0]
	if msg.From != "Staffhub <noreply@staffhub.local>" {
		t.Errorf("From = %q", msg.From)
	}
	if msg.To[0] != "ana@example.com" {
		t.Errorf("To = %q", msg.To)
	}
	for _, want := range []string{"Ana", "A1B2C3", "https://cdn.example.com/e1.png"} {
		if !strings.Contains(msg.HTMLBody, want) {
			t.Errorf("HTMLBody missing %q", want)
		}
	}

	so := rec.opts[0]
	if so.ConfigurationSet != "staffhub" {
		t.Errorf("ConfigurationSet = %q, want %q", so.ConfigurationSet, "staffhub")
	}
	if so.Tags["event"] != notifx.TemplateAccountCreated {
		t.Errorf("event tag = %q", so.Tags["event"])
	}
	if so.Tags["user_type"] != "employee" {
		t.Errorf("user_type tag = %q", so.Tags["user_type"])
	}
}

func TestAccountCreatedWithoutName(t *testing.T) {
	rec := &recordingSender{}
	c := notifx.NewClient(rec, "noreply@staffhub.local")

	if err := c.AccountCreated(context.Background(), notifx.AccountCreated{Email: "root@example.com", UserType: "director"}); err != nil {
		t.Fatalf("AccountCreated() error = %v", err)
	}
	body := rec.sent[0].HTMLBody
	if !strings.Contains(body, "Hello there") {
		t.Errorf("HTMLBody = %q, want generic greeting", body)
	}
	if strings.Contains(body, "<img") {
		t.Error("HTMLBody should not embed a QR image without a URL")
	}
}

func TestPasswordResetEmail(t *testing.T) {
	rec := &recordingSender{}
	c := notifx.NewClient(rec, "noreply@staffhub.local")

	err := c.PasswordResetByAdmin(context.Background(), notifx.PasswordResetByAdmin{Email: "ana@example.com", ResetBy: "boss@example.com"})
	if err != nil {
		t.Fatalf("PasswordResetByAdmin() error = %v", err)
	}
	if !strings.Contains(rec.sent[0].HTMLBody, "boss@example.com") {
		t.Errorf("HTMLBody = %q, want resetting admin", rec.sent[0].HTMLBody)
	}
}

func TestSendEmailRequiresRecipient(t *testing.T) {
	c := notifx.NewClient(&recordingSender{}, "noreply@staffhub.local")
	err := c.SendEmail(context.Background(), notifx.EmailMessage{Subject: "x"})
	if !errx.HasCode(err, notifx.ErrInvalidMessage) {
		t.Errorf("SendEmail() error = %v, want invalid message", err)
	}
}

func TestUnknownTemplate(t *testing.T) {
	rec := &recordingSender{}
	c := notifx.NewClient(rec, "noreply@staffhub.local")
	err := c.SendTemplate(context.Background(), "missing", nil, notifx.EmailMessage{To: []string{"a@b.co"}, Subject: "x"})
	if !errx.HasCode(err, notifx.ErrTemplateNotFound) {
		t.Errorf("SendTemplate() error = %v, want template not found", err)
	}
	if len(rec.sent) != 0 {
		t.Errorf("sent %d emails, want 0", len(rec.sent))
	}
}
