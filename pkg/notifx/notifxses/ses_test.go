package notifxses_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/notifx"
	"github.com/Abraxas-365/staffhub/pkg/notifx/notifxses"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	return &ses.SendEmailOutput{MessageId: aws.String("m-1")}, f.err
}

func TestSendEmailBuildsInput(t *testing.T) {
	fake := &fakeSES{}
	p := notifxses.NewSESProvider(fake, "noreply@staffhub.local")

	err := p.SendEmail(context.Background(), notifx.EmailMessage{
		To:       []string{"ana@example.com"},
		Subject:  "Hi",
		HTMLBody: "<p>hi</p>",
	}, notifx.WithConfigurationSet("cfg"), notifx.WithTag("event", "x"))
	if err != nil {
		t.Fatalf("SendEmail() error = %v", err)
	}

	if got := aws.ToString(fake.input.Source); got != "noreply@staffhub.local" {
		t.Errorf("Source = %q, want default from address", got)
	}
	if got := aws.ToString(fake.input.ConfigurationSetName); got != "cfg" {
		t.Errorf("ConfigurationSetName = %q, want %q", got, "cfg")
	}
	if len(fake.input.Tags) != 1 {
		t.Errorf("Tags = %d, want 1", len(fake.input.Tags))
	}
	if fake.input.Message.Body.Text != nil {
		t.Error("Text body should be nil when only HTML is set")
	}
}

func TestSendEmailWrapsFailure(t *testing.T) {
	p := notifxses.NewSESProvider(&fakeSES{err: errors.New("throttled")}, "noreply@staffhub.local")
	err := p.SendEmail(context.Background(), notifx.EmailMessage{To: []string{"a@b.co"}, Subject: "x"})
	if !errx.HasCode(err, notifxses.ErrSendFailed) {
		t.Errorf("SendEmail() error = %v, want SES send failure", err)
	}
}
