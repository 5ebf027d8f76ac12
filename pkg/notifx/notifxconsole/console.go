// Package notifxconsole logs emails instead of sending them. Local
// development uses it so provisioning works without SES credentials.
package notifxconsole

import (
	"context"
	"strings"

	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/Abraxas-365/staffhub/pkg/notifx"
)

type ConsoleProvider struct{}

func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{}
}

func (p *ConsoleProvider) SendEmail(_ context.Context, msg notifx.EmailMessage, opts ...notifx.Option) error {
	so := notifx.ApplySendOptions(opts)

	fields := logx.Fields{
		"from":    msg.From,
		"to":      strings.Join(msg.To, ","),
		"subject": msg.Subject,
	}
	for k, v := range so.Tags {
		fields["tag."+k] = v
	}
	logx.WithFields(fields).Info("email (console)")

	if msg.HTMLBody != "" {
		logx.Debugf("email body:\n%s", msg.HTMLBody)
	} else if msg.TextBody != "" {
		logx.Debugf("email body:\n%s", msg.TextBody)
	}
	return nil
}
