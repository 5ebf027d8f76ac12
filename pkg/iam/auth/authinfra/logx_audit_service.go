package authinfra

import (
	"context"
	"time"

	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/Abraxas-365/staffhub/pkg/logx"
)

// LogxAuditService implements auth.AuditService using structured logx logging.
type LogxAuditService struct{}

func NewLogxAuditService() *LogxAuditService {
	return &LogxAuditService{}
}

func (s *LogxAuditService) LogLoginAttempt(ctx context.Context, email string, success bool, reason string) {
	s.entry(ctx, "login_attempt", logx.Fields{
		"email":   email,
		"success": success,
		"reason":  reason,
	}).Info("Audit: login attempt")
}

func (s *LogxAuditService) LogLogout(ctx context.Context, email string) {
	s.entry(ctx, "logout", logx.Fields{"email": email}).Info("Audit: logout")
}

func (s *LogxAuditService) LogTokenRefresh(ctx context.Context, subjectID string, success bool) {
	s.entry(ctx, "token_refresh", logx.Fields{
		"sub_id":  subjectID,
		"success": success,
	}).Info("Audit: token refresh")
}

func (s *LogxAuditService) LogPasswordEvent(ctx context.Context, email, event string, success bool) {
	s.entry(ctx, "password_"+event, logx.Fields{
		"email":   email,
		"success": success,
	}).Info("Audit: password " + event)
}

func (s *LogxAuditService) LogAccountCreated(ctx context.Context, actorEmail, email string, tier kernel.Tier) {
	s.entry(ctx, "account_created", logx.Fields{
		"actor": actorEmail,
		"email": email,
		"tier":  tier,
	}).Info("Audit: account created")
}

func (s *LogxAuditService) LogAccountDeleted(ctx context.Context, actorEmail, userID string) {
	s.entry(ctx, "account_deleted", logx.Fields{
		"actor":   actorEmail,
		"user_id": userID,
	}).Info("Audit: account deleted")
}

func (s *LogxAuditService) LogArchiveChanged(ctx context.Context, actorEmail, userID string, archived bool) {
	s.entry(ctx, "archive_changed", logx.Fields{
		"actor":    actorEmail,
		"user_id":  userID,
		"archived": archived,
	}).Info("Audit: archive state changed")
}

func (s *LogxAuditService) entry(ctx context.Context, event string, fields logx.Fields) *logx.Entry {
	meta := kernel.RequestMetaFromContext(ctx)
	fields["audit_event"] = event
	fields["ip"] = meta.IP
	fields["user_agent"] = meta.UserAgent
	fields["request_id"] = meta.RequestID
	fields["timestamp"] = time.Now()
	return logx.WithFields(fields)
}
