package service

import (
	"context"
	"sort"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/pkg/device"
	"github.com/sirupsen/logrus"
)

// History limits.
const (
	historyLimit = 50
	recentLimit  = 10
)

// LoginHistoryService records and summarizes login events.
type LoginHistoryService struct {
	repo LoginEventStore
	log  logrus.FieldLogger
	now  func() time.Time
}

// NewLoginHistoryService creates a new LoginHistoryService.
func NewLoginHistoryService(repo LoginEventStore, log logrus.FieldLogger) *LoginHistoryService {
	return &LoginHistoryService{repo: repo, log: log, now: time.Now}
}

// Record appends one event. Failures are logged and never fail the login.
func (s *LoginHistoryService) Record(ctx context.Context, acct *domain.Account, info device.Info, meta domain.RequestMeta, method domain.LoginMethod, requireOTP, success bool) {
	e := &domain.LoginEvent{
		ID:         domain.NewID(),
		UserID:     acct.ID,
		Browser:    info.Browser,
		OS:         info.OS,
		DeviceType: info.DeviceType,
		IPAddress:  meta.IPAddress,
		Method:     method,
		RequireOTP: requireOTP,
		Success:    success,
		LoginTime:  s.now(),
	}
	if acct.Email != nil {
		e.Email = *acct.Email
	}
	if acct.Phone != nil {
		e.Phone = *acct.Phone
	}
	if err := s.repo.Append(ctx, e); err != nil {
		s.log.WithError(err).WithField("user_id", acct.ID).Warn("failed to record login event")
	}
}

// History returns the newest events.
func (s *LoginHistoryService) History(ctx context.Context, userID string) ([]*domain.LoginEvent, error) {
	events, err := s.repo.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, domain.ErrInternal("failed to load login history", err)
	}
	return events, nil
}

// Recent returns the last few events.
func (s *LoginHistoryService) Recent(ctx context.Context, userID string) ([]*domain.LoginEvent, error) {
	events, err := s.repo.ListByUser(ctx, userID, recentLimit)
	if err != nil {
		return nil, domain.ErrInternal("failed to load login history", err)
	}
	return events, nil
}

// Stats summarizes every recorded event for the account.
func (s *LoginHistoryService) Stats(ctx context.Context, userID string) (*domain.LoginStats, error) {
	events, err := s.repo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, domain.ErrInternal("failed to load login history", err)
	}

	stats := &domain.LoginStats{DevicesUsed: []string{}, BrowsersUsed: []string{}}
	devices := map[string]bool{}
	browsers := map[string]bool{}
	for _, e := range events {
		if !e.Success {
			stats.FailedLogins++
			continue
		}
		stats.TotalLogins++
		devices[e.DeviceType] = true
		browsers[e.Browser] = true
		if stats.LastLogin == nil || e.LoginTime.After(stats.LastLogin.LoginTime) {
			stats.LastLogin = e
		}
	}
	for d := range devices {
		stats.DevicesUsed = append(stats.DevicesUsed, d)
	}
	for b := range browsers {
		stats.BrowsersUsed = append(stats.BrowsersUsed, b)
	}
	sort.Strings(stats.DevicesUsed)
	sort.Strings(stats.BrowsersUsed)
	stats.UniqueDevices = len(stats.DevicesUsed)
	return stats, nil
}
