package app

import (
	"context"
	"fmt"
	"strings"

	"irisguide/pkg/domain"
)

const recentAlertLimit = 20

// RaiseSOS publishes an alert from an impaired user to the guides sharing its device.
func (a *App) RaiseSOS(ctx context.Context, acct domain.Account, message string) (domain.Alert, error) {
	if a.alerts == nil {
		return domain.Alert{}, ErrAlertsDisabled
	}
	if acct.Role != domain.RoleImpaired {
		return domain.Alert{}, ErrForbidden
	}
	if strings.TrimSpace(acct.DeviceID) == "" {
		return domain.Alert{}, ErrNoDevice
	}
	alert, err := a.alerts.Publish(ctx, domain.Alert{
		UserID:   acct.ID,
		DeviceID: acct.DeviceID,
		Kind:     domain.AlertSOS,
		Message:  strings.TrimSpace(message),
	})
	if err != nil {
		return domain.Alert{}, fmt.Errorf("publish sos: %w", err)
	}
	return alert, nil
}

// ListAlerts returns the newest alerts for the guide's paired device.
func (a *App) ListAlerts(ctx context.Context, acct domain.Account) ([]domain.Alert, error) {
	if a.alerts == nil {
		return nil, ErrAlertsDisabled
	}
	if acct.Role != domain.RoleGuide {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(acct.DeviceID) == "" {
		return nil, ErrNoDevice
	}
	list, err := a.alerts.Recent(ctx, acct.DeviceID, recentAlertLimit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return list, nil
}
