package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/outreachlabs/leadengine/internal/entity"
)

type DenyReason string

const (
	DenyOptedOut          DenyReason = "optedOut"
	DenyDoNotContact      DenyReason = "doNotContact"
	DenyRateLimited       DenyReason = "rateLimited"
	DenyOutsideSendWindow DenyReason = "outsideSendWindow"
)

// Decision is an ordinary value, never an error. Callers branch on it.
type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
	Detail  string     `json:"detail,omitempty"`
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason DenyReason, detail string) Decision {
	return Decision{Allowed: false, Reason: reason, Detail: detail}
}

// ContactCounterStore is a keyed counter with a rolling window, backed by
// storage so limits survive restarts and hold across processes.
type ContactCounterStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
	Peek(ctx context.Context, key string, window time.Duration) (int, error)
}

type ComplianceConfig struct {
	CooldownWindow  time.Duration // minimum gap between contacts to one lead
	MaxPerWindow    int
	SendWindowStart int // minutes from local midnight
	SendWindowEnd   int
}

func DefaultComplianceConfig() ComplianceConfig {
	return ComplianceConfig{
		CooldownWindow:  24 * time.Hour,
		MaxPerWindow:    1,
		SendWindowStart: 9*60 + 30, // 09:30 local
		SendWindowEnd:   11*60 + 30,
	}
}

// ComplianceEngine is the mandatory gate in front of every outbound
// action. The state machine never reads optOut; this is where that
// invariant is enforced.
type ComplianceEngine struct {
	Counters ContactCounterStore
	Audits   entity.AuditLogRepositoryInterface
	Config   ComplianceConfig
	Now      func() time.Time
}

func NewComplianceEngine(counters ContactCounterStore, audits entity.AuditLogRepositoryInterface, config ComplianceConfig) *ComplianceEngine {
	return &ComplianceEngine{
		Counters: counters,
		Audits:   audits,
		Config:   config,
		Now:      time.Now,
	}
}

func (e *ComplianceEngine) CanContact(ctx context.Context, lead *entity.Lead) Decision {
	if lead.OptOut {
		return Deny(DenyOptedOut, "lead has opted out; this is permanent")
	}
	if lead.Status == entity.StatusDoNotContact {
		return Deny(DenyDoNotContact, "lead is in DO_NOT_CONTACT")
	}

	if lead.LastContactedAt != nil {
		elapsed := e.Now().Sub(*lead.LastContactedAt)
		if elapsed < e.Config.CooldownWindow {
			return Deny(DenyRateLimited, fmt.Sprintf("contacted %s ago, cooldown is %s", elapsed.Round(time.Minute), e.Config.CooldownWindow))
		}
	}

	count, err := e.Counters.Peek(ctx, contactKey(lead.ID), e.Config.CooldownWindow)
	if err != nil {
		// Fail closed: when the counter store is unreachable we cannot
		// prove the limit holds.
		return Deny(DenyRateLimited, "rate limit store unavailable: "+err.Error())
	}
	if count >= e.Config.MaxPerWindow {
		return Deny(DenyRateLimited, fmt.Sprintf("%d contact(s) within %s", count, e.Config.CooldownWindow))
	}

	if !e.inSendWindow(lead.Timezone) {
		return Deny(DenyOutsideSendWindow, fmt.Sprintf("outside %s send window for %s", windowLabel(e.Config), tzOrUTC(lead.Timezone)))
	}

	return Allow()
}

// RecordContact bumps the lead's contact counter. Called after a
// successful send.
func (e *ComplianceEngine) RecordContact(ctx context.Context, leadID string) error {
	_, err := e.Counters.Increment(ctx, contactKey(leadID), e.Config.CooldownWindow)
	return err
}

// CanSendOptOutConfirmation allows the single courtesy confirmation after
// an opt-out. Any further message to the lead stays blocked forever.
func (e *ComplianceEngine) CanSendOptOutConfirmation(ctx context.Context, lead *entity.Lead) (bool, error) {
	sent, err := e.Audits.CountByLeadAndAction(ctx, lead.ID, entity.ActionOptOutConfirmation)
	if err != nil {
		return false, err
	}
	return sent == 0, nil
}

func (e *ComplianceEngine) inSendWindow(timezone string) bool {
	loc, err := time.LoadLocation(tzOrUTC(timezone))
	if err != nil {
		loc = time.UTC
	}
	local := e.Now().In(loc)
	minutes := local.Hour()*60 + local.Minute()
	return minutes >= e.Config.SendWindowStart && minutes <= e.Config.SendWindowEnd
}

func contactKey(leadID string) string {
	return "contact:" + leadID
}

func tzOrUTC(timezone string) string {
	if timezone == "" {
		return "UTC"
	}
	return timezone
}

func windowLabel(c ComplianceConfig) string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", c.SendWindowStart/60, c.SendWindowStart%60, c.SendWindowEnd/60, c.SendWindowEnd%60)
}
