package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/outreachlabs/leadengine/internal/entity"
	"github.com/outreachlabs/leadengine/internal/usecase"
)

// 10:00 UTC, inside the default 09:30-11:30 window.
var insideWindow = time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)

func newTestEngine(counters *MockContactCounterStore, audits *MockAuditLogRepository) *usecase.ComplianceEngine {
	engine := usecase.NewComplianceEngine(counters, audits, usecase.DefaultComplianceConfig())
	engine.Now = func() time.Time { return insideWindow }
	return engine
}

func activeLead() *entity.Lead {
	return &entity.Lead{ID: "lead-1", Email: "jane@acme.com", Status: entity.StatusResearching}
}

func TestCanContactAllowsCleanLead(t *testing.T) {
	counters := new(MockContactCounterStore)
	counters.On("Peek", mock.Anything, "contact:lead-1", mock.Anything).Return(0, nil)

	engine := newTestEngine(counters, new(MockAuditLogRepository))
	decision := engine.CanContact(context.Background(), activeLead())

	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.Reason)
}

func TestCanContactOptOutIsPermanent(t *testing.T) {
	engine := newTestEngine(new(MockContactCounterStore), new(MockAuditLogRepository))

	lead := activeLead()
	lead.OptOut = true
	// Even a lead whose status moved on stays blocked once optOut is set.
	lead.Status = entity.StatusNegotiating

	decision := engine.CanContact(context.Background(), lead)
	assert.False(t, decision.Allowed)
	assert.Equal(t, usecase.DenyOptedOut, decision.Reason)
}

func TestCanContactDoNotContactStatus(t *testing.T) {
	engine := newTestEngine(new(MockContactCounterStore), new(MockAuditLogRepository))

	lead := activeLead()
	lead.Status = entity.StatusDoNotContact

	decision := engine.CanContact(context.Background(), lead)
	assert.False(t, decision.Allowed)
	assert.Equal(t, usecase.DenyDoNotContact, decision.Reason)
}

func TestCanContactCooldown(t *testing.T) {
	engine := newTestEngine(new(MockContactCounterStore), new(MockAuditLogRepository))

	lead := activeLead()
	contacted := insideWindow.Add(-2 * time.Hour)
	lead.LastContactedAt = &contacted

	decision := engine.CanContact(context.Background(), lead)
	assert.False(t, decision.Allowed)
	assert.Equal(t, usecase.DenyRateLimited, decision.Reason)
}

func TestCanContactRateLimitFromCounter(t *testing.T) {
	counters := new(MockContactCounterStore)
	counters.On("Peek", mock.Anything, "contact:lead-1", mock.Anything).Return(1, nil)

	engine := newTestEngine(counters, new(MockAuditLogRepository))
	decision := engine.CanContact(context.Background(), activeLead())

	assert.False(t, decision.Allowed)
	assert.Equal(t, usecase.DenyRateLimited, decision.Reason)
}

func TestCanContactFailsClosedOnCounterError(t *testing.T) {
	counters := new(MockContactCounterStore)
	counters.On("Peek", mock.Anything, mock.Anything, mock.Anything).Return(0, errors.New("connection refused"))

	engine := newTestEngine(counters, new(MockAuditLogRepository))
	decision := engine.CanContact(context.Background(), activeLead())

	assert.False(t, decision.Allowed)
	assert.Equal(t, usecase.DenyRateLimited, decision.Reason)
}

func TestCanContactOutsideSendWindow(t *testing.T) {
	counters := new(MockContactCounterStore)
	counters.On("Peek", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)

	engine := newTestEngine(counters, new(MockAuditLogRepository))
	engine.Now = func() time.Time {
		return time.Date(2026, time.March, 3, 15, 0, 0, 0, time.UTC)
	}

	decision := engine.CanContact(context.Background(), activeLead())
	assert.False(t, decision.Allowed)
	assert.Equal(t, usecase.DenyOutsideSendWindow, decision.Reason)
}

func TestSendWindowUsesLeadTimezone(t *testing.T) {
	counters := new(MockContactCounterStore)
	counters.On("Peek", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)

	engine := newTestEngine(counters, new(MockAuditLogRepository))
	// 15:00 UTC is 10:00 in New York that day, inside the window there.
	engine.Now = func() time.Time {
		return time.Date(2026, time.March, 3, 15, 0, 0, 0, time.UTC)
	}

	lead := activeLead()
	lead.Timezone = "America/New_York"

	decision := engine.CanContact(context.Background(), lead)
	assert.True(t, decision.Allowed)
}

func TestOptOutConfirmationAllowedExactlyOnce(t *testing.T) {
	audits := new(MockAuditLogRepository)
	audits.On("CountByLeadAndAction", mock.Anything, "lead-1", entity.ActionOptOutConfirmation).Return(0, nil).Once()
	audits.On("CountByLeadAndAction", mock.Anything, "lead-1", entity.ActionOptOutConfirmation).Return(1, nil)

	engine := newTestEngine(new(MockContactCounterStore), audits)
	lead := activeLead()
	lead.OptOut = true

	allowed, err := engine.CanSendOptOutConfirmation(context.Background(), lead)
	assert.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = engine.CanSendOptOutConfirmation(context.Background(), lead)
	assert.NoError(t, err)
	assert.False(t, allowed)
}
