package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/outreachlabs/leadengine/internal/entity"
	"github.com/outreachlabs/leadengine/internal/usecase"
)

func TestTransitionLegalEdge(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	store := new(MockTransitionStore)

	lead := &entity.Lead{ID: "lead-1", Email: "jane@acme.com", Status: entity.StatusNew}
	leads.On("FindByID", ctx, "lead-1").Return(lead, nil)
	store.On("ApplyTransition", ctx, "lead-1", entity.StatusNew, entity.StatusResearching, false, mock.Anything).Return(nil)

	service := usecase.NewStatusService(leads, store)
	updated, err := service.Transition(ctx, usecase.TransitionRequest{
		LeadID:    "lead-1",
		To:        entity.StatusResearching,
		Reasoning: "Enrichment finished",
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusResearching, updated.Status)

	// The audit entry carries the edge and defaults to STATUS_CHANGED.
	audit := store.Calls[0].Arguments.Get(5).(*entity.AuditLogEntry)
	assert.Equal(t, entity.ActionStatusChanged, audit.Action)
	assert.Equal(t, "NEW", audit.Metadata["from"])
	assert.Equal(t, "RESEARCHING", audit.Metadata["to"])
}

func TestTransitionIllegalEdgeWritesNothing(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	store := new(MockTransitionStore)

	lead := &entity.Lead{ID: "lead-1", Email: "jane@acme.com", Status: entity.StatusNew}
	leads.On("FindByID", ctx, "lead-1").Return(lead, nil)

	service := usecase.NewStatusService(leads, store)
	_, err := service.Transition(ctx, usecase.TransitionRequest{
		LeadID: "lead-1",
		To:     entity.StatusConverted,
	})

	assert.Error(t, err)
	assert.True(t, usecase.IsInvalidTransition(err))
	store.AssertNotCalled(t, "ApplyTransition")
}

func TestTransitionFromTerminalStateRejected(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	store := new(MockTransitionStore)

	lead := &entity.Lead{ID: "lead-1", Email: "jane@acme.com", Status: entity.StatusDoNotContact}
	leads.On("FindByID", ctx, "lead-1").Return(lead, nil)

	service := usecase.NewStatusService(leads, store)
	_, err := service.Transition(ctx, usecase.TransitionRequest{
		LeadID: "lead-1",
		To:     entity.StatusContacted,
	})

	assert.True(t, usecase.IsInvalidTransition(err))
	store.AssertNotCalled(t, "ApplyTransition")
}

func TestTransitionSameStatusIsNoOp(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	store := new(MockTransitionStore)

	lead := &entity.Lead{ID: "lead-1", Email: "jane@acme.com", Status: entity.StatusContacted}
	leads.On("FindByID", ctx, "lead-1").Return(lead, nil)

	service := usecase.NewStatusService(leads, store)
	updated, err := service.Transition(ctx, usecase.TransitionRequest{
		LeadID: "lead-1",
		To:     entity.StatusContacted,
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusContacted, updated.Status)
	// No change means no audit entry.
	store.AssertNotCalled(t, "ApplyTransition")
}

func TestTransitionRaisesEngagementScore(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	store := new(MockTransitionStore)

	lead := &entity.Lead{ID: "lead-1", Email: "jane@acme.com", Status: entity.StatusReplied, Score: 55}
	leads.On("FindByID", ctx, "lead-1").Return(lead, nil)
	store.On("ApplyTransition", ctx, "lead-1", entity.StatusReplied, entity.StatusInterested, false, mock.Anything).Return(nil)

	service := usecase.NewStatusService(leads, store)
	updated, err := service.Transition(ctx, usecase.TransitionRequest{
		LeadID:    "lead-1",
		To:        entity.StatusInterested,
		Reasoning: "Positive reply",
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusInterested.EngagementScore(), updated.Score)
}

func TestTransitionNeverLowersScore(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	store := new(MockTransitionStore)

	lead := &entity.Lead{ID: "lead-1", Email: "jane@acme.com", Status: entity.StatusNegotiating, Score: 85}
	leads.On("FindByID", ctx, "lead-1").Return(lead, nil)
	store.On("ApplyTransition", ctx, "lead-1", entity.StatusNegotiating, entity.StatusDoNotContact, true, mock.Anything).Return(nil)

	service := usecase.NewStatusService(leads, store)
	updated, err := service.Transition(ctx, usecase.TransitionRequest{
		LeadID:    "lead-1",
		To:        entity.StatusDoNotContact,
		SetOptOut: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, 85, updated.Score)
}

func TestTransitionConflictSurfaces(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	store := new(MockTransitionStore)

	lead := &entity.Lead{ID: "lead-1", Email: "jane@acme.com", Status: entity.StatusReplied}
	leads.On("FindByID", ctx, "lead-1").Return(lead, nil)
	store.On("ApplyTransition", ctx, "lead-1", entity.StatusReplied, entity.StatusInterested, false, mock.Anything).
		Return(entity.ErrTransitionConflict)

	service := usecase.NewStatusService(leads, store)
	_, err := service.Transition(ctx, usecase.TransitionRequest{
		LeadID: "lead-1",
		To:     entity.StatusInterested,
	})

	assert.ErrorIs(t, err, entity.ErrTransitionConflict)
}

func TestTransitionSetsOptOut(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	store := new(MockTransitionStore)

	lead := &entity.Lead{ID: "lead-1", Email: "jane@acme.com", Status: entity.StatusContacted}
	leads.On("FindByID", ctx, "lead-1").Return(lead, nil)
	store.On("ApplyTransition", ctx, "lead-1", entity.StatusContacted, entity.StatusDoNotContact, true, mock.Anything).Return(nil)

	service := usecase.NewStatusService(leads, store)
	updated, err := service.Transition(ctx, usecase.TransitionRequest{
		LeadID:    "lead-1",
		To:        entity.StatusDoNotContact,
		SetOptOut: true,
		Reasoning: "Unsubscribe received",
	})

	assert.NoError(t, err)
	assert.True(t, updated.OptOut)
	assert.Equal(t, entity.StatusDoNotContact, updated.Status)
}
