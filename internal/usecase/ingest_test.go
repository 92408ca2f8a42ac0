package usecase_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/outreachlabs/leadengine/internal/entity"
	"github.com/outreachlabs/leadengine/internal/usecase"
)

func newIngestUC(leads *MockLeadRepository, store *MockIngestStore, resolver *MockMXResolver, adapters ...usecase.SourceAdapter) *usecase.SourceAndIngestUseCase {
	gate := usecase.NewEmailGate(resolver)
	gate.RetryBackoff = time.Millisecond
	uc := usecase.NewSourceAndIngestUseCase(leads, store, gate, adapters)
	uc.RetryBackoff = time.Millisecond
	return uc
}

func TestIngestNewDuplicateAndInvalid(t *testing.T) {
	ctx := context.Background()

	adapter := &MockSourceAdapter{channel: "hiring_boards"}
	adapter.On("Fetch", mock.Anything, 3).Return([]usecase.Candidate{
		{Email: "fresh@acme.com", FirstName: "Jane", CompanyName: "Acme", Channel: "hiring_boards"},
		{Email: "known@acme.com", FirstName: "Bob", CompanyName: "Acme", Channel: "hiring_boards"},
		{Email: "test@example.com", FirstName: "Eve", CompanyName: "Acme", Channel: "hiring_boards"},
	}, nil)

	leads := new(MockLeadRepository)
	leads.On("ExistsByEmail", ctx, "fresh@acme.com").Return(false, nil)
	leads.On("ExistsByEmail", ctx, "known@acme.com").Return(true, nil)
	leads.On("ExistsByEmail", ctx, "test@example.com").Return(false, nil)

	resolver := new(MockMXResolver)
	resolver.On("LookupMX", mock.Anything, "acme.com").Return([]*net.MX{{Host: "mx.acme.com.", Pref: 10}}, nil)

	store := new(MockIngestStore)
	store.On("CreateLead", ctx, mock.Anything, mock.Anything).Return(nil)

	uc := newIngestUC(leads, store, resolver, adapter)
	result, err := uc.Execute(ctx, map[string]int{"hiring_boards": 3})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Rejected)
	assert.Equal(t, 0, result.Failed)
	store.AssertNumberOfCalls(t, "CreateLead", 1)
}

func TestIngestAdapterFailureIsolated(t *testing.T) {
	ctx := context.Background()

	broken := &MockSourceAdapter{channel: "forum_posts"}
	broken.On("Fetch", mock.Anything, 2).Return(nil, errors.New("upstream 503"))

	healthy := &MockSourceAdapter{channel: "hiring_boards"}
	healthy.On("Fetch", mock.Anything, 2).Return([]usecase.Candidate{
		{Email: "jane@acme.com", FirstName: "Jane", CompanyName: "Acme", Channel: "hiring_boards"},
	}, nil)

	leads := new(MockLeadRepository)
	leads.On("ExistsByEmail", ctx, "jane@acme.com").Return(false, nil)

	resolver := new(MockMXResolver)
	resolver.On("LookupMX", mock.Anything, "acme.com").Return([]*net.MX{{Host: "mx.acme.com.", Pref: 10}}, nil)

	store := new(MockIngestStore)
	store.On("CreateLead", ctx, mock.Anything, mock.Anything).Return(nil)

	uc := newIngestUC(leads, store, resolver, broken, healthy)
	uc.FetchRetries = 0
	result, err := uc.Execute(ctx, map[string]int{"forum_posts": 2, "hiring_boards": 2})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Contains(t, result.ChannelErrors, "forum_posts")
}

func TestIngestBadFirstNameRejected(t *testing.T) {
	ctx := context.Background()

	adapter := &MockSourceAdapter{channel: "startup_directory"}
	adapter.On("Fetch", mock.Anything, 1).Return([]usecase.Candidate{
		{Email: "share@acme.com", FirstName: "Share", CompanyName: "Acme", Channel: "startup_directory"},
	}, nil)

	leads := new(MockLeadRepository)
	leads.On("ExistsByEmail", ctx, "share@acme.com").Return(false, nil)

	resolver := new(MockMXResolver)
	resolver.On("LookupMX", mock.Anything, "acme.com").Return([]*net.MX{{Host: "mx.acme.com.", Pref: 10}}, nil)

	store := new(MockIngestStore)

	uc := newIngestUC(leads, store, resolver, adapter)
	result, err := uc.Execute(ctx, map[string]int{"startup_directory": 1})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Rejected)
	store.AssertNotCalled(t, "CreateLead")
}

func TestIngestDuplicateRaceCountsAsSkipped(t *testing.T) {
	ctx := context.Background()

	adapter := &MockSourceAdapter{channel: "company_db"}
	adapter.On("Fetch", mock.Anything, 1).Return([]usecase.Candidate{
		{Email: "jane@acme.com", FirstName: "Jane", CompanyName: "Acme", Channel: "company_db"},
	}, nil)

	leads := new(MockLeadRepository)
	// Passed the pre-check but lost the unique-index race on insert.
	leads.On("ExistsByEmail", ctx, "jane@acme.com").Return(false, nil)

	resolver := new(MockMXResolver)
	resolver.On("LookupMX", mock.Anything, "acme.com").Return([]*net.MX{{Host: "mx.acme.com.", Pref: 10}}, nil)

	store := new(MockIngestStore)
	store.On("CreateLead", ctx, mock.Anything, mock.Anything).Return(entity.ErrDuplicateLead)

	uc := newIngestUC(leads, store, resolver, adapter)
	result, err := uc.Execute(ctx, map[string]int{"company_db": 1})

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)
}

func TestIngestZeroQuotaSkipsAdapter(t *testing.T) {
	adapter := &MockSourceAdapter{channel: "social_mentions"}

	uc := newIngestUC(new(MockLeadRepository), new(MockIngestStore), new(MockMXResolver), adapter)
	result, err := uc.Execute(context.Background(), map[string]int{"social_mentions": 0})

	assert.NoError(t, err)
	assert.Zero(t, result.Created)
	adapter.AssertNotCalled(t, "Fetch")
}
