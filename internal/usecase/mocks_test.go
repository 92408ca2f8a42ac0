package usecase_test

import (
	"context"
	"net"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/outreachlabs/leadengine/internal/entity"
	"github.com/outreachlabs/leadengine/internal/usecase"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) ListAll(ctx context.Context) ([]entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) ListTopScored(ctx context.Context, minScore, limit int) ([]entity.Lead, error) {
	args := m.Called(ctx, minScore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) MarkContacted(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockAuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Append(ctx context.Context, entry *entity.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) CountByLeadAndAction(ctx context.Context, leadID string, action entity.AuditAction) (int, error) {
	args := m.Called(ctx, leadID, action)
	return args.Int(0), args.Error(1)
}

// MockConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) Create(ctx context.Context, conv *entity.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}

// MockTransitionStore
type MockTransitionStore struct {
	mock.Mock
}

func (m *MockTransitionStore) ApplyTransition(ctx context.Context, leadID string, from, to entity.Status, setOptOut bool, audit *entity.AuditLogEntry) error {
	args := m.Called(ctx, leadID, from, to, setOptOut, audit)
	return args.Error(0)
}

// MockIngestStore
type MockIngestStore struct {
	mock.Mock
}

func (m *MockIngestStore) CreateLead(ctx context.Context, lead *entity.Lead, audit *entity.AuditLogEntry) error {
	args := m.Called(ctx, lead, audit)
	return args.Error(0)
}

// MockContactCounterStore
type MockContactCounterStore struct {
	mock.Mock
}

func (m *MockContactCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	args := m.Called(ctx, key, window)
	return args.Int(0), args.Error(1)
}

func (m *MockContactCounterStore) Peek(ctx context.Context, key string, window time.Duration) (int, error) {
	args := m.Called(ctx, key, window)
	return args.Int(0), args.Error(1)
}

// MockEventLedger
type MockEventLedger struct {
	mock.Mock
}

func (m *MockEventLedger) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventLedger) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

// MockConfirmationQueue
type MockConfirmationQueue struct {
	mock.Mock
}

func (m *MockConfirmationQueue) PublishConfirmation(ctx context.Context, leadID string) error {
	args := m.Called(ctx, leadID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) Send(ctx context.Context, to, subject, body string) (string, error) {
	args := m.Called(ctx, to, subject, body)
	return args.String(0), args.Error(1)
}

// MockSourceAdapter
type MockSourceAdapter struct {
	mock.Mock
	channel string
}

func (m *MockSourceAdapter) Channel() string { return m.channel }

func (m *MockSourceAdapter) Fetch(ctx context.Context, n int) ([]usecase.Candidate, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]usecase.Candidate), args.Error(1)
}

// MockMXResolver
type MockMXResolver struct {
	mock.Mock
}

func (m *MockMXResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*net.MX), args.Error(1)
}
