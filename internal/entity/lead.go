package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusNew           Status = "NEW"
	StatusResearching   Status = "RESEARCHING"
	StatusScheduled     Status = "SCHEDULED"
	StatusContacted     Status = "CONTACTED"
	StatusReplied       Status = "REPLIED"
	StatusInterested    Status = "INTERESTED"
	StatusNotInterested Status = "NOT_INTERESTED"
	StatusNegotiating   Status = "NEGOTIATING"
	StatusConverted     Status = "CONVERTED"
	StatusDoNotContact  Status = "DO_NOT_CONTACT"
	StatusUnqualified   Status = "UNQUALIFIED"
)

var (
	ErrDuplicateLead      = errors.New("lead already exists for this email")
	ErrLeadNotFound       = errors.New("lead not found")
	ErrTransitionConflict = errors.New("lead status changed concurrently")
)

type Lead struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
	Location    string `json:"location,omitempty"`
	Timezone    string `json:"timezone,omitempty"`

	Status     Status   `json:"status"`
	Score      int      `json:"score"` // 0-100
	DealTier   DealTier `json:"deal_tier,omitempty"`
	DataSource string   `json:"data_source,omitempty"`
	OptOut     bool     `json:"opt_out"`

	EmployeeCount int    `json:"employee_count,omitempty"`
	CompanyType   string `json:"company_type,omitempty"`

	ScheduledSendAt *time.Time `json:"scheduled_send_at,omitempty"`
	LastContactedAt *time.Time `json:"last_contacted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Factory
func NewLead(email, firstName, lastName, companyName, jobTitle, dataSource string) (*Lead, error) {
	lead := &Lead{
		ID:          uuid.New().String(),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		FirstName:   firstName,
		LastName:    lastName,
		CompanyName: companyName,
		JobTitle:    jobTitle,
		DataSource:  dataSource,

		Status:    StatusNew,
		Score:     0,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Email == "" {
		return errors.New("email is required")
	}
	if l.CompanyName == "" {
		return errors.New("company name is required")
	}
	return nil
}

// Terminal reports whether no further transition is legal from s.
func (s Status) Terminal() bool {
	return s == StatusConverted || s == StatusDoNotContact || s == StatusUnqualified
}

// How strongly a lead in this status signals product fit, on the same
// 0-100 scale as Lead.Score. Lookalike seeding keys off scores from
// INTERESTED upward.
var statusScore = map[Status]int{
	StatusNew:           5,
	StatusResearching:   15,
	StatusScheduled:     20,
	StatusContacted:     30,
	StatusReplied:       55,
	StatusInterested:    75,
	StatusNegotiating:   85,
	StatusConverted:     100,
	StatusNotInterested: 10,
}

// EngagementScore is the score floor a lead earns by reaching s. A
// lead's score only ever rises; leaving the funnel keeps the score it
// had.
func (s Status) EngagementScore() int {
	return statusScore[s]
}

// Forward edges of the lifecycle. DO_NOT_CONTACT and UNQUALIFIED are
// reachable from any non-terminal state and are not listed here.
var legalNext = map[Status][]Status{
	StatusNew:           {StatusResearching},
	StatusResearching:   {StatusScheduled, StatusContacted},
	StatusScheduled:     {StatusContacted},
	StatusContacted:     {StatusReplied},
	StatusReplied:       {StatusInterested, StatusNotInterested},
	StatusInterested:    {StatusNegotiating},
	StatusNotInterested: {StatusNegotiating},
	StatusNegotiating:   {StatusConverted},
}

func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusDoNotContact || to == StatusUnqualified {
		return true
	}
	for _, next := range legalNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListAll(ctx context.Context) ([]Lead, error)
	ListTopScored(ctx context.Context, minScore, limit int) ([]Lead, error)
	MarkContacted(ctx context.Context, id string, at time.Time) error
}
