package usecase

import (
	"fmt"

	"github.com/outreachlabs/leadengine/internal/entity"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

// InvalidTransitionError is a programming or data error: the requested
// edge is not in the state diagram, or the lead does not exist. Nothing
// is written when it is returned.
type InvalidTransitionError struct {
	LeadID string
	From   entity.Status
	To     entity.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for lead %s: %s -> %s", e.LeadID, e.From, e.To)
}

func IsInvalidTransition(err error) bool {
	_, ok := err.(*InvalidTransitionError)
	return ok
}

// ExternalChannelFailure wraps one adapter or send attempt that failed
// after its retry budget. It is isolated to its channel and never aborts
// a whole run.
type ExternalChannelFailure struct {
	Channel string
	Err     error
}

func (e *ExternalChannelFailure) Error() string {
	return fmt.Sprintf("channel %s failed: %v", e.Channel, e.Err)
}

func (e *ExternalChannelFailure) Unwrap() error {
	return e.Err
}
