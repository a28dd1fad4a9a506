package order

import (
	"fmt"

	"souvlaki/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Requested ──> Pending ──> Completed
//	    │            │
//	    └─────┬──────┘
//	          └──> Cancelled | Rejected
//
// Requested orders may also be completed directly by an operator.
// Completed, Cancelled and Rejected are terminal.
type Status int

const (
	// Unknown is the zero value and never a valid persisted status.
	Unknown Status = iota

	// Requested is the status of a freshly placed, paid order awaiting an operator.
	Requested

	// Pending means the order was accepted with a delivery estimate and awaits completion.
	Pending

	// Completed means the order was delivered.
	Completed

	// Cancelled means the order was withdrawn before completion.
	Cancelled

	// Rejected means the shop declined the order.
	Rejected
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Requested: "requested",
		Pending:   "pending",
		Completed: "completed",
		Cancelled: "cancelled",
		Rejected:  "rejected",
	}
}

// ActiveStatuses are the statuses shown on the live order feed.
func ActiveStatuses() []Status {
	return []Status{Requested, Pending}
}

// ParseStatus converts the wire representation back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that the status is one of the known, non-zero values.
func (s Status) Validate() error {
	if s <= Unknown || s > Rejected {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the lower-case wire name, "unknown" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled || s == Rejected
}

// Accept transitions Requested -> Pending.
func (s Status) Accept() (Status, error) {
	if s != Requested {
		return Unknown, errs.NewStatusTransitionIsInvalidError(s.String(), "accept")
	}
	return Pending, nil
}

// Cancel transitions any non-terminal status to Cancelled.
func (s Status) Cancel() (Status, error) {
	if err := s.validateOpen("cancel"); err != nil {
		return Unknown, err
	}
	return Cancelled, nil
}

// Reject transitions any non-terminal status to Rejected.
func (s Status) Reject() (Status, error) {
	if err := s.validateOpen("reject"); err != nil {
		return Unknown, err
	}
	return Rejected, nil
}

// Complete transitions Requested or Pending to Completed.
// Completing a Completed order is allowed and yields Completed again.
func (s Status) Complete() (Status, error) {
	switch s {
	case Requested, Pending, Completed:
		return Completed, nil
	default:
		return Unknown, errs.NewStatusTransitionIsInvalidError(s.String(), "complete")
	}
}

func (s Status) validateOpen(operation string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.IsTerminal() {
		return errs.NewStatusTransitionIsInvalidError(s.String(), operation)
	}
	return nil
}
