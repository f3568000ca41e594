package model

import (
	"fmt"
	"slices"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusCancelled  Status = "CANCELLED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
)

// transitions lists every legal status change. CANCELLED and CHECKED_OUT are terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCheckedIn, StatusCancelled},
	StatusConfirmed:  {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn:  {StatusCheckedOut, StatusCancelled},
	StatusCancelled:  {},
	StatusCheckedOut: {},
}

// occupying statuses hold the room for their date range.
var occupying = []Status{StatusPending, StatusConfirmed, StatusCheckedIn}

func ParseStatus(value string) (Status, error) {
	status := Status(value)
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("%q is not a valid booking status", value)
	}

	return status, nil
}

// CanTransitionTo reports whether next is reachable from s in one step. Re-applying the
// current status is not a transition.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

func (s Status) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

func (s Status) IsOccupying() bool {
	return slices.Contains(occupying, s)
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// OccupyingStatuses returns the statuses that block a room, as plain strings for queries.
func OccupyingStatuses() []string {
	res := make([]string, len(occupying))
	for i, status := range occupying {
		res[i] = string(status)
	}

	return res
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	switch status := PaymentStatus(value); status {
	case PaymentUnpaid, PaymentPaid:
		return status, nil
	default:
		return "", fmt.Errorf("%q is not a valid payment status", value)
	}
}

type PaymentMethod string

const (
	PaymentMethodUnspecified PaymentMethod = "UNSPECIFIED"
	PaymentMethodCash        PaymentMethod = "CASH"
	PaymentMethodMomo        PaymentMethod = "MOMO"
)

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	switch method := PaymentMethod(value); method {
	case PaymentMethodUnspecified, PaymentMethodCash, PaymentMethodMomo:
		return method, nil
	default:
		return "", fmt.Errorf("%q is not a valid payment method", value)
	}
}
