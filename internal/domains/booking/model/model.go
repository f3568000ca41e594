package model

import (
	"errors"
	"strings"

	"hotel/shared/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID            = "id"
	FieldReference     = "reference"
	FieldRoomID        = "room_id"
	FieldUserID        = "user_id"
	FieldCheckIn       = "check_in"
	FieldCheckOut      = "check_out"
	FieldStatus        = "status"
	FieldPaymentStatus = "payment_status"
	FieldPaymentMethod = "payment_method"
	FieldAmountPaid    = "amount_paid"

	referenceLength = 10
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNegativeAmount    = errors.New("amount paid must not be negative")
	ErrCheckoutUnpaid    = errors.New("booking must be paid before check-out")
	ErrPaidWithoutAmount = errors.New("amount paid must be greater than zero when payment status is PAID")
)

type Booking struct {
	ID              string          `db:"id"`
	Reference       string          `db:"reference"`
	RoomID          int64           `db:"room_id"`
	UserID          *string         `db:"user_id"`
	CheckIn         Date            `db:"check_in"`
	CheckOut        Date            `db:"check_out"`
	Adults          int             `db:"adults"`
	Children        int             `db:"children"`
	SpecialRequests string          `db:"special_requests"`
	Status          Status          `db:"status"`
	PaymentStatus   PaymentStatus   `db:"payment_status"`
	PaymentMethod   PaymentMethod   `db:"payment_method"`
	AmountPaid      decimal.Decimal `db:"amount_paid"`
	GuestFirstName  string          `db:"guest_first_name"`
	GuestLastName   string          `db:"guest_last_name"`
	GuestEmail      string          `db:"guest_email"`
	GuestPhone      string          `db:"guest_phone"`
	GuestAddress    string          `db:"guest_address"`
	GuestCity       string          `db:"guest_city"`
	GuestCountry    string          `db:"guest_country"`
	GuestPostalCode string          `db:"guest_postal_code"`
	RoomName        string          `db:"room_name"          table:"rooms" column:"name"`
	RoomPrice       decimal.Decimal `db:"room_price"         table:"rooms" column:"price"`
	RoomImage       string          `db:"room_image"         table:"rooms" column:"image"`
	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return "JOIN rooms ON rooms.id = bookings.room_id"
}

// Overlaps reports whether the half-open stays [aIn, aOut) and [bIn, bOut) share a night.
// A stay that checks out on the day another checks in does not overlap it.
func Overlaps(aIn, aOut, bIn, bOut Date) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// NewReference builds a human readable booking reference such as NCH-3F9A1C0B7D.
func NewReference(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")

	return prefix + strings.ToUpper(hex[:referenceLength])
}

// Change is a partial staff update of the status and payment fields.
type Change struct {
	Status        *Status
	PaymentStatus *PaymentStatus
	PaymentMethod *PaymentMethod
	AmountPaid    *decimal.Decimal
}

// Apply returns the booking as it would look after change, or an error describing why the
// result is not allowed. Fields absent from change keep their current values.
func (b Booking) Apply(change Change) (Booking, error) {
	next := b

	if change.Status != nil && *change.Status != b.Status {
		if !b.Status.CanTransitionTo(*change.Status) {
			return b, &TransitionError{From: b.Status, To: *change.Status}
		}

		next.Status = *change.Status
	}

	if change.PaymentStatus != nil {
		next.PaymentStatus = *change.PaymentStatus
	}

	if change.PaymentMethod != nil {
		next.PaymentMethod = *change.PaymentMethod
	}

	if change.AmountPaid != nil {
		next.AmountPaid = *change.AmountPaid
	}

	switch {
	case next.AmountPaid.IsNegative():
		return b, ErrNegativeAmount
	case next.Status == StatusCheckedOut && next.PaymentStatus != PaymentPaid:
		return b, ErrCheckoutUnpaid
	case next.PaymentStatus == PaymentPaid && !next.AmountPaid.IsPositive():
		return b, ErrPaidWithoutAmount
	}

	return next, nil
}

type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return "cannot change booking status from " + string(e.From) + " to " + string(e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
