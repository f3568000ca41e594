package dto

import (
	"errors"
	"fmt"

	"hotel/internal/domains/booking/model"
	"hotel/shared"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	gModel "hotel/shared/model"
	"hotel/shared/timezone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultAdults   = 1
	defaultChildren = 0
	amountScale     = 2
)

var (
	ErrStayFieldsRequired = errors.New("roomId, checkIn, checkOut are required")
	ErrInvalidRoomID      = errors.New("roomId must be a positive integer")
	ErrCheckOutBeforeIn   = errors.New("check-out must be after check-in")
	ErrAmountPrecision    = errors.New("amount_paid must have at most 2 decimal places")
)

// Stay is a validated room and date range.
type Stay struct {
	RoomID   int64
	CheckIn  model.Date
	CheckOut model.Date
}

func parseStay(roomID any, checkIn, checkOut string) (Stay, error) {
	if roomID == nil || checkIn == "" || checkOut == "" {
		return Stay{}, ErrStayFieldsRequired
	}

	id, err := shared.ParsePositiveID(roomID)
	if err != nil {
		return Stay{}, ErrInvalidRoomID
	}

	in, err := model.ParseDate(checkIn)
	if err != nil {
		return Stay{}, err //nolint:wrapcheck
	}

	out, err := model.ParseDate(checkOut)
	if err != nil {
		return Stay{}, err //nolint:wrapcheck
	}

	if !out.After(in) {
		return Stay{}, ErrCheckOutBeforeIn
	}

	return Stay{RoomID: id, CheckIn: in, CheckOut: out}, nil
}

type GuestInfo struct {
	FirstName  string `json:"firstName"  validate:"required,max=100"`
	LastName   string `json:"lastName"   validate:"required,max=100"`
	Email      string `json:"email"      validate:"required,email,max=254"`
	Phone      string `json:"phone"      validate:"max=50"`
	Address    string `json:"address"    validate:"max=255"`
	City       string `json:"city"       validate:"max=100"`
	Country    string `json:"country"    validate:"max=100"`
	PostalCode string `json:"postalCode" validate:"max=30"`
}

type CreateBookingRequest struct {
	RoomID          any       `json:"roomId"          validate:"required"`
	CheckIn         string    `json:"checkIn"         validate:"required"`
	CheckOut        string    `json:"checkOut"        validate:"required"`
	Adults          *int      `json:"adults"          validate:"omitempty,gte=1,lte=20"`
	Children        *int      `json:"children"        validate:"omitempty,gte=0,lte=20"`
	SpecialRequests string    `json:"specialRequests" validate:"max=2000"`
	GuestInfo       GuestInfo `json:"guestInfo"`
}

func (c *CreateBookingRequest) Stay() (Stay, error) {
	return parseStay(c.RoomID, c.CheckIn, c.CheckOut)
}

func (c *CreateBookingRequest) Party() (adults, children int) {
	adults, children = defaultAdults, defaultChildren

	if c.Adults != nil {
		adults = *c.Adults
	}

	if c.Children != nil {
		children = *c.Children
	}

	return adults, children
}

// ToModel builds a new PENDING, UNPAID booking. userID is nil for anonymous guests.
func (c *CreateBookingRequest) ToModel(stay Stay, userID *string, reference string) model.Booking {
	adults, children := c.Party()

	createdBy := constant.ContextGuest
	if userID != nil {
		createdBy = *userID
	}

	now := timezone.Now()

	return model.Booking{
		ID:              uuid.NewString(),
		Reference:       reference,
		RoomID:          stay.RoomID,
		UserID:          userID,
		CheckIn:         stay.CheckIn,
		CheckOut:        stay.CheckOut,
		Adults:          adults,
		Children:        children,
		SpecialRequests: c.SpecialRequests,
		Status:          model.StatusPending,
		PaymentStatus:   model.PaymentUnpaid,
		PaymentMethod:   model.PaymentMethodUnspecified,
		AmountPaid:      decimal.Zero,
		GuestFirstName:  c.GuestInfo.FirstName,
		GuestLastName:   c.GuestInfo.LastName,
		GuestEmail:      c.GuestInfo.Email,
		GuestPhone:      c.GuestInfo.Phone,
		GuestAddress:    c.GuestInfo.Address,
		GuestCity:       c.GuestInfo.City,
		GuestCountry:    c.GuestInfo.Country,
		GuestPostalCode: c.GuestInfo.PostalCode,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  createdBy,
			ModifiedBy: createdBy,
		},
	}
}

// AvailabilityRequest accepts both camelCase and snake_case keys.
type AvailabilityRequest struct {
	RoomID      any    `json:"roomId"`
	RoomIDAlt   any    `json:"room_id"`
	CheckIn     string `json:"checkIn"`
	CheckInAlt  string `json:"check_in"`
	CheckOut    string `json:"checkOut"`
	CheckOutAlt string `json:"check_out"`
}

func (a *AvailabilityRequest) Stay() (Stay, error) {
	return parseStay(
		firstNonNil(a.RoomID, a.RoomIDAlt),
		firstNonEmpty(a.CheckIn, a.CheckInAlt),
		firstNonEmpty(a.CheckOut, a.CheckOutAlt),
	)
}

func firstNonNil(values ...any) any {
	for _, value := range values {
		if value != nil {
			return value
		}
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
}

type AdminUpdateBookingRequest struct {
	Status        *string          `json:"status"         validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED CHECKED_IN CHECKED_OUT"`
	PaymentStatus *string          `json:"payment_status" validate:"omitempty,oneof=UNPAID PAID"`
	PaymentMethod *string          `json:"payment_method" validate:"omitempty,oneof=UNSPECIFIED CASH MOMO"`
	AmountPaid    *decimal.Decimal `json:"amount_paid"`
}

func (a *AdminUpdateBookingRequest) ToChange() (change model.Change, err error) {
	if a.Status != nil {
		status, err := model.ParseStatus(*a.Status)
		if err != nil {
			return change, err //nolint:wrapcheck
		}

		change.Status = &status
	}

	if a.PaymentStatus != nil {
		paymentStatus, err := model.ParsePaymentStatus(*a.PaymentStatus)
		if err != nil {
			return change, err //nolint:wrapcheck
		}

		change.PaymentStatus = &paymentStatus
	}

	if a.PaymentMethod != nil {
		method, err := model.ParsePaymentMethod(*a.PaymentMethod)
		if err != nil {
			return change, err //nolint:wrapcheck
		}

		change.PaymentMethod = &method
	}

	if a.AmountPaid != nil {
		if !a.AmountPaid.Equal(a.AmountPaid.Truncate(amountScale)) {
			return change, ErrAmountPrecision
		}

		change.AmountPaid = a.AmountPaid
	}

	return change, nil
}

// ChangedFields lists the columns that differ between before and after, ready for an update.
func ChangedFields(before, after model.Booking, user string) map[string]any {
	fields := map[string]any{}

	if before.Status != after.Status {
		fields[model.FieldStatus] = after.Status
	}

	if before.PaymentStatus != after.PaymentStatus {
		fields[model.FieldPaymentStatus] = after.PaymentStatus
	}

	if before.PaymentMethod != after.PaymentMethod {
		fields[model.FieldPaymentMethod] = after.PaymentMethod
	}

	if !before.AmountPaid.Equal(after.AmountPaid) {
		fields[model.FieldAmountPaid] = after.AmountPaid
	}

	if len(fields) == 0 {
		return fields
	}

	fields[constant.FieldModifiedAt] = timezone.Now()
	fields[constant.FieldModifiedBy] = user

	return fields
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	Reference     string `json:"reference"`
	Status        string `json:"status"         validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED CHECKED_IN CHECKED_OUT"`
	PaymentStatus string `json:"payment_status" validate:"omitempty,oneof=UNPAID PAID"`
	RoomID        int64  `json:"room_id"        validate:"gte=0"`
	UserID        string `json:"-"`
}

func (f *BookingFilter) ToFilterGroup() gDto.FilterGroup {
	filters := []any{}

	add := func(field string, value any) {
		filters = append(filters, gDto.Filter{
			Field:    field,
			Value:    value,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	if f.Reference != "" {
		add(model.FieldReference, f.Reference)
	}

	if f.Status != "" {
		add(model.FieldStatus, f.Status)
	}

	if f.PaymentStatus != "" {
		add(model.FieldPaymentStatus, f.PaymentStatus)
	}

	if f.RoomID > 0 {
		add(model.FieldRoomID, f.RoomID)
	}

	if f.UserID != "" {
		add(model.FieldUserID, f.UserID)
	}

	return gDto.FilterGroup{Filters: filters, Operator: gDto.FilterGroupOperatorAnd}
}

type BookingRoom struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price string  `json:"price"`
	Image *string `json:"image"`
}

type BookingResponse struct {
	ID              string      `json:"id"`
	Reference       string      `json:"reference"`
	Room            BookingRoom `json:"room"`
	CheckIn         string      `json:"check_in"`
	CheckOut        string      `json:"check_out"`
	Nights          int         `json:"nights"`
	Adults          int         `json:"adults"`
	Children        int         `json:"children"`
	SpecialRequests string      `json:"special_requests"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"payment_status"`
	PaymentMethod   string      `json:"payment_method"`
	AmountPaid      string      `json:"amount_paid"`
	GuestFirstName  string      `json:"guest_first_name"`
	GuestLastName   string      `json:"guest_last_name"`
	GuestEmail      string      `json:"guest_email"`
	GuestPhone      string      `json:"guest_phone"`
	GuestAddress    string      `json:"guest_address"`
	GuestCity       string      `json:"guest_city"`
	GuestCountry    string      `json:"guest_country"`
	GuestPostalCode string      `json:"guest_postal_code"`
	CreatedBy       *string     `json:"created_by"`
	CreatedAt       string      `json:"created_at"`
	UpdatedAt       string      `json:"updated_at"`
}

func (r *BookingResponse) FromModel(model model.Booking) {
	var metadata gDto.Metadata
	metadata.FromModel(model.Metadata)

	r.ID = model.ID
	r.Reference = model.Reference
	r.Room = BookingRoom{
		ID:    model.RoomID,
		Name:  model.RoomName,
		Price: model.RoomPrice.StringFixed(amountScale),
	}

	if model.RoomImage != "" {
		image := model.RoomImage
		r.Room.Image = &image
	}

	r.CheckIn = model.CheckIn.String()
	r.CheckOut = model.CheckOut.String()
	r.Nights = model.CheckIn.Nights(model.CheckOut)
	r.Adults = model.Adults
	r.Children = model.Children
	r.SpecialRequests = model.SpecialRequests
	r.Status = string(model.Status)
	r.PaymentStatus = string(model.PaymentStatus)
	r.PaymentMethod = string(model.PaymentMethod)
	r.AmountPaid = model.AmountPaid.StringFixed(amountScale)
	r.GuestFirstName = model.GuestFirstName
	r.GuestLastName = model.GuestLastName
	r.GuestEmail = model.GuestEmail
	r.GuestPhone = model.GuestPhone
	r.GuestAddress = model.GuestAddress
	r.GuestCity = model.GuestCity
	r.GuestCountry = model.GuestCountry
	r.GuestPostalCode = model.GuestPostalCode
	r.CreatedBy = model.UserID
	r.CreatedAt = metadata.CreatedAt
	r.UpdatedAt = metadata.ModifiedAt
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// Event is published for every booking write.
type Event struct {
	Type      string          `json:"type"`
	Booking   BookingResponse `json:"booking"`
	Actor     string          `json:"actor"`
	Timestamp string          `json:"timestamp"`
}

func NewEvent(eventType string, booking model.Booking, actor string) Event {
	var res BookingResponse
	res.FromModel(booking)

	return Event{
		Type:      eventType,
		Booking:   res,
		Actor:     actor,
		Timestamp: timezone.Format(timezone.Now(), constant.DateFormat),
	}
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Booking.Reference)
}
