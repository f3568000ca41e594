package dto_test

import (
	"testing"
	"time"

	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/model/dto"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestCreateBookingRequest_Stay(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.CreateBookingRequest
		want    dto.Stay
		wantErr error
	}{
		{
			name: "json number room id",
			req:  dto.CreateBookingRequest{RoomID: float64(3), CheckIn: "2025-06-01", CheckOut: "2025-06-04"},
			want: dto.Stay{RoomID: 3, CheckIn: model.NewDate(2025, time.June, 1), CheckOut: model.NewDate(2025, time.June, 4)},
		},
		{
			name: "string room id",
			req:  dto.CreateBookingRequest{RoomID: "7", CheckIn: "2025-06-01", CheckOut: "2025-06-02"},
			want: dto.Stay{RoomID: 7, CheckIn: model.NewDate(2025, time.June, 1), CheckOut: model.NewDate(2025, time.June, 2)},
		},
		{
			name:    "missing room",
			req:     dto.CreateBookingRequest{CheckIn: "2025-06-01", CheckOut: "2025-06-02"},
			wantErr: dto.ErrStayFieldsRequired,
		},
		{
			name:    "missing check out",
			req:     dto.CreateBookingRequest{RoomID: float64(1), CheckIn: "2025-06-01"},
			wantErr: dto.ErrStayFieldsRequired,
		},
		{
			name:    "fractional room id",
			req:     dto.CreateBookingRequest{RoomID: 1.5, CheckIn: "2025-06-01", CheckOut: "2025-06-02"},
			wantErr: dto.ErrInvalidRoomID,
		},
		{
			name:    "zero room id",
			req:     dto.CreateBookingRequest{RoomID: float64(0), CheckIn: "2025-06-01", CheckOut: "2025-06-02"},
			wantErr: dto.ErrInvalidRoomID,
		},
		{
			name:    "bad date",
			req:     dto.CreateBookingRequest{RoomID: float64(1), CheckIn: "June 1st", CheckOut: "2025-06-02"},
			wantErr: model.ErrInvalidDate,
		},
		{
			name:    "same day",
			req:     dto.CreateBookingRequest{RoomID: float64(1), CheckIn: "2025-06-01", CheckOut: "2025-06-01"},
			wantErr: dto.ErrCheckOutBeforeIn,
		},
		{
			name:    "reversed",
			req:     dto.CreateBookingRequest{RoomID: float64(1), CheckIn: "2025-06-05", CheckOut: "2025-06-01"},
			wantErr: dto.ErrCheckOutBeforeIn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.req.Stay()

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.RoomID, got.RoomID)
			assert.True(t, tt.want.CheckIn.Equal(got.CheckIn))
			assert.True(t, tt.want.CheckOut.Equal(got.CheckOut))
		})
	}
}

func TestAvailabilityRequest_Stay(t *testing.T) {
	snake := dto.AvailabilityRequest{RoomIDAlt: float64(2), CheckInAlt: "2025-06-01", CheckOutAlt: "2025-06-03"}

	stay, err := snake.Stay()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stay.RoomID)
	assert.Equal(t, "2025-06-03", stay.CheckOut.String())

	camel := dto.AvailabilityRequest{RoomID: float64(4), CheckIn: "2025-06-01", CheckOutAlt: "2025-06-02"}

	stay, err = camel.Stay()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stay.RoomID)

	_, err = (&dto.AvailabilityRequest{}).Stay()
	assert.ErrorIs(t, err, dto.ErrStayFieldsRequired)
}

func TestCreateBookingRequest_ToModel(t *testing.T) {
	req := dto.CreateBookingRequest{
		RoomID:   float64(1),
		CheckIn:  "2025-06-01",
		CheckOut: "2025-06-03",
		GuestInfo: dto.GuestInfo{
			FirstName: "Linh",
			LastName:  "Tran",
			Email:     "linh@example.com",
		},
	}

	stay, err := req.Stay()
	require.NoError(t, err)

	adults, children := req.Party()
	assert.Equal(t, 1, adults)
	assert.Equal(t, 0, children)

	guest := req.ToModel(stay, nil, "NCH-0000000001")
	assert.NotEmpty(t, guest.ID)
	assert.Nil(t, guest.UserID)
	assert.Equal(t, constant.ContextGuest, guest.CreatedBy)
	assert.Equal(t, model.StatusPending, guest.Status)
	assert.Equal(t, model.PaymentUnpaid, guest.PaymentStatus)
	assert.Equal(t, model.PaymentMethodUnspecified, guest.PaymentMethod)
	assert.True(t, guest.AmountPaid.IsZero())
	assert.Equal(t, "Linh", guest.GuestFirstName)

	req.Adults = ptr(2)
	req.Children = ptr(1)

	customer := req.ToModel(stay, ptr("user-1"), "NCH-0000000002")
	assert.Equal(t, "user-1", *customer.UserID)
	assert.Equal(t, "user-1", customer.CreatedBy)
	assert.Equal(t, 2, customer.Adults)
	assert.Equal(t, 1, customer.Children)
}

func TestAdminUpdateBookingRequest_ToChange(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.AdminUpdateBookingRequest
		wantErr bool
		check   func(t *testing.T, change model.Change)
	}{
		{
			name: "empty request",
			check: func(t *testing.T, change model.Change) {
				assert.Nil(t, change.Status)
				assert.Nil(t, change.PaymentStatus)
				assert.Nil(t, change.PaymentMethod)
				assert.Nil(t, change.AmountPaid)
			},
		},
		{
			name: "all fields",
			req: dto.AdminUpdateBookingRequest{
				Status:        ptr("CHECKED_IN"),
				PaymentStatus: ptr("PAID"),
				PaymentMethod: ptr("MOMO"),
				AmountPaid:    ptr(decimal.RequireFromString("120.50")),
			},
			check: func(t *testing.T, change model.Change) {
				assert.Equal(t, model.StatusCheckedIn, *change.Status)
				assert.Equal(t, model.PaymentPaid, *change.PaymentStatus)
				assert.Equal(t, model.PaymentMethodMomo, *change.PaymentMethod)
				assert.Equal(t, "120.50", change.AmountPaid.StringFixed(2))
			},
		},
		{name: "unknown status", req: dto.AdminUpdateBookingRequest{Status: ptr("ARCHIVED")}, wantErr: true},
		{name: "unknown payment status", req: dto.AdminUpdateBookingRequest{PaymentStatus: ptr("PARTIAL")}, wantErr: true},
		{name: "unknown payment method", req: dto.AdminUpdateBookingRequest{PaymentMethod: ptr("CARD")}, wantErr: true},
		{name: "three decimals", req: dto.AdminUpdateBookingRequest{AmountPaid: ptr(decimal.RequireFromString("1.005"))}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, err := tt.req.ToChange()

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			tt.check(t, change)
		})
	}
}

func TestChangedFields(t *testing.T) {
	before := model.Booking{
		Status:        model.StatusCheckedIn,
		PaymentStatus: model.PaymentUnpaid,
		PaymentMethod: model.PaymentMethodUnspecified,
		AmountPaid:    decimal.Zero,
	}

	assert.Empty(t, dto.ChangedFields(before, before, "staff-1"))

	after := before
	after.PaymentStatus = model.PaymentPaid
	after.AmountPaid = decimal.NewFromInt(80)

	fields := dto.ChangedFields(before, after, "staff-1")

	assert.Equal(t, model.PaymentPaid, fields[model.FieldPaymentStatus])
	assert.Contains(t, fields, model.FieldAmountPaid)
	assert.NotContains(t, fields, model.FieldStatus)
	assert.NotContains(t, fields, model.FieldPaymentMethod)
	assert.Equal(t, "staff-1", fields[constant.FieldModifiedBy])
	assert.Contains(t, fields, constant.FieldModifiedAt)
}

func TestBookingFilter_ToFilterGroup(t *testing.T) {
	empty := dto.BookingFilter{}
	assert.Empty(t, empty.ToFilterGroup().Filters)

	filter := dto.BookingFilter{Status: "PENDING", RoomID: 3, UserID: "user-1"}
	group := filter.ToFilterGroup()

	require.Len(t, group.Filters, 3)
	assert.Equal(t, gDto.FilterGroupOperatorAnd, group.Operator)

	first, ok := group.Filters[0].(gDto.Filter)
	require.True(t, ok)
	assert.Equal(t, model.FieldStatus, first.Field)
	assert.Equal(t, model.TableName, first.Table)
}

func TestBookingResponse_FromModel(t *testing.T) {
	userID := "user-1"
	booking := model.Booking{
		ID:         "b-1",
		Reference:  "NCH-ABCDEF0123",
		RoomID:     2,
		UserID:     &userID,
		CheckIn:    model.NewDate(2025, time.June, 1),
		CheckOut:   model.NewDate(2025, time.June, 4),
		Status:     model.StatusConfirmed,
		AmountPaid: decimal.NewFromInt(15),
		RoomName:   "Deluxe Double",
		RoomPrice:  decimal.RequireFromString("89.9"),
	}

	var res dto.BookingResponse
	res.FromModel(booking)

	assert.Equal(t, 3, res.Nights)
	assert.Equal(t, "2025-06-01", res.CheckIn)
	assert.Equal(t, "15.00", res.AmountPaid)
	assert.Equal(t, "89.90", res.Room.Price)
	assert.Equal(t, "Deluxe Double", res.Room.Name)
	assert.Nil(t, res.Room.Image)
	assert.Equal(t, &userID, res.CreatedBy)
	assert.Equal(t, "CONFIRMED", res.Status)
}

func TestGetBookingsResponse_FromModels(t *testing.T) {
	var res dto.GetBookingsResponse
	res.FromModels([]model.Booking{{ID: "a"}, {ID: "b"}}, 21, 10)

	assert.Len(t, res.Bookings, 2)
	assert.Equal(t, 21, res.TotalData)
	assert.Equal(t, 3, res.TotalPage)
}

func TestNewEvent(t *testing.T) {
	evt := dto.NewEvent("booking.created", model.Booking{Reference: "NCH-0123456789"}, "guest")

	assert.Equal(t, "booking.created", evt.Type)
	assert.Equal(t, "guest", evt.Actor)
	assert.NotEmpty(t, evt.Timestamp)
	assert.Equal(t, "booking.created NCH-0123456789", evt.String())
}
