package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"hotel/config"
	"hotel/infras/otel/mocks"
	bookingMocks "hotel/internal/domains/booking/mocks"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/model/dto"
	"hotel/internal/domains/booking/repository"
	"hotel/internal/domains/booking/service"
	roomMocks "hotel/internal/domains/room/mocks"
	roomModel "hotel/internal/domains/room/model"
	cacheMocks "hotel/shared/cache/mocks"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	"hotel/shared/timezone"
)

const bookingID = "6f1c2d34-5a6b-4c7d-8e9f-0a1b2c3d4e5f"

type fixture struct {
	repo      *bookingMocks.MockBooking
	roomRepo  *roomMocks.MockRoom
	cache     *cacheMocks.MockRedisCache
	publisher *bookingMocks.MockPublisher
	svc       service.Booking
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:      bookingMocks.NewMockBooking(ctrl),
		roomRepo:  roomMocks.NewMockRoom(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
		publisher: bookingMocks.NewMockPublisher(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.App.Booking.ReferencePrefix = "NCH-"
	cfg.App.Booking.ReferenceRetry = 3

	f.svc = service.New(f.repo, f.roomRepo, cfg, f.cache, mocks.NewOtel(), f.publisher)

	return f
}

// expectAsync allows the background cache and publish work that follows writes and reads.
func (f *fixture) expectAsync() {
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).AnyTimes()
}

func (f *fixture) cacheMiss() {
	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).AnyTimes()
}

func daysFromNow(days int) string {
	return timezone.Now().AddDate(0, 0, days).Format(constant.DateOnlyFormat)
}

func withUser(id, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, id)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func activeRoom() roomModel.Room {
	return roomModel.Room{
		ID:           1,
		Name:         "Garden Twin",
		Price:        decimal.RequireFromString("75.00"),
		MaxOccupancy: 2,
		IsActive:     true,
	}
}

func bookingWith(status model.Status) model.Booking {
	return model.Booking{
		ID:            bookingID,
		Reference:     "NCH-0A1B2C3D4E",
		RoomID:        1,
		CheckIn:       model.NewDate(2030, time.January, 10),
		CheckOut:      model.NewDate(2030, time.January, 12),
		Status:        status,
		PaymentStatus: model.PaymentUnpaid,
		PaymentMethod: model.PaymentMethodUnspecified,
		AmountPaid:    decimal.Zero,
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestBookingService_Create(t *testing.T) {
	validReq := func() dto.CreateBookingRequest {
		return dto.CreateBookingRequest{
			RoomID:   float64(1),
			CheckIn:  daysFromNow(7),
			CheckOut: daysFromNow(9),
			Adults:   ptr(2),
			GuestInfo: dto.GuestInfo{
				FirstName: "Minh",
				LastName:  "Nguyen",
				Email:     "minh@example.com",
			},
		}
	}

	referenceTaken := &pq.Error{Code: constant.PqErrorCodeUniqueViolation, Constraint: "bookings_reference_key"}

	tests := []struct {
		name      string
		ctx       context.Context
		req       func() dto.CreateBookingRequest
		setupMock func(f *fixture)
		wantCode  int
		check     func(t *testing.T, res dto.BookingResponse)
	}{
		{
			name: "guest booking",
			ctx:  context.Background(),
			req:  validReq,
			setupMock: func(f *fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeRoom(), nil)
				f.repo.EXPECT().
					CreateIfAvailable(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b model.Booking) error {
						assert.Nil(t, b.UserID)
						assert.Equal(t, model.StatusPending, b.Status)

						return nil
					})
			},
			check: func(t *testing.T, res dto.BookingResponse) {
				assert.True(t, strings.HasPrefix(res.Reference, "NCH-"))
				assert.Equal(t, "PENDING", res.Status)
				assert.Equal(t, "UNPAID", res.PaymentStatus)
				assert.Equal(t, "Garden Twin", res.Room.Name)
				assert.Equal(t, "75.00", res.Room.Price)
				assert.Equal(t, 2, res.Nights)
				assert.Nil(t, res.CreatedBy)
			},
		},
		{
			name: "customer booking is linked to the account",
			ctx:  withUser("user-1", constant.RoleCustomer),
			req:  validReq,
			setupMock: func(f *fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeRoom(), nil)
				f.repo.EXPECT().CreateIfAvailable(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, res dto.BookingResponse) {
				require.NotNil(t, res.CreatedBy)
				assert.Equal(t, "user-1", *res.CreatedBy)
			},
		},
		{
			name: "reference collision is retried",
			ctx:  context.Background(),
			req:  validReq,
			setupMock: func(f *fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeRoom(), nil)
				gomock.InOrder(
					f.repo.EXPECT().CreateIfAvailable(gomock.Any(), gomock.Any()).Return(referenceTaken),
					f.repo.EXPECT().CreateIfAvailable(gomock.Any(), gomock.Any()).Return(nil),
				)
			},
			check: func(t *testing.T, res dto.BookingResponse) {
				assert.NotEmpty(t, res.Reference)
			},
		},
		{
			name: "reference retries exhausted",
			ctx:  context.Background(),
			req:  validReq,
			setupMock: func(f *fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeRoom(), nil)
				f.repo.EXPECT().CreateIfAvailable(gomock.Any(), gomock.Any()).Return(referenceTaken).Times(3)
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name: "room already booked",
			ctx:  context.Background(),
			req:  validReq,
			setupMock: func(f *fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeRoom(), nil)
				f.repo.EXPECT().CreateIfAvailable(gomock.Any(), gomock.Any()).Return(repository.ErrUnavailable)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "check-in in the past",
			ctx:  context.Background(),
			req: func() dto.CreateBookingRequest {
				req := validReq()
				req.CheckIn = daysFromNow(-1)

				return req
			},
			setupMock: func(*fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "check-out before check-in",
			ctx:  context.Background(),
			req: func() dto.CreateBookingRequest {
				req := validReq()
				req.CheckOut = daysFromNow(6)

				return req
			},
			setupMock: func(*fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "unknown room",
			ctx:  context.Background(),
			req:  validReq,
			setupMock: func(f *fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roomModel.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "inactive room",
			ctx:  context.Background(),
			req:  validReq,
			setupMock: func(f *fixture) {
				room := activeRoom()
				room.IsActive = false

				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "party too large",
			ctx:  context.Background(),
			req: func() dto.CreateBookingRequest {
				req := validReq()
				req.Children = ptr(1)

				return req
			},
			setupMock: func(f *fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeRoom(), nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "room lookup fails",
			ctx:  context.Background(),
			req:  validReq,
			setupMock: func(f *fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roomModel.Room{}, errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectAsync()
			tt.setupMock(f)

			res, err := f.svc.Create(tt.ctx, tt.req())

			if tt.wantCode != 0 {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			tt.check(t, res)
		})
	}
}

func TestBookingService_CheckAvailability(t *testing.T) {
	req := dto.AvailabilityRequest{RoomIDAlt: float64(1), CheckInAlt: "2030-01-10", CheckOutAlt: "2030-01-12"}

	tests := []struct {
		name      string
		req       dto.AvailabilityRequest
		setupMock func(f *fixture)
		want      bool
		wantCode  int
	}{
		{
			name: "free",
			req:  req,
			setupMock: func(f *fixture) {
				f.roomRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().
					HasOverlap(gomock.Any(), int64(1), model.NewDate(2030, time.January, 10), model.NewDate(2030, time.January, 12)).
					Return(false, nil)
			},
			want: true,
		},
		{
			name: "taken",
			req:  req,
			setupMock: func(f *fixture) {
				f.roomRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().HasOverlap(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
			},
			want: false,
		},
		{
			name: "unknown room",
			req:  req,
			setupMock: func(f *fixture) {
				f.roomRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:      "missing dates",
			req:       dto.AvailabilityRequest{RoomID: float64(1)},
			setupMock: func(*fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "overlap query fails",
			req:  req,
			setupMock: func(f *fixture) {
				f.roomRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().HasOverlap(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.CheckAvailability(context.Background(), tt.req)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Available)
		})
	}
}

func TestBookingService_Get(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "found",
			id:   bookingID,
			setupMock: func(f *fixture) {
				f.cacheMiss()
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingWith(model.StatusConfirmed), nil)
			},
		},
		{
			name: "cache hit",
			id:   bookingID,
			setupMock: func(f *fixture) {
				f.cache.EXPECT().Get(gomock.Any(), "booking:get:"+bookingID, gomock.Any()).Return(nil)
			},
		},
		{
			name: "not a uuid",
			id:   "42",
			setupMock: func(f *fixture) {
				f.cacheMiss()
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "missing",
			id:   bookingID,
			setupMock: func(f *fixture) {
				f.cacheMiss()
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectAsync()
			tt.setupMock(f)

			_, err := f.svc.Get(context.Background(), tt.id)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestBookingService_GetByReference(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingWith(model.StatusPending), nil)

	res, err := f.svc.GetByReference(context.Background(), "NCH-0A1B2C3D4E")
	require.NoError(t, err)
	assert.Equal(t, "NCH-0A1B2C3D4E", res.Reference)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)

	_, err = f.svc.GetByReference(context.Background(), "NCH-FFFFFFFFFF")
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func hasFilter(group gDto.FilterGroup, field string, value any) bool {
	for _, item := range group.Filters {
		if filter, ok := item.(gDto.Filter); ok && filter.Field == field && filter.Value == value {
			return true
		}
	}

	return false
}

func TestBookingService_GetAll(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		filter    dto.BookingFilter
		wantCode  int
		wantScope func(t *testing.T, group gDto.FilterGroup)
	}{
		{
			name:   "staff see every booking",
			ctx:    withUser("staff-1", constant.RoleReceptionist),
			filter: dto.BookingFilter{Status: "PENDING"},
			wantScope: func(t *testing.T, group gDto.FilterGroup) {
				assert.False(t, hasFilter(group, model.FieldUserID, "staff-1"))
				assert.True(t, hasFilter(group, model.FieldStatus, "PENDING"))
			},
		},
		{
			name: "customers see their own",
			ctx:  withUser("user-1", constant.RoleCustomer),
			wantScope: func(t *testing.T, group gDto.FilterGroup) {
				assert.True(t, hasFilter(group, model.FieldUserID, "user-1"))
			},
		},
		{
			name:   "anonymous lookup by reference",
			ctx:    context.Background(),
			filter: dto.BookingFilter{Reference: "NCH-0A1B2C3D4E"},
			wantScope: func(t *testing.T, group gDto.FilterGroup) {
				assert.True(t, hasFilter(group, model.FieldReference, "NCH-0A1B2C3D4E"))
			},
		},
		{
			name:     "anonymous without reference",
			ctx:      context.Background(),
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectAsync()
			f.cacheMiss()

			if tt.wantScope != nil {
				f.repo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, group gDto.FilterGroup) (int, error) {
						tt.wantScope(t, group)

						return 1, nil
					})
				f.repo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{bookingWith(model.StatusPending)}, nil)
			}

			res, err := f.svc.GetAll(tt.ctx, gDto.QueryParams{Page: 1, Limit: 10}, tt.filter)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Len(t, res.Bookings, 1)
			assert.Equal(t, 1, res.TotalPage)
		})
	}
}

func TestBookingService_Me(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Me(context.Background(), gDto.QueryParams{Page: 1, Limit: 10})
	assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
}

func TestBookingService_Cancel(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "pending booking",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingWith(model.StatusPending), nil)
				f.repo.EXPECT().
					UpdateGuarded(gomock.Any(), gomock.Any(), bookingID, model.StatusPending).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ string, _ model.Status) (bool, error) {
						assert.Equal(t, model.StatusCancelled, fields[model.FieldStatus])
						assert.Equal(t, "user-1", fields[constant.FieldModifiedBy])

						return true, nil
					})
			},
		},
		{
			name: "already checked out",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingWith(model.StatusCheckedOut), nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "status changed concurrently",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingWith(model.StatusConfirmed), nil)
				f.repo.EXPECT().UpdateGuarded(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectAsync()
			tt.setupMock(f)

			res, err := f.svc.Cancel(withUser("user-1", constant.RoleCustomer), bookingID)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "CANCELLED", res.Status)
		})
	}
}

func TestBookingService_CancelInvalidatesBeforeReturning(t *testing.T) {
	f := newFixture(t)

	var steps []string

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingWith(model.StatusConfirmed), nil)
	f.repo.EXPECT().UpdateGuarded(gomock.Any(), gomock.Any(), bookingID, model.StatusConfirmed).Return(true, nil)

	gomock.InOrder(
		f.cache.EXPECT().Delete(gomock.Any(), "booking:get:"+bookingID).
			DoAndReturn(func(context.Context, string) error {
				steps = append(steps, "delete")

				return nil
			}),
		f.cache.EXPECT().Clear(gomock.Any(), "booking:gets:*").
			DoAndReturn(func(context.Context, string) error {
				steps = append(steps, "clear list")

				return nil
			}),
		f.cache.EXPECT().Clear(gomock.Any(), "booking:count:*").
			DoAndReturn(func(context.Context, string) error {
				steps = append(steps, "clear count")

				return nil
			}),
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
			Do(func(_ context.Context, event dto.Event) {
				assert.Equal(t, bookingID, event.Booking.ID)

				steps = append(steps, "publish")
			}),
	)

	_, err := f.svc.Cancel(withUser("user-1", constant.RoleCustomer), bookingID)

	require.NoError(t, err)
	assert.Equal(t, []string{"delete", "clear list", "clear count", "publish"}, steps)
}

func TestBookingService_AdminUpdate(t *testing.T) {
	paid := bookingWith(model.StatusCheckedIn)
	paid.PaymentStatus = model.PaymentPaid
	paid.AmountPaid = decimal.NewFromInt(150)

	tests := []struct {
		name      string
		req       dto.AdminUpdateBookingRequest
		setupMock func(f *fixture)
		wantCode  int
		want      string
	}{
		{
			name: "confirm",
			req:  dto.AdminUpdateBookingRequest{Status: ptr("CONFIRMED")},
			setupMock: func(f *fixture) {
				gomock.InOrder(
					f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingWith(model.StatusPending), nil),
					f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingWith(model.StatusConfirmed), nil),
				)
				f.repo.EXPECT().
					UpdateGuarded(gomock.Any(), gomock.Any(), bookingID, model.StatusPending).
					Return(true, nil)
			},
			want: "CONFIRMED",
		},
		{
			name: "nothing changes",
			req:  dto.AdminUpdateBookingRequest{Status: ptr("PENDING")},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingWith(model.StatusPending), nil)
			},
			want: "PENDING",
		},
		{
			name: "check out a paid stay",
			req:  dto.AdminUpdateBookingRequest{Status: ptr("CHECKED_OUT")},
			setupMock: func(f *fixture) {
				checkedOut := paid
				checkedOut.Status = model.StatusCheckedOut

				gomock.InOrder(
					f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(paid, nil),
					f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(checkedOut, nil),
				)
				f.repo.EXPECT().UpdateGuarded(gomock.Any(), gomock.Any(), gomock.Any(), model.StatusCheckedIn).Return(true, nil)
			},
			want: "CHECKED_OUT",
		},
		{
			name: "check out unpaid",
			req:  dto.AdminUpdateBookingRequest{Status: ptr("CHECKED_OUT")},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingWith(model.StatusCheckedIn), nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "illegal transition",
			req:  dto.AdminUpdateBookingRequest{Status: ptr("PENDING")},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingWith(model.StatusCancelled), nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:      "unknown status",
			req:       dto.AdminUpdateBookingRequest{Status: ptr("LOST")},
			setupMock: func(*fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "guard lost",
			req:  dto.AdminUpdateBookingRequest{Status: ptr("CHECKED_IN")},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingWith(model.StatusConfirmed), nil)
				f.repo.EXPECT().UpdateGuarded(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "database check constraint",
			req:  dto.AdminUpdateBookingRequest{PaymentMethod: ptr("CASH")},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingWith(model.StatusConfirmed), nil)
				f.repo.EXPECT().
					UpdateGuarded(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(false, &pq.Error{Code: constant.PqErrorCodeCheckViolation, Constraint: "bookings_amount_paid_check"})
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectAsync()
			tt.setupMock(f)

			res, err := f.svc.AdminUpdate(withUser("staff-1", constant.RoleAdmin), tt.req, bookingID)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Status)
		})
	}
}
