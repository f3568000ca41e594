package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"hotel/config"
	"hotel/infras/otel"
	"hotel/internal/domains/booking/event"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/model/dto"
	"hotel/internal/domains/booking/repository"
	roomModel "hotel/internal/domains/room/model"
	roomRepo "hotel/internal/domains/room/repository"
	"hotel/permissions"
	"hotel/shared"
	"hotel/shared/cache"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	gRepo "hotel/shared/repository"
	"hotel/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"

	referenceConstraint = "bookings_reference_key"
)

var (
	errBookingNotFound   = failure.NotFound("booking not found")
	errRoomNotFound      = failure.NotFound("room not found")
	errRoomInactive      = failure.BadRequestFromString("room is not available for booking")
	errCheckInPast       = failure.BadRequestFromString("check-in cannot be in the past")
	errRoomUnavailable   = failure.Conflict("room is not available for the selected dates")
	errNotCancellable    = failure.BadRequestFromString("booking cannot be cancelled")
	errConcurrentChange  = failure.Conflict("booking was changed by another request, please retry")
	errNotAuthenticated  = failure.Unauthorized("authentication credentials were not provided")
	errReferenceRequired = failure.BadRequestFromString("reference is required")
	errReferenceExceeded = errors.New("failed to generate a unique booking reference")
)

var sortableFields = []string{
	constant.FieldCreatedAt,
	model.FieldCheckIn,
	model.FieldCheckOut,
	model.FieldStatus,
	model.FieldReference,
}

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	CheckAvailability(ctx context.Context, req dto.AvailabilityRequest) (dto.AvailabilityResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetByReference(ctx context.Context, reference string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter dto.BookingFilter) (dto.GetBookingsResponse, error)
	Me(ctx context.Context, req gDto.QueryParams) (dto.GetBookingsResponse, error)
	Cancel(ctx context.Context, id string) (dto.BookingResponse, error)
	AdminUpdate(ctx context.Context, req dto.AdminUpdateBookingRequest, id string) (dto.BookingResponse, error)
}

type serviceImpl struct {
	repo      repository.Booking
	roomRepo  roomRepo.Room
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
	publisher event.Publisher
}

func New(repo repository.Booking, roomRepo roomRepo.Room, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, publisher event.Publisher) Booking {
	return &serviceImpl{
		repo:      repo,
		roomRepo:  roomRepo,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
		publisher: publisher,
	}
}

// Create validates the stay against the room and stores a PENDING booking. Availability is
// re-checked inside the insert transaction, so two concurrent requests for the same nights
// cannot both succeed.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	stay, err := req.Stay()
	if err != nil {
		return res, failure.BadRequest(err)
	}

	if stay.CheckIn.Before(model.Today()) {
		return res, errCheckInPast
	}

	room, err := s.roomRepo.Get(ctx, shared.FilterByID(stay.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == 0 {
		return res, errRoomNotFound
	}

	if !room.IsActive {
		return res, errRoomInactive
	}

	if adults, children := req.Party(); !room.Fits(adults, children) {
		return res, failure.BadRequestFromString(fmt.Sprintf("room allows at most %d guests", room.MaxOccupancy))
	}

	var userID *string
	if id, _ := ctx.Value(constant.ContextKeyUserID).(string); id != constant.Empty {
		userID = &id
	}

	booking, err := s.insert(ctx, req, stay, userID)
	if err != nil {
		return res, err
	}

	booking.RoomName = room.Name
	booking.RoomPrice = room.Price
	booking.RoomImage = room.Image

	s.afterWrite(ctx, event.TypeCreated, booking)

	res.FromModel(booking)

	return res, nil
}

// insert retries with a fresh reference when the generated one is already taken.
func (s *serviceImpl) insert(ctx context.Context, req dto.CreateBookingRequest, stay dto.Stay, userID *string) (model.Booking, error) {
	attempts := max(s.cfg.App.Booking.ReferenceRetry, 1)

	for range attempts {
		booking := req.ToModel(stay, userID, model.NewReference(s.cfg.App.Booking.ReferencePrefix))

		err := s.repo.CreateIfAvailable(ctx, booking)
		switch {
		case err == nil:
			return booking, nil
		case errors.Is(err, repository.ErrUnavailable):
			return booking, errRoomUnavailable
		case gRepo.IsPqError(err, constant.PqErrorCodeUniqueViolation) && gRepo.PqConstraint(err) == referenceConstraint:
			log.Warn().Str("reference", booking.Reference).Msg("booking reference collision, retrying")

			continue
		case gRepo.IsPqError(err, constant.PqErrorCodeCheckViolation):
			return booking, failure.BadRequestFromString("booking violates constraint " + gRepo.PqConstraint(err))
		default:
			log.Error().Err(err).Msg("failed to create booking")

			return booking, fmt.Errorf("failed to create booking: %w", err)
		}
	}

	return model.Booking{}, errReferenceExceeded
}

func (s *serviceImpl) CheckAvailability(ctx context.Context, req dto.AvailabilityRequest) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckAvailability")
	defer scope.End()
	defer scope.TraceIfError(err)

	stay, err := req.Stay()
	if err != nil {
		return res, failure.BadRequest(err)
	}

	exists, err := s.roomRepo.Exist(ctx, shared.FilterByID(stay.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room exists")

		return res, fmt.Errorf("failed to check if room exists: %w", err)
	}

	if !exists {
		return res, errRoomNotFound
	}

	overlap, err := s.repo.HasOverlap(ctx, stay.RoomID, stay.CheckIn, stay.CheckOut)
	if err != nil {
		log.Error().Err(err).Msg("failed to check availability")

		return res, fmt.Errorf("failed to check availability: %w", err)
	}

	res.Available = !overlap

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	key := shared.BuildCacheKey(cacheGetBooking, id)

	return cache.Remember(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (found dto.BookingResponse, err error) {
		booking, err := s.find(ctx, id)
		if err != nil {
			return found, err
		}

		found.FromModel(booking)

		return found, nil
	})
}

func (s *serviceImpl) GetByReference(ctx context.Context, reference string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByReference")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.repo.Get(ctx, shared.FilterByID(reference, model.FieldReference, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking by reference")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, errBookingNotFound
	}

	res.FromModel(booking)

	return res, nil
}

// GetAll lists bookings visible to the caller. Staff see every booking, customers see their
// own, and anonymous callers must look a booking up by its reference.
func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter dto.BookingFilter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	switch {
	case permissions.Can(role, permissions.CapabilityViewAllBookings):
	case filter.Reference != constant.Empty:
	case userID != constant.Empty:
		filter.UserID = userID
	default:
		return res, errReferenceRequired
	}

	return s.list(ctx, req, filter)
}

func (s *serviceImpl) Me(ctx context.Context, req gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Me")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if userID == constant.Empty {
		return res, errNotAuthenticated
	}

	return s.list(ctx, req, dto.BookingFilter{UserID: userID})
}

func (s *serviceImpl) list(ctx context.Context, req gDto.QueryParams, bookingFilter dto.BookingFilter) (res dto.GetBookingsResponse, err error) {
	req.Sanitize(model.TableName, sortableFields...)
	filter := bookingFilter.ToFilterGroup()

	key := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	return cache.Remember(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (page dto.GetBookingsResponse, err error) {
		total, err := s.count(ctx, req, filter)
		if err != nil {
			return page, err
		}

		bookings, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to get bookings")

			return page, fmt.Errorf("failed to get bookings: %w", err)
		}

		page.FromModels(bookings, total, req.Limit)

		return page, nil
	})
}

func (s *serviceImpl) count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error) {
	key := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	return cache.Remember(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (int, error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count bookings")

			return 0, fmt.Errorf("failed to count bookings: %w", err)
		}

		return total, nil
	})
}

// Cancel moves a booking to CANCELLED from any status that allows it. The write only applies
// if the status is still the one that was checked.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if !booking.Status.CanBeCancelled() {
		return res, errNotCancellable
	}

	actor := actorFrom(ctx)
	now := timezone.Now()

	fields := map[string]any{
		model.FieldStatus:        model.StatusCancelled,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: actor,
	}

	updated, err := s.repo.UpdateGuarded(ctx, fields, id, booking.Status)
	if err != nil {
		log.Error().Err(err).Msg("failed to cancel booking")

		return res, fmt.Errorf("failed to cancel booking: %w", err)
	}

	if !updated {
		return res, errConcurrentChange
	}

	booking.Status = model.StatusCancelled
	booking.ModifiedAt = now
	booking.ModifiedBy = actor

	s.afterWrite(ctx, event.TypeCancelled, booking)

	res.FromModel(booking)

	return res, nil
}

// AdminUpdate applies a partial staff update of status and payment fields. Only the fields that
// actually change are written.
func (s *serviceImpl) AdminUpdate(ctx context.Context, req dto.AdminUpdateBookingRequest, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AdminUpdate")
	defer scope.End()
	defer scope.TraceIfError(err)

	change, err := req.ToChange()
	if err != nil {
		return res, failure.BadRequest(err)
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	next, err := booking.Apply(change)
	if err != nil {
		return res, failure.BadRequest(err)
	}

	fields := dto.ChangedFields(booking, next, actorFrom(ctx))
	if len(fields) == 0 {
		res.FromModel(booking)

		return res, nil
	}

	updated, err := s.repo.UpdateGuarded(ctx, fields, id, booking.Status)
	if err != nil {
		if gRepo.IsPqError(err, constant.PqErrorCodeCheckViolation) {
			return res, failure.BadRequestFromString("booking violates constraint " + gRepo.PqConstraint(err))
		}

		log.Error().Err(err).Msg("failed to update booking")

		return res, fmt.Errorf("failed to update booking: %w", err)
	}

	if !updated {
		return res, errConcurrentChange
	}

	booking, err = s.find(ctx, id)
	if err != nil {
		return res, err
	}

	s.afterWrite(ctx, event.TypeUpdated, booking)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Booking{}, errBookingNotFound
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, errBookingNotFound
	}

	return booking, nil
}

// afterWrite drops cached views of the booking before the caller answers, then hands the event
// to the publisher, which delivers it in the background.
func (s *serviceImpl) afterWrite(ctx context.Context, eventType string, booking model.Booking) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetBooking, booking.ID)); err != nil {
		log.Error().Err(err).Msg("failed to delete booking from cache")
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllBooking)
	shared.InvalidateCaches(ctx, s.cache, cacheCountBooking)

	s.publisher.Publish(ctx, dto.NewEvent(eventType, booking, actorFrom(ctx)))
}

func actorFrom(ctx context.Context) string {
	if userID, _ := ctx.Value(constant.ContextKeyUserID).(string); userID != constant.Empty {
		return userID
	}

	return constant.ContextGuest
}
