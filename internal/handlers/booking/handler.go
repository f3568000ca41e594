package booking

import (
	"context"
	"net/http"
	"strconv"

	"hotel/infras/otel"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/model/dto"
	"hotel/internal/domains/booking/service"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	"hotel/shared/validator"
	"hotel/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// Router registers the guest facing routes. Static segments are declared before {id}.
func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Post("/check-availability", handler.CheckAvailability)
		routerGroup.Get("/me", handler.GetMyBookings)
		routerGroup.Get("/reference/{reference}", handler.GetBookingByReference)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Delete("/{id}/cancel", handler.CancelBooking)
	})
}

// AdminRouter registers the staff routes under /admin/bookings.
func (handler *Handler) AdminRouter(router chi.Router) {
	router.Route("/admin/bookings", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.AdminGetBookings)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Patch("/{id}", handler.AdminUpdateBooking)
	})
}

func (handler *Handler) scope(r *http.Request, name string) (context.Context, otel.Scope) {
	return handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".booking."+name)
}

func fail(w http.ResponseWriter, scope otel.Scope, err error, msg string) {
	scope.TraceError(err)
	log.Error().Err(err).Msg(msg)

	response.WithError(w, err)
}

// filterFromRequest reads the listing filters shared by the guest and admin listings.
func filterFromRequest(r *http.Request) (dto.BookingFilter, error) {
	query := r.URL.Query()

	filter := dto.BookingFilter{
		Reference:     query.Get(model.FieldReference),
		Status:        query.Get(model.FieldStatus),
		PaymentStatus: query.Get(model.FieldPaymentStatus),
	}

	if roomID := query.Get(model.FieldRoomID); roomID != "" {
		id, err := strconv.ParseInt(roomID, 10, 64)
		if err != nil {
			return filter, failure.BadRequestFromString("room_id must be an integer")
		}

		filter.RoomID = id
	}

	if err := validator.ValidateStruct(&filter); err != nil {
		return filter, err
	}

	return filter, nil
}

// CreateBooking handles the creation of a new booking.
// @Summary Create a new booking
// @Description Book a room for a stay. Anonymous guests are allowed; a bearer token links the booking to the account.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.BookingResponse] "Booking created"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [post]
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.scope(request, "Create")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		fail(writer, scope, err, "failed to validate request body")

		return
	}

	booking, err := handler.service.Create(ctx, req)
	if err != nil {
		fail(writer, scope, err, "failed to create booking")

		return
	}

	scope.AddEvent("booking " + booking.Reference + " created")

	response.WithJSON(writer, http.StatusCreated, booking)
}

// CheckAvailability reports whether a room is free for a stay.
// @Summary Check room availability
// @Description Accepts roomId/checkIn/checkOut or room_id/check_in/check_out.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.AvailabilityRequest true "Availability Request"
// @Success 200 {object} response.Data[dto.AvailabilityResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/check-availability [post]
func (handler *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "CheckAvailability")
	defer scope.End()

	req := dto.AvailabilityRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.CheckAvailability(ctx, req)
	if err != nil {
		fail(w, scope, err, "failed to check availability")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetBookings lists bookings visible to the caller.
// @Summary List bookings
// @Description Staff see every booking, customers see their own, anonymous callers must pass a reference.
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param reference query string false "Booking reference"
// @Param status query string false "Filter by status"
// @Param payment_status query string false "Filter by payment status"
// @Param room_id query integer false "Filter by room ID"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of bookings"
// @Failure 400 {object} response.Error "Anonymous caller without a reference"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [get]
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "List")
	defer scope.End()

	handler.list(ctx, w, r, scope)
}

// AdminGetBookings lists every booking for staff.
// @Summary List all bookings (staff)
// @Tags Admin
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status"
// @Param payment_status query string false "Filter by payment status"
// @Param room_id query integer false "Filter by room ID"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of bookings"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/bookings [get]
// @Security BearerAuth
func (handler *Handler) AdminGetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "AdminList")
	defer scope.End()

	handler.list(ctx, w, r, scope)
}

func (handler *Handler) list(ctx context.Context, w http.ResponseWriter, r *http.Request, scope otel.Scope) {
	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filter, err := filterFromRequest(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	bookings, err := handler.service.GetAll(ctx, queryParams, filter)
	if err != nil {
		fail(w, scope, err, "failed to get bookings")

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetMyBookings lists the authenticated user's bookings.
// @Summary Get my bookings
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of user's bookings"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/me [get]
// @Security BearerAuth
func (handler *Handler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "Me")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	bookings, err := handler.service.Me(ctx, queryParams)
	if err != nil {
		fail(w, scope, err, "failed to get user bookings")

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingByReference looks a booking up by its public reference.
// @Summary Get a booking by reference
// @Tags Booking
// @Produce json
// @Param reference path string true "Booking reference"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/reference/{reference} [get]
func (handler *Handler) GetBookingByReference(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "GetByReference")
	defer scope.End()

	reference := chi.URLParam(r, constant.RequestParamReference)

	booking, err := handler.service.GetByReference(ctx, reference)
	if err != nil {
		fail(w, scope, err, "failed to get booking by reference")

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// GetBookingByID retrieves a booking by its ID.
// @Summary Get a booking by ID
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [get]
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "Get")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		fail(w, scope, err, "failed to get booking by ID")

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// CancelBooking cancels a pending or confirmed booking.
// @Summary Cancel a booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Cancelled booking"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/cancel [delete]
func (handler *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "Cancel")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Cancel(ctx, id)
	if err != nil {
		fail(w, scope, err, "failed to cancel booking")

		return
	}

	scope.AddEvent("booking " + booking.Reference + " cancelled")

	response.WithJSON(w, http.StatusOK, booking)
}

// AdminUpdateBooking changes status and payment fields of a booking.
// @Summary Update a booking (staff)
// @Description Only the supplied fields change; status moves must follow the booking lifecycle.
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.AdminUpdateBookingRequest true "Admin Update Request"
// @Success 200 {object} response.Data[dto.BookingResponse] "Updated booking"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/bookings/{id} [patch]
// @Security BearerAuth
func (handler *Handler) AdminUpdateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "AdminUpdate")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.AdminUpdateBookingRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "failed to validate request body")

		return
	}

	booking, err := handler.service.AdminUpdate(ctx, req, id)
	if err != nil {
		fail(w, scope, err, "failed to update booking")

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("booking " + booking.Reference + " updated by " + user)

	response.WithJSON(w, http.StatusOK, booking)
}
