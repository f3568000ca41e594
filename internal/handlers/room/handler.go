package room

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"hotel/infras/otel"
	bookingDto "hotel/internal/domains/booking/model/dto"
	bookingService "hotel/internal/domains/booking/service"
	"hotel/internal/domains/room/model/dto"
	"hotel/internal/domains/room/service"
	"hotel/shared"
	"hotel/shared/base64"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	"hotel/shared/validator"
	"hotel/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

var errRoomNotFound = failure.NotFound("room not found")

type Handler struct {
	service  service.Room
	bookings bookingService.Booking
	otel     otel.Otel
}

func New(service service.Room, bookings bookingService.Booking, otel otel.Otel) Handler {
	return Handler{
		service:  service,
		bookings: bookings,
		otel:     otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/rooms", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRoom)
		routerGroup.Get("/", handler.GetRooms)
		routerGroup.Post("/check-availability", handler.CheckAvailability)
		routerGroup.Post("/availability", handler.CheckAvailability)
		routerGroup.Get("/{id}", handler.GetRoomByID)
		routerGroup.Put("/{id}", handler.UpdateRoom)
		routerGroup.Patch("/{id}", handler.UpdateRoom)
		routerGroup.Delete("/{id}", handler.DeleteRoom)
		routerGroup.Put("/{id}/image", handler.UploadImage)
	})
}

func (handler *Handler) scope(r *http.Request, name string) (context.Context, otel.Scope) {
	return handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".room."+name)
}

func fail(w http.ResponseWriter, scope otel.Scope, err error, msg string) {
	scope.TraceError(err)
	log.Error().Err(err).Msg(msg)

	response.WithError(w, err)
}

// actor names the caller for trace events.
func actor(ctx context.Context) string {
	if user, ok := ctx.Value(constant.ContextKeyUserID).(string); ok && user != "" {
		return user
	}

	return constant.ContextGuest
}

// roomID reads the {id} path parameter. Non numeric ids cannot name a room.
func roomID(r *http.Request) (int64, error) {
	id, err := shared.ParsePositiveID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		return 0, errRoomNotFound
	}

	return id, nil
}

// CreateRoom handles the creation of a new room.
// @Summary Create a new room
// @Tags Room
// @Accept json
// @Produce json
// @Param request body dto.CreateRoomRequest true "Create Room Request"
// @Success 201 {object} response.Data[dto.RoomResponse] "Room created"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms [post]
// @Security BearerAuth
func (handler *Handler) CreateRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.scope(request, "Create")
	defer scope.End()

	req := dto.CreateRoomRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		fail(writer, scope, err, "failed to validate request body")

		return
	}

	room, err := handler.service.Create(ctx, req)
	if err != nil {
		fail(writer, scope, err, "failed to create room")

		return
	}

	scope.AddEvent("room created by " + actor(ctx))

	response.WithJSON(writer, http.StatusCreated, room)
}

// GetRooms lists rooms.
// @Summary Get all rooms
// @Description Paged room listing with optional name and active filters.
// @Tags Room
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param active query boolean false "Filter by active status"
// @Success 200 {object} response.Data[dto.GetRoomsResponse] "List of rooms"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms [get]
func (handler *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "List")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filter := dto.RoomFilter{}
	filter.FromQuery(r.URL.Query())

	rooms, err := handler.service.GetAll(ctx, queryParams, filter.ToFilterGroup())
	if err != nil {
		fail(w, scope, err, "failed to get rooms")

		return
	}

	response.WithJSON(w, http.StatusOK, rooms)
}

// GetRoomByID retrieves a room by its ID.
// @Summary Get a room by ID
// @Tags Room
// @Produce json
// @Param id path integer true "Room ID"
// @Success 200 {object} response.Data[dto.RoomResponse] "Room details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [get]
func (handler *Handler) GetRoomByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "Get")
	defer scope.End()

	id, err := roomID(r)
	if err != nil {
		response.WithError(w, err)

		return
	}

	room, err := handler.service.Get(ctx, id)
	if err != nil {
		fail(w, scope, err, "failed to get room by ID")

		return
	}

	response.WithJSON(w, http.StatusOK, room)
}

// UpdateRoom updates an existing room. PUT and PATCH both apply only the supplied fields.
// @Summary Update a room by ID
// @Tags Room
// @Accept json
// @Produce json
// @Param id path integer true "Room ID"
// @Param request body dto.UpdateRoomRequest true "Update Room Request"
// @Success 200 {object} response.Data[dto.RoomResponse] "Updated room"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [patch]
// @Router /v1/rooms/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "Update")
	defer scope.End()

	id, err := roomID(r)
	if err != nil {
		response.WithError(w, err)

		return
	}

	req := dto.UpdateRoomRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "failed to validate request body")

		return
	}

	room, err := handler.service.Update(ctx, req, id)
	if err != nil {
		fail(w, scope, err, "failed to update room")

		return
	}

	scope.AddEvent("room updated by " + actor(ctx))

	response.WithJSON(w, http.StatusOK, room)
}

// DeleteRoom deletes a room by its ID.
// @Summary Delete a room by ID
// @Tags Room
// @Produce json
// @Param id path integer true "Room ID"
// @Success 200 {object} response.Message "Room deleted successfully"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "Delete")
	defer scope.End()

	id, err := roomID(r)
	if err != nil {
		response.WithError(w, err)

		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		fail(w, scope, err, "failed to delete room")

		return
	}

	scope.AddEvent("room deleted by " + actor(ctx))

	response.WithMessage(w, http.StatusOK, "Room deleted successfully")
}

// UploadImage replaces the room image. Accepts a multipart "file" part or a JSON body
// {"image": "data:image/png;base64,..."}.
// @Summary Upload a room image
// @Tags Room
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param id path integer true "Room ID"
// @Param file formData file false "Room image (png, jpeg or webp, max 2 MB)"
// @Success 200 {object} response.Data[dto.RoomResponse] "Room with its new image"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id}/image [put]
// @Security BearerAuth
func (handler *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "UploadImage")
	defer scope.End()

	id, err := roomID(r)
	if err != nil {
		response.WithError(w, err)

		return
	}

	req, cleanup, err := imageFromRequest(r)
	if err != nil {
		fail(w, scope, err, "failed to read room image")

		return
	}
	defer cleanup()

	room, err := handler.service.UploadImage(ctx, req, id)
	if err != nil {
		fail(w, scope, err, "failed to upload room image")

		return
	}

	response.WithJSON(w, http.StatusOK, room)
}

type imagePayload struct {
	Image string `json:"image" validate:"required"`
}

func imageFromRequest(r *http.Request) (dto.UploadImageRequest, func(), error) {
	noop := func() {}

	if strings.HasPrefix(r.Header.Get(constant.RequestHeaderContentType), constant.ContentTypeMultipartFormData) {
		if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
			return dto.UploadImageRequest{}, noop, failure.BadRequest(err) //nolint:wrapcheck
		}

		file, header, err := r.FormFile(constant.FormFile)
		if err != nil {
			return dto.UploadImageRequest{}, noop, failure.BadRequestFromString("file is required")
		}

		req := dto.UploadImageRequest{
			FileName:    header.Filename,
			ContentType: header.Header.Get(constant.RequestHeaderContentType),
			Size:        header.Size,
			Body:        file,
		}

		return req, func() { _ = file.Close() }, nil
	}

	payload := imagePayload{}
	if err := validator.Validate(r.Body, &payload); err != nil {
		return dto.UploadImageRequest{}, noop, err
	}

	contentType, data, err := base64.Decode(payload.Image)
	if err != nil {
		return dto.UploadImageRequest{}, noop, failure.BadRequest(err) //nolint:wrapcheck
	}

	req := dto.UploadImageRequest{
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}

	return req, noop, nil
}

// CheckAvailability answers availability under /rooms; it shares the booking contract.
// @Summary Check room availability
// @Tags Room
// @Accept json
// @Produce json
// @Param request body bookingDto.AvailabilityRequest true "Availability Request"
// @Success 200 {object} response.Data[bookingDto.AvailabilityResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/check-availability [post]
// @Router /v1/rooms/availability [post]
func (handler *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "CheckAvailability")
	defer scope.End()

	req := bookingDto.AvailabilityRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.bookings.CheckAvailability(ctx, req)
	if err != nil {
		fail(w, scope, err, "failed to check availability")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
