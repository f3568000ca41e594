package router

import (
	"net/http"

	"hotel/internal/handlers/auth"
	"hotel/internal/handlers/booking"
	"hotel/internal/handlers/room"
	"hotel/internal/handlers/user"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const apiVersionPrefix = "/v1"

type DomainHandlers struct {
	Auth    auth.Handler
	Room    room.Handler
	Booking booking.Handler
	User    user.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}

// SetupRoutes mounts every domain under the versioned prefix. Admin booking routes live in the
// booking handler but share the /admin namespace with user management.
func (r *Router) SetupRoutes(router chi.Router) {
	router.Route(apiVersionPrefix, func(v1 chi.Router) {
		r.DomainHandlers.Auth.Router(v1)
		r.DomainHandlers.Room.Router(v1)
		r.DomainHandlers.Booking.Router(v1)
		r.DomainHandlers.Booking.AdminRouter(v1)
		r.DomainHandlers.User.Router(v1)
	})

	if routes, ok := router.(chi.Routes); ok {
		logRoutes(routes)
	}
}

func logRoutes(routes chi.Routes) {
	err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		log.Debug().Str("method", method).Str("route", route).Msg("route registered")

		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to walk routes")
	}
}
