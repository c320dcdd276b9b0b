package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hotel_booking/internal/adapters/auth"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

type Handlers struct {
	Catalog  *app.CatalogService
	Bookings *app.BookingService
	Stats    *app.StatsService
	Identity *app.IdentityService

	Verifier    TokenVerifier
	Idempotency domain.IdempotencyStore
	// UnpaidAfter is the default age for the unpaid-bookings report.
	UnpaidAfter time.Duration
}

var (
	anyone        = RequireRoles()
	hotelManagers = RequireRoles(domain.RoleMerchant, domain.RoleAdmin)
	adminsOnly    = RequireRoles(domain.RoleAdmin)
)

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(h.Verifier, h.Identity))

		r.With(anyone).Get("/auth/user", h.currentUser)

		r.Get("/hotels", h.listHotels)
		r.With(hotelManagers).Post("/hotels", h.createHotel)
		r.Get("/hotels/{id}", h.getHotel)
		r.With(hotelManagers).Put("/hotels/{id}", h.updateHotel)
		r.With(anyone).Get("/merchant/hotels", h.merchantHotels)

		r.Get("/hotels/{id}/room-types", h.listRoomTypes)
		r.With(hotelManagers).Post("/hotels/{id}/room-types", h.createRoomType)
		r.With(hotelManagers).Put("/room-types/{id}", h.updateRoomType)

		r.Get("/hotels/{id}/rooms", h.listRooms)
		r.Get("/hotels/{id}/available-rooms", h.availableRooms)
		r.With(hotelManagers).Post("/hotels/{id}/rooms", h.createRoom)
		r.With(hotelManagers).Put("/rooms/{id}", h.updateRoom)

		r.Get("/hotels/{id}/reviews", h.listReviews)
		r.With(anyone).Post("/reviews", h.createReview)

		r.With(anyone).Get("/bookings", h.listBookings)
		r.With(anyone, Idempotency(h.Idempotency)).Post("/bookings", h.createBooking)
		r.With(anyone).Get("/bookings/{id}", h.getBooking)
		r.With(anyone).Put("/bookings/{id}", h.updateBooking)
		r.With(anyone).Get("/bookings/{id}/payments", h.listPayments)
		r.With(anyone, Idempotency(h.Idempotency)).Post("/payments", h.createPayment)

		r.With(hotelManagers).Get("/hotels/{id}/stats", h.hotelStats)
		r.With(adminsOnly).Get("/platform/stats", h.platformStats)
		r.With(adminsOnly).Put("/admin/hotels/{id}/status", h.setHotelStatus)
		r.With(adminsOnly).Get("/admin/bookings/unpaid", h.unpaidBookings)
	})
}

// caller is the authenticated identity; gated routes guarantee it is set.
func caller(r *http.Request) domain.Identity {
	if id := auth.FromContext(r.Context()); id != nil {
		return *id
	}
	return domain.Identity{}
}

// respond writes v with status, or the mapped error.
func respond[T any](w http.ResponseWriter, r *http.Request, status int, v T, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, v)
}

func (h *Handlers) currentUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Identity.CurrentUser(r.Context(), caller(r))
	respond(w, r, http.StatusOK, u, err)
}

// ---- hotels ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.Catalog.ListHotels(r.Context(), q.Get("city"), q.Get("status"))
	respond(w, r, http.StatusOK, out, err)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.GetHotel(r.Context(), chi.URLParam(r, "id"))
	respond(w, r, http.StatusOK, out, err)
}

func (h *Handlers) merchantHotels(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.ListMerchantHotels(r.Context(), caller(r))
	respond(w, r, http.StatusOK, out, err)
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var in app.CreateHotelInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Catalog.CreateHotel(r.Context(), caller(r), in)
	respond(w, r, http.StatusCreated, out, err)
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	var in app.UpdateHotelInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Catalog.UpdateHotel(r.Context(), caller(r), chi.URLParam(r, "id"), in)
	respond(w, r, http.StatusOK, out, err)
}

func (h *Handlers) setHotelStatus(w http.ResponseWriter, r *http.Request) {
	var in app.HotelStatusInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Catalog.SetHotelStatus(r.Context(), chi.URLParam(r, "id"), in)
	respond(w, r, http.StatusOK, out, err)
}

// ---- room types & rooms ----

func (h *Handlers) listRoomTypes(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.ListRoomTypes(r.Context(), chi.URLParam(r, "id"))
	respond(w, r, http.StatusOK, out, err)
}

func (h *Handlers) createRoomType(w http.ResponseWriter, r *http.Request) {
	var in app.CreateRoomTypeInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Catalog.CreateRoomType(r.Context(), caller(r), chi.URLParam(r, "id"), in)
	respond(w, r, http.StatusCreated, out, err)
}

func (h *Handlers) updateRoomType(w http.ResponseWriter, r *http.Request) {
	var in app.UpdateRoomTypeInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Catalog.UpdateRoomType(r.Context(), caller(r), chi.URLParam(r, "id"), in)
	respond(w, r, http.StatusOK, out, err)
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.ListRooms(r.Context(), chi.URLParam(r, "id"))
	respond(w, r, http.StatusOK, out, err)
}

func (h *Handlers) availableRooms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.Catalog.FindAvailableRooms(r.Context(), chi.URLParam(r, "id"), q.Get("checkIn"), q.Get("checkOut"))
	respond(w, r, http.StatusOK, out, err)
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	var in app.CreateRoomInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Catalog.CreateRoom(r.Context(), caller(r), chi.URLParam(r, "id"), in)
	respond(w, r, http.StatusCreated, out, err)
}

func (h *Handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	var in app.UpdateRoomInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Catalog.UpdateRoom(r.Context(), caller(r), chi.URLParam(r, "id"), in)
	respond(w, r, http.StatusOK, out, err)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.ListReviews(r.Context(), chi.URLParam(r, "id"))
	respond(w, r, http.StatusOK, out, err)
}
