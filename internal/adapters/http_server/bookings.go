package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.Bookings.ListBookings(r.Context(), caller(r), app.BookingQuery{
		HotelID: q.Get("hotelId"),
		Status:  q.Get("status"),
	})
	respond(w, r, http.StatusOK, out, err)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	out, err := h.Bookings.GetBooking(r.Context(), caller(r), chi.URLParam(r, "id"))
	respond(w, r, http.StatusOK, out, err)
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var in app.CreateBookingInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Bookings.CreateBooking(r.Context(), caller(r), in)
	switch {
	case err == nil:
		observability.ObserveBooking("created")
	case errors.Is(err, domain.ErrConflict):
		observability.ObserveBooking("conflict")
	}
	respond(w, r, http.StatusCreated, out, err)
}

func (h *Handlers) updateBooking(w http.ResponseWriter, r *http.Request) {
	var in app.UpdateBookingInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Bookings.UpdateBooking(r.Context(), caller(r), chi.URLParam(r, "id"), in)
	respond(w, r, http.StatusOK, out, err)
}

func (h *Handlers) unpaidBookings(w http.ResponseWriter, r *http.Request) {
	age := h.UnpaidAfter
	if v := r.URL.Query().Get("olderThanMinutes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, domain.InvalidField("olderThanMinutes", "min"))
			return
		}
		age = time.Duration(n) * time.Minute
	}
	out, err := h.Bookings.ListUnpaid(r.Context(), age)
	respond(w, r, http.StatusOK, out, err)
}

// ---- payments ----

func (h *Handlers) createPayment(w http.ResponseWriter, r *http.Request) {
	var in app.CreatePaymentInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Bookings.CreatePayment(r.Context(), caller(r), in)
	respond(w, r, http.StatusCreated, out, err)
}

func (h *Handlers) listPayments(w http.ResponseWriter, r *http.Request) {
	out, err := h.Bookings.ListPayments(r.Context(), caller(r), chi.URLParam(r, "id"))
	respond(w, r, http.StatusOK, out, err)
}

// ---- reviews ----

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	var in app.CreateReviewInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Bookings.CreateReview(r.Context(), caller(r), in)
	respond(w, r, http.StatusCreated, out, err)
}

// ---- stats ----

func (h *Handlers) hotelStats(w http.ResponseWriter, r *http.Request) {
	out, err := h.Stats.HotelStats(r.Context(), caller(r), chi.URLParam(r, "id"))
	respond(w, r, http.StatusOK, out, err)
}

func (h *Handlers) platformStats(w http.ResponseWriter, r *http.Request) {
	out, err := h.Stats.PlatformStats(r.Context())
	respond(w, r, http.StatusOK, out, err)
}
