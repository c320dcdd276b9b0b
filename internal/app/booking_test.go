package app_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

type bookingWorld struct {
	*fixture
	merchant, customer, admin domain.Identity
	h                         domain.Hotel
	rm                        domain.Room
}

func newBookingWorld(t *testing.T) *bookingWorld {
	f := newFixture(t)
	w := &bookingWorld{fixture: f}
	w.merchant = f.user(domain.RoleMerchant)
	w.customer = f.user(domain.RoleCustomer)
	w.admin = f.user(domain.RoleAdmin)
	w.h = f.hotel(w.merchant)
	rt := f.roomType(w.merchant, w.h.ID, 2)
	w.rm = f.room(w.merchant, w.h.ID, rt.ID, "101")
	return w
}

func TestCreateBooking_Pending(t *testing.T) {
	w := newBookingWorld(t)
	b := w.mustBook(w.customer, w.h, w.rm, "2024-06-01", "2024-06-05")
	if b.Status != domain.BookingPending || b.UserID != w.customer.UserID || b.TotalAmount != 299 {
		t.Fatalf("unexpected booking: %+v", b)
	}
	if !b.CheckInDate.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("check-in should be local midnight, got %v", b.CheckInDate)
	}
}

func TestCreateBooking_Validation(t *testing.T) {
	w := newBookingWorld(t)
	base := app.CreateBookingInput{
		HotelID: w.h.ID, RoomID: w.rm.ID, CheckInDate: "2024-06-01", CheckOutDate: "2024-06-05",
		Guests: 2, TotalAmount: 299,
	}
	cases := map[string]func(in *app.CreateBookingInput){
		"no guests":       func(in *app.CreateBookingInput) { in.Guests = 0 },
		"too many guests": func(in *app.CreateBookingInput) { in.Guests = 3 },
		"zero amount":     func(in *app.CreateBookingInput) { in.TotalAmount = 0 },
		"missing date":    func(in *app.CreateBookingInput) { in.CheckInDate = "" },
		"reversed stay":   func(in *app.CreateBookingInput) { in.CheckInDate = "2024-06-09" },
		"room of other hotel": func(in *app.CreateBookingInput) {
			in.HotelID = w.hotel(w.merchant).ID
		},
	}
	for name, mut := range cases {
		in := base
		mut(&in)
		_, err := w.bookings.CreateBooking(w.ctx, w.customer, in)
		if _, ok := domain.AsValidation(err); !ok {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}

	in := base
	in.RoomID = uuid.NewString()
	if _, err := w.bookings.CreateBooking(w.ctx, w.customer, in); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown room should be not found, got %v", err)
	}
}

func TestStayErrors_NameTheRequestFields(t *testing.T) {
	w := newBookingWorld(t)
	field := func(err error) string {
		t.Helper()
		ve, ok := domain.AsValidation(err)
		if !ok || len(ve.Fields) != 1 {
			t.Fatalf("expected one field error, got %v", err)
		}
		return ve.Fields[0].Field
	}

	in := app.CreateBookingInput{HotelID: w.h.ID, RoomID: w.rm.ID, CheckInDate: "2024-06-01", CheckOutDate: "June 5", Guests: 1, TotalAmount: 10}
	_, err := w.bookings.CreateBooking(w.ctx, w.customer, in)
	if got := field(err); got != "checkOutDate" {
		t.Fatalf("booking date error on %q", got)
	}
	in.CheckInDate, in.CheckOutDate = "2024-06-05", "2024-06-01"
	_, err = w.bookings.CreateBooking(w.ctx, w.customer, in)
	if got := field(err); got != "checkOutDate" {
		t.Fatalf("reversed booking stay error on %q", got)
	}

	_, err = w.catalog.FindAvailableRooms(w.ctx, w.h.ID, "", "2024-06-05")
	if got := field(err); got != "checkIn" {
		t.Fatalf("availability date error on %q", got)
	}
}

func TestSequentialOverlappingBookings(t *testing.T) {
	w := newBookingWorld(t)
	first := w.mustBook(w.customer, w.h, w.rm, "2024-06-01", "2024-06-05")

	// pending bookings do not hold the room
	second := w.mustBook(w.customer, w.h, w.rm, "2024-06-03", "2024-06-07")

	w.confirm(w.merchant, first.ID)

	rooms, _ := w.catalog.FindAvailableRooms(w.ctx, w.h.ID, "2024-06-03", "2024-06-07")
	if roomIDs(rooms)[w.rm.ID] {
		t.Fatalf("room still offered after confirmation")
	}
	if _, err := w.book(w.customer, w.h, w.rm, "2024-06-04", "2024-06-06"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("new overlapping booking should conflict, got %v", err)
	}
	st := string(domain.BookingConfirmed)
	if _, err := w.bookings.UpdateBooking(w.ctx, w.merchant, second.ID, app.UpdateBookingInput{Status: &st}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("confirming an overlapping booking should conflict, got %v", err)
	}

	// non-overlapping stay is fine
	w.mustBook(w.customer, w.h, w.rm, "2024-06-06", "2024-06-08")
}

func TestConcurrentConfirmations_OneWins(t *testing.T) {
	w := newBookingWorld(t)
	const n = 10
	var ids []string
	for i := 0; i < n; i++ {
		ids = append(ids, w.mustBook(w.customer, w.h, w.rm, "2024-06-01", "2024-06-05").ID)
	}

	st := string(domain.BookingConfirmed)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = w.bookings.UpdateBooking(w.ctx, w.merchant, id, app.UpdateBookingInput{Status: &st})
		}(i, id)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("%d confirmations succeeded, want 1", wins)
	}
}

func TestUpdateBooking_Scope(t *testing.T) {
	w := newBookingWorld(t)
	b := w.mustBook(w.customer, w.h, w.rm, "2024-06-01", "2024-06-05")
	stranger := w.user(domain.RoleCustomer)
	otherMerchant := w.user(domain.RoleMerchant)

	cancel := string(domain.BookingCancelled)
	for _, who := range []domain.Identity{stranger, otherMerchant} {
		if _, err := w.bookings.UpdateBooking(w.ctx, who, b.ID, app.UpdateBookingInput{Status: &cancel}); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s should be forbidden, got %v", who.Role, err)
		}
	}

	confirm := string(domain.BookingConfirmed)
	if _, err := w.bookings.UpdateBooking(w.ctx, w.customer, b.ID, app.UpdateBookingInput{Status: &confirm}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("customer may not confirm, got %v", err)
	}

	got, err := w.bookings.UpdateBooking(w.ctx, w.customer, b.ID, app.UpdateBookingInput{
		Guests: ptr(1), SpecialRequests: ptr("late arrival"), Status: &cancel,
	})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if got.Status != domain.BookingCancelled || got.Guests != 1 || *got.SpecialRequests != "late arrival" {
		t.Fatalf("unexpected update: %+v", got)
	}

	if _, err := w.bookings.UpdateBooking(w.ctx, w.admin, b.ID, app.UpdateBookingInput{CheckOutDate: ptr("2024-05-30")}); err == nil {
		t.Fatalf("check-out before check-in must be rejected")
	}
}

func TestListBookings_RoleScoped(t *testing.T) {
	w := newBookingWorld(t)
	other := w.user(domain.RoleCustomer)
	mine := w.mustBook(w.customer, w.h, w.rm, "2024-06-01", "2024-06-02")
	w.now = w.now.Add(time.Second)
	theirs := w.mustBook(other, w.h, w.rm, "2024-07-01", "2024-07-02")

	otherMerchant := w.user(domain.RoleMerchant)
	h2 := w.hotel(otherMerchant)
	rt2 := w.roomType(otherMerchant, h2.ID, 2)
	r2 := w.room(otherMerchant, h2.ID, rt2.ID, "1")
	elsewhere := w.mustBook(other, h2, r2, "2024-06-01", "2024-06-02")

	got, _ := w.bookings.ListBookings(w.ctx, w.customer, app.BookingQuery{})
	if len(got) != 1 || got[0].ID != mine.ID {
		t.Fatalf("customer sees %+v", got)
	}

	got, _ = w.bookings.ListBookings(w.ctx, w.merchant, app.BookingQuery{})
	if len(got) != 2 || got[0].ID != theirs.ID {
		t.Fatalf("merchant should see both bookings of own hotel newest first, got %+v", got)
	}
	if _, err := w.bookings.ListBookings(w.ctx, w.merchant, app.BookingQuery{HotelID: h2.ID}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("merchant filtering a foreign hotel should be forbidden, got %v", err)
	}

	empty := w.user(domain.RoleMerchant)
	got, _ = w.bookings.ListBookings(w.ctx, empty, app.BookingQuery{})
	if len(got) != 0 {
		t.Fatalf("merchant without hotels sees %+v", got)
	}

	got, _ = w.bookings.ListBookings(w.ctx, w.admin, app.BookingQuery{})
	if len(got) != 3 {
		t.Fatalf("admin sees %d bookings, want 3", len(got))
	}
	got, _ = w.bookings.ListBookings(w.ctx, w.admin, app.BookingQuery{HotelID: h2.ID})
	if len(got) != 1 || got[0].ID != elsewhere.ID {
		t.Fatalf("admin hotel filter: %+v", got)
	}

	if _, err := w.bookings.GetBooking(w.ctx, w.customer, theirs.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("reading another customer's booking should be forbidden, got %v", err)
	}
}

func TestPaymentFlow_SchedulesSettlement(t *testing.T) {
	w := newBookingWorld(t)
	b := w.mustBook(w.customer, w.h, w.rm, "2024-06-01", "2024-06-05")

	p, err := w.bookings.CreatePayment(w.ctx, w.customer, app.CreatePaymentInput{BookingID: b.ID, Amount: 299, PaymentMethod: "card"})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if p.Status != domain.PaymentPending || p.PaidAt != nil {
		t.Fatalf("unexpected payment: %+v", p)
	}
	jobs := w.store.PendingJobs()
	if len(jobs) != 1 || jobs[0].PaymentID != p.ID || !jobs[0].DueAt.Equal(w.now.Add(2*time.Second)) {
		t.Fatalf("expected one job due in 2s, got %+v", jobs)
	}

	list, _ := w.bookings.ListPayments(w.ctx, w.customer, b.ID)
	if len(list) != 1 {
		t.Fatalf("ListPayments = %d, want 1", len(list))
	}

	_, err = w.bookings.CreatePayment(w.ctx, w.customer, app.CreatePaymentInput{BookingID: uuid.NewString(), Amount: 1, PaymentMethod: "card"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("payment for unknown booking should be not found, got %v", err)
	}
}

func TestFailedPaymentLeavesUnpaidBooking(t *testing.T) {
	w := newBookingWorld(t)
	b := w.mustBook(w.customer, w.h, w.rm, "2024-06-01", "2024-06-05")

	// the payment request fails validation after the booking exists
	if _, err := w.bookings.CreatePayment(w.ctx, w.customer, app.CreatePaymentInput{BookingID: b.ID, Amount: 0}); err == nil {
		t.Fatalf("expected payment failure")
	}

	got, _ := w.bookings.GetBooking(w.ctx, w.customer, b.ID)
	if got.Status != domain.BookingPending {
		t.Fatalf("booking should stay pending, got %s", got.Status)
	}
	pays, _ := w.bookings.ListPayments(w.ctx, w.customer, b.ID)
	if len(pays) != 0 {
		t.Fatalf("expected zero payments, got %d", len(pays))
	}

	w.now = w.now.Add(time.Hour)
	unpaid, err := w.bookings.ListUnpaid(w.ctx, 30*time.Minute)
	if err != nil || len(unpaid) != 1 || unpaid[0].ID != b.ID {
		t.Fatalf("expected booking in unpaid report, got %+v %v", unpaid, err)
	}
}

func TestCreateReview_RecomputesRating(t *testing.T) {
	w := newBookingWorld(t)
	b1 := w.mustBook(w.customer, w.h, w.rm, "2024-06-01", "2024-06-02")
	b2 := w.mustBook(w.customer, w.h, w.rm, "2024-06-03", "2024-06-04")

	if _, err := w.bookings.CreateReview(w.ctx, w.customer, app.CreateReviewInput{HotelID: w.h.ID, BookingID: b1.ID, Rating: 5}); err != nil {
		t.Fatalf("review 1: %v", err)
	}
	if _, err := w.bookings.CreateReview(w.ctx, w.customer, app.CreateReviewInput{HotelID: w.h.ID, BookingID: b2.ID, Rating: 4, Comment: ptr("ok")}); err != nil {
		t.Fatalf("review 2: %v", err)
	}
	h, _ := w.catalog.GetHotel(w.ctx, w.h.ID)
	if h.Rating != 4.5 {
		t.Fatalf("rating = %v, want 4.5", h.Rating)
	}
	reviews, _ := w.catalog.ListReviews(w.ctx, w.h.ID)
	if len(reviews) != 2 {
		t.Fatalf("reviews = %d, want 2", len(reviews))
	}

	if _, err := w.bookings.CreateReview(w.ctx, w.customer, app.CreateReviewInput{HotelID: w.h.ID, BookingID: b1.ID, Rating: 3}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second review of a booking should conflict, got %v", err)
	}
	stranger := w.user(domain.RoleCustomer)
	if _, err := w.bookings.CreateReview(w.ctx, stranger, app.CreateReviewInput{HotelID: w.h.ID, BookingID: b1.ID, Rating: 1}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger review should be forbidden, got %v", err)
	}
	if _, err := w.bookings.CreateReview(w.ctx, w.customer, app.CreateReviewInput{HotelID: w.h.ID, BookingID: b1.ID, Rating: 6}); err == nil {
		t.Fatalf("rating 6 must be rejected")
	}
}
