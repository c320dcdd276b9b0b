package app

import (
	"context"
	"strconv"
	"time"

	"hotel_booking/internal/domain"
)

// BookingService runs the booking -> payment flow and reviews.
type BookingService struct {
	hotels   domain.HotelRepository
	rooms    domain.RoomRepository
	bookings domain.BookingRepository
	payments domain.PaymentRepository
	reviews  domain.ReviewRepository
	cache    domain.Cache
	delay    time.Duration
	now      func() time.Time
	loc      *time.Location
}

func NewBookingService(d Deps) *BookingService {
	return &BookingService{
		hotels: d.Hotels, rooms: d.Rooms, bookings: d.Bookings, payments: d.Payments, reviews: d.Reviews,
		cache: d.Cache, delay: d.PaymentDelay, now: d.clock(), loc: d.loc(),
	}
}

// canAccess reports whether who may see or change b: its guest, the merchant
// owning its hotel, or an admin.
func (s *BookingService) canAccess(ctx context.Context, who domain.Identity, b domain.Booking) error {
	switch who.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleMerchant:
		if b.UserID == who.UserID {
			return nil
		}
		h, err := s.hotels.GetHotel(ctx, b.HotelID)
		if err != nil {
			return err
		}
		if h.MerchantID == who.UserID {
			return nil
		}
	default:
		if b.UserID == who.UserID {
			return nil
		}
	}
	return domain.Forbidden("booking belongs to another user")
}

// ListBookings scopes the listing by role: customers see their own bookings,
// merchants those of their hotels (optionally one hotel), admins everything.
func (s *BookingService) ListBookings(ctx context.Context, who domain.Identity, q BookingQuery) ([]domain.Booking, error) {
	f := domain.BookingFilter{Status: domain.BookingStatus(q.Status)}
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.InvalidField("status", "oneof")
	}
	if q.HotelID != "" {
		if err := checkID("hotelId", q.HotelID); err != nil {
			return nil, err
		}
	}

	switch who.Role {
	case domain.RoleAdmin:
		f.HotelID = q.HotelID
	case domain.RoleMerchant:
		if q.HotelID != "" {
			if _, err := hotelAccess(ctx, s.hotels, who, q.HotelID); err != nil {
				return nil, err
			}
			f.HotelID = q.HotelID
			break
		}
		owned, err := s.hotels.ListHotelsByMerchant(ctx, who.UserID)
		if err != nil {
			return nil, err
		}
		f.HotelIDs = make([]string, 0, len(owned))
		for _, h := range owned {
			f.HotelIDs = append(f.HotelIDs, h.ID)
		}
	default:
		f.UserID = who.UserID
		f.HotelID = q.HotelID
	}
	return s.bookings.ListBookings(ctx, f)
}

func (s *BookingService) GetBooking(ctx context.Context, who domain.Identity, id string) (domain.Booking, error) {
	if err := checkID("id", id); err != nil {
		return domain.Booking{}, err
	}
	b, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := s.canAccess(ctx, who, b); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

// CreateBooking places a pending booking for the caller. The storage layer
// refuses it with ErrConflict if a confirmed booking already holds the room.
func (s *BookingService) CreateBooking(ctx context.Context, who domain.Identity, in CreateBookingInput) (domain.Booking, error) {
	if err := check(in); err != nil {
		return domain.Booking{}, err
	}
	stay, err := parseStay(bookingStay, in.CheckInDate, in.CheckOutDate, s.loc)
	if err != nil {
		return domain.Booking{}, err
	}
	room, err := s.rooms.GetRoom(ctx, in.RoomID)
	if err != nil {
		return domain.Booking{}, err
	}
	if room.HotelID != in.HotelID {
		return domain.Booking{}, domain.InvalidField("roomId", "hotel")
	}
	if !room.Bookable() {
		return domain.Booking{}, domain.Conflict("room %s is not open for booking", room.RoomNumber)
	}
	rt, err := s.rooms.GetRoomType(ctx, room.RoomTypeID)
	if err != nil {
		return domain.Booking{}, err
	}
	if in.Guests > rt.MaxOccupancy {
		return domain.Booking{}, domain.Invalid("Invalid data",
			domain.FieldError{Field: "guests", Rule: "max", Param: strconv.Itoa(rt.MaxOccupancy)})
	}

	now := s.now()
	b := domain.Booking{
		ID:              newID(),
		UserID:          who.UserID,
		HotelID:         in.HotelID,
		RoomID:          in.RoomID,
		CheckInDate:     stay.Start,
		CheckOutDate:    stay.End,
		Guests:          in.Guests,
		TotalAmount:     in.TotalAmount,
		Status:          domain.BookingPending,
		SpecialRequests: in.SpecialRequests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.bookings.CreateBooking(ctx, b); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

// UpdateBooking applies a partial update. Customers may only cancel; status
// changes into stay states belong to the hotel side.
func (s *BookingService) UpdateBooking(ctx context.Context, who domain.Identity, id string, in UpdateBookingInput) (domain.Booking, error) {
	if err := check(in); err != nil {
		return domain.Booking{}, err
	}
	cur, err := s.GetBooking(ctx, who, id)
	if err != nil {
		return domain.Booking{}, err
	}

	var p domain.BookingPatch
	if in.Status != nil {
		st := domain.BookingStatus(*in.Status)
		if who.Is(domain.RoleCustomer) && st != cur.Status && st != domain.BookingCancelled {
			return domain.Booking{}, domain.Forbidden("customers may only cancel a booking")
		}
		p.Status = &st
	}
	p.Guests = in.Guests
	p.SpecialRequests = in.SpecialRequests
	if in.CheckInDate != nil {
		t, err := parseDate("checkInDate", *in.CheckInDate, s.loc)
		if err != nil {
			return domain.Booking{}, err
		}
		p.CheckInDate = &t
	}
	if in.CheckOutDate != nil {
		t, err := parseDate("checkOutDate", *in.CheckOutDate, s.loc)
		if err != nil {
			return domain.Booking{}, err
		}
		p.CheckOutDate = &t
	}
	return s.bookings.UpdateBooking(ctx, id, p, s.now())
}

// ListUnpaid returns pending bookings older than age that never got a payment,
// the visible residue of a failed booking -> payment sequence.
func (s *BookingService) ListUnpaid(ctx context.Context, age time.Duration) ([]domain.Booking, error) {
	return s.bookings.ListUnpaidBookings(ctx, s.now().Add(-age))
}

// ---- payments ----

// CreatePayment records a pending payment and schedules its settlement.
func (s *BookingService) CreatePayment(ctx context.Context, who domain.Identity, in CreatePaymentInput) (domain.Payment, error) {
	if err := check(in); err != nil {
		return domain.Payment{}, err
	}
	if _, err := s.GetBooking(ctx, who, in.BookingID); err != nil {
		return domain.Payment{}, err
	}
	now := s.now()
	p := domain.Payment{
		ID:            newID(),
		BookingID:     in.BookingID,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		Status:        domain.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	job := domain.PaymentJob{
		ID:        newID(),
		PaymentID: p.ID,
		DueAt:     now.Add(s.delay),
		Status:    domain.JobQueued,
		CreatedAt: now,
	}
	if err := s.payments.CreatePayment(ctx, p, job); err != nil {
		return domain.Payment{}, err
	}
	return p, nil
}

func (s *BookingService) ListPayments(ctx context.Context, who domain.Identity, bookingID string) ([]domain.Payment, error) {
	if _, err := s.GetBooking(ctx, who, bookingID); err != nil {
		return nil, err
	}
	return s.payments.ListPayments(ctx, bookingID)
}

// ---- reviews ----

// CreateReview rates a hotel on behalf of the guest of one of its bookings.
func (s *BookingService) CreateReview(ctx context.Context, who domain.Identity, in CreateReviewInput) (domain.Review, error) {
	if err := check(in); err != nil {
		return domain.Review{}, err
	}
	b, err := s.bookings.GetBooking(ctx, in.BookingID)
	if err != nil {
		return domain.Review{}, err
	}
	if b.UserID != who.UserID {
		return domain.Review{}, domain.Forbidden("only the guest of a booking may review it")
	}
	if b.HotelID != in.HotelID {
		return domain.Review{}, domain.InvalidField("hotelId", "booking")
	}
	now := s.now()
	rv := domain.Review{
		ID:        newID(),
		UserID:    who.UserID,
		HotelID:   in.HotelID,
		BookingID: in.BookingID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.CreateReview(ctx, rv); err != nil {
		return domain.Review{}, err
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, reviewsKey(in.HotelID))
		_ = s.cache.Del(ctx, hotelKey(in.HotelID))
	}
	return rv, nil
}
