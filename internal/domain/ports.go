package domain

import (
	"context"
	"time"
)

type UserRepository interface {
	GetUser(ctx context.Context, id string) (User, error)
	CreateUser(ctx context.Context, u User) error
}

type HotelRepository interface {
	ListHotels(ctx context.Context, f HotelFilter) ([]Hotel, error)
	ListHotelsByMerchant(ctx context.Context, merchantID string) ([]Hotel, error)
	GetHotel(ctx context.Context, id string) (Hotel, error)
	CreateHotel(ctx context.Context, h Hotel) error
	UpdateHotel(ctx context.Context, id string, p HotelPatch, at time.Time) (Hotel, error)
	// SetHotelStatus moves from -> to; ErrConflict when the stored status is no longer from.
	SetHotelStatus(ctx context.Context, id string, from, to HotelStatus, at time.Time) (Hotel, error)
}

type RoomRepository interface {
	ListRoomTypes(ctx context.Context, hotelID string) ([]RoomType, error)
	GetRoomType(ctx context.Context, id string) (RoomType, error)
	CreateRoomType(ctx context.Context, rt RoomType) error
	UpdateRoomType(ctx context.Context, id string, p RoomTypePatch, at time.Time) (RoomType, error)

	ListRooms(ctx context.Context, hotelID string) ([]Room, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	// CreateRoom also increments the hotel's totalRooms.
	CreateRoom(ctx context.Context, r Room) error
	UpdateRoom(ctx context.Context, id string, p RoomPatch, at time.Time) (Room, error)

	FindAvailableRooms(ctx context.Context, hotelID string, stay DateRange) ([]Room, error)
}

type BookingRepository interface {
	ListBookings(ctx context.Context, f BookingFilter) ([]Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	// CreateBooking locks the room and fails with ErrConflict if a confirmed
	// booking overlaps b's stay.
	CreateBooking(ctx context.Context, b Booking) error
	// UpdateBooking re-checks overlap under the room lock when the result is
	// confirmed and its status or stay changed.
	UpdateBooking(ctx context.Context, id string, p BookingPatch, at time.Time) (Booking, error)
	// ListUnpaidBookings returns pending bookings created at or before
	// olderThan that have no payment at all.
	ListUnpaidBookings(ctx context.Context, olderThan time.Time) ([]Booking, error)
}

type PaymentRepository interface {
	// CreatePayment stores p and its settlement job atomically.
	CreatePayment(ctx context.Context, p Payment, job PaymentJob) error
	ListPayments(ctx context.Context, bookingID string) ([]Payment, error)

	// ClaimPaymentJobs leases up to limit due jobs by pushing their dueAt to
	// now+lease and bumping attempts.
	ClaimPaymentJobs(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]PaymentJob, error)
	CompletePayment(ctx context.Context, job PaymentJob, transactionID string, at time.Time) error
	RetryPaymentJob(ctx context.Context, jobID string, dueAt time.Time, reason string) error
	// FailPayment marks the payment failed and closes its job.
	FailPayment(ctx context.Context, job PaymentJob, reason string, at time.Time) error
}

type ReviewRepository interface {
	ListReviews(ctx context.Context, hotelID string) ([]Review, error)
	// CreateReview stores r and recomputes the hotel rating in one transaction.
	CreateReview(ctx context.Context, r Review) error
}

type StatsRepository interface {
	HotelStats(ctx context.Context, hotelID string, day DateRange) (HotelStats, error)
	PlatformStats(ctx context.Context) (PlatformStats, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// StoredResponse is a completed response kept for Idempotency-Key replays.
type StoredResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

type IdempotencyStore interface {
	// Reserve claims key. It returns (nil, nil) when the caller owns the key,
	// the stored response for a completed key, or ErrConflict while another
	// request holds it.
	Reserve(ctx context.Context, key string) (*StoredResponse, error)
	Complete(ctx context.Context, key string, resp StoredResponse) error
	Release(ctx context.Context, key string) error
}

// Store is implemented by each storage adapter.
type Store interface {
	UserRepository
	HotelRepository
	RoomRepository
	BookingRepository
	PaymentRepository
	ReviewRepository
	StatsRepository
}
