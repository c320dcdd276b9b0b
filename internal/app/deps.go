package app

import (
	"context"
	"time"

	"hotel_booking/internal/domain"
)

// Deps wires the services to their ports. Both storage adapters implement
// every repository, so callers usually set each field to the same value.
type Deps struct {
	Users    domain.UserRepository
	Hotels   domain.HotelRepository
	Rooms    domain.RoomRepository
	Bookings domain.BookingRepository
	Payments domain.PaymentRepository
	Reviews  domain.ReviewRepository
	Stats    domain.StatsRepository

	Cache    domain.Cache
	CacheTTL time.Duration

	// PaymentDelay is how long a new payment waits before settlement.
	PaymentDelay time.Duration
	// Now defaults to time.Now; Location to time.Local.
	Now      func() time.Time
	Location *time.Location
}

// DepsFrom points every repository at s.
func DepsFrom(s domain.Store) Deps {
	return Deps{
		Users: s, Hotels: s, Rooms: s, Bookings: s,
		Payments: s, Reviews: s, Stats: s,
	}
}

func (d Deps) clock() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}

func (d Deps) loc() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.Local
}

// hotelAccess resolves a hotel and checks that who may manage it.
func hotelAccess(ctx context.Context, hotels domain.HotelRepository, who domain.Identity, hotelID string) (domain.Hotel, error) {
	if err := checkID("hotelId", hotelID); err != nil {
		return domain.Hotel{}, err
	}
	h, err := hotels.GetHotel(ctx, hotelID)
	if err != nil {
		return domain.Hotel{}, err
	}
	if who.Is(domain.RoleAdmin) || (who.Is(domain.RoleMerchant) && h.MerchantID == who.UserID) {
		return h, nil
	}
	return domain.Hotel{}, domain.Forbidden("hotel belongs to another merchant")
}

func ttlSeconds(d time.Duration) int { return int(d.Seconds()) }
