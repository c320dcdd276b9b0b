package app_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

// ---- fakes ----

// fakeCache stores JSON like the redis adapter so typed reads round-trip.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(v, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

// ---- fixture ----

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *memory.Store
	cache    *fakeCache
	now      time.Time
	catalog  *app.CatalogService
	bookings *app.BookingService
	stats    *app.StatsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, ctx: context.Background(), store: memory.New(), cache: &fakeCache{}, now: testNow}
	d := app.Deps{
		Users: f.store, Hotels: f.store, Rooms: f.store, Bookings: f.store,
		Payments: f.store, Reviews: f.store, Stats: f.store,
		Cache: f.cache, CacheTTL: time.Minute,
		PaymentDelay: 2 * time.Second,
		Now:          func() time.Time { return f.now },
		Location:     time.UTC,
	}
	f.catalog = app.NewCatalogService(d)
	f.bookings = app.NewBookingService(d)
	f.stats = app.NewStatsService(d)
	return f
}

func (f *fixture) user(role domain.Role) domain.Identity {
	f.t.Helper()
	id := uuid.NewString()
	if err := f.store.CreateUser(f.ctx, domain.User{ID: id, Role: role, CreatedAt: f.now, UpdatedAt: f.now}); err != nil {
		f.t.Fatalf("create user: %v", err)
	}
	return domain.Identity{UserID: id, Role: role}
}

func (f *fixture) hotel(owner domain.Identity) domain.Hotel {
	f.t.Helper()
	h, err := f.catalog.CreateHotel(f.ctx, owner, app.CreateHotelInput{Name: "Sea View", Address: "1 Beach Rd", City: "Nice"})
	if err != nil {
		f.t.Fatalf("create hotel: %v", err)
	}
	return h
}

func (f *fixture) roomType(owner domain.Identity, hotelID string, maxOcc int) domain.RoomType {
	f.t.Helper()
	rt, err := f.catalog.CreateRoomType(f.ctx, owner, hotelID, app.CreateRoomTypeInput{
		Name: "Double", BasePrice: 120, MaxOccupancy: &maxOcc, Amenities: []string{"wifi"},
	})
	if err != nil {
		f.t.Fatalf("create room type: %v", err)
	}
	return rt
}

func (f *fixture) room(owner domain.Identity, hotelID, typeID, number string) domain.Room {
	f.t.Helper()
	rm, err := f.catalog.CreateRoom(f.ctx, owner, hotelID, app.CreateRoomInput{RoomTypeID: typeID, RoomNumber: number})
	if err != nil {
		f.t.Fatalf("create room: %v", err)
	}
	return rm
}

func (f *fixture) book(who domain.Identity, h domain.Hotel, rm domain.Room, in, out string) (domain.Booking, error) {
	return f.bookings.CreateBooking(f.ctx, who, app.CreateBookingInput{
		HotelID: h.ID, RoomID: rm.ID, CheckInDate: in, CheckOutDate: out, Guests: 2, TotalAmount: 299,
	})
}

func (f *fixture) mustBook(who domain.Identity, h domain.Hotel, rm domain.Room, in, out string) domain.Booking {
	f.t.Helper()
	b, err := f.book(who, h, rm, in, out)
	if err != nil {
		f.t.Fatalf("create booking: %v", err)
	}
	return b
}

func (f *fixture) confirm(who domain.Identity, id string) domain.Booking {
	f.t.Helper()
	st := string(domain.BookingConfirmed)
	b, err := f.bookings.UpdateBooking(f.ctx, who, id, app.UpdateBookingInput{Status: &st})
	if err != nil {
		f.t.Fatalf("confirm booking: %v", err)
	}
	return b
}

func ptr[T any](v T) *T { return &v }

func roomIDs(rs []domain.Room) map[string]bool {
	out := map[string]bool{}
	for _, r := range rs {
		out[r.ID] = true
	}
	return out
}
