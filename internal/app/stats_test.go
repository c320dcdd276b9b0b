package app_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

func TestHotelStats_Today(t *testing.T) {
	f := newFixture(t)
	m := f.user(domain.RoleMerchant)
	c := f.user(domain.RoleCustomer)
	h := f.hotel(m)
	rt := f.roomType(m, h.ID, 2)

	var rooms []domain.Room
	for i := 0; i < 10; i++ {
		rooms = append(rooms, f.room(m, h.ID, rt.ID, fmt.Sprintf("%d", 100+i)))
	}
	occupied := string(domain.RoomOccupied)
	for _, r := range rooms[7:] {
		if _, err := f.catalog.UpdateRoom(f.ctx, m, r.ID, app.UpdateRoomInput{Status: &occupied}); err != nil {
			t.Fatalf("UpdateRoom: %v", err)
		}
	}

	paid := f.mustBook(c, h, rooms[0], "2024-06-01", "2024-06-03")
	f.confirm(m, paid.ID)
	f.mustBook(c, h, rooms[1], "2024-06-02", "2024-06-04")

	// created yesterday, checks in today, still pending
	f.now = testNow.Add(-24 * time.Hour)
	f.mustBook(c, h, rooms[2], "2024-06-01", "2024-06-02")
	f.now = testNow

	got, err := f.stats.HotelStats(f.ctx, m, h.ID)
	if err != nil {
		t.Fatalf("HotelStats: %v", err)
	}
	want := domain.HotelStats{TotalRooms: 10, OccupiedRooms: 3, TodayCheckIns: 2, TodayRevenue: 299}
	if got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}

	// the next day the confirmed booking no longer counts as today's revenue
	f.now = testNow.Add(24 * time.Hour)
	got, _ = f.stats.HotelStats(f.ctx, m, h.ID)
	if got.TodayRevenue != 0 || got.TodayCheckIns != 1 {
		t.Fatalf("next-day stats = %+v", got)
	}
}

func TestHotelStats_Access(t *testing.T) {
	f := newFixture(t)
	m := f.user(domain.RoleMerchant)
	h := f.hotel(m)

	for _, who := range []domain.Identity{f.user(domain.RoleCustomer), f.user(domain.RoleMerchant)} {
		if _, err := f.stats.HotelStats(f.ctx, who, h.ID); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: expected forbidden, got %v", who.Role, err)
		}
	}
	if _, err := f.stats.HotelStats(f.ctx, f.user(domain.RoleAdmin), h.ID); err != nil {
		t.Fatalf("admin: %v", err)
	}
}

func TestPlatformStats(t *testing.T) {
	f := newFixture(t)
	m := f.user(domain.RoleMerchant)
	c := f.user(domain.RoleCustomer)
	f.user(domain.RoleAdmin)
	h := f.hotel(m)
	rt := f.roomType(m, h.ID, 2)
	r := f.room(m, h.ID, rt.ID, "1")

	b := f.mustBook(c, h, r, "2024-06-01", "2024-06-02")
	f.confirm(m, b.ID)
	f.mustBook(c, h, r, "2024-06-10", "2024-06-12")

	got, err := f.stats.PlatformStats(f.ctx)
	if err != nil {
		t.Fatalf("PlatformStats: %v", err)
	}
	want := domain.PlatformStats{TotalMerchants: 1, TotalUsers: 1, TotalBookings: 2, TotalRevenue: 299}
	if got != want {
		t.Fatalf("platform = %+v, want %+v", got, want)
	}
}
