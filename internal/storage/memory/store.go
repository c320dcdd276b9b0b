// Package memory is a process-local repository used by tests and by the API
// when no MySQL DSN is configured. One mutex serializes all writes, which
// gives the same no-double-booking guarantee as the row lock in MySQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"hotel_booking/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	hotels   map[string]domain.Hotel
	types    map[string]domain.RoomType
	rooms    map[string]domain.Room
	bookings map[string]domain.Booking
	payments map[string]domain.Payment
	jobs     map[string]domain.PaymentJob
	reviews  map[string]domain.Review
}

var _ domain.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:    map[string]domain.User{},
		hotels:   map[string]domain.Hotel{},
		types:    map[string]domain.RoomType{},
		rooms:    map[string]domain.Room{},
		bookings: map[string]domain.Booking{},
		payments: map[string]domain.Payment{},
		jobs:     map[string]domain.PaymentJob{},
		reviews:  map[string]domain.Review{},
	}
}

// ---- users ----

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.NotFound("user")
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return domain.Conflict("user already exists")
	}
	s.users[u.ID] = u
	return nil
}

// ---- hotels ----

func newestFirst[T any](xs []T, created func(T) time.Time) {
	sort.SliceStable(xs, func(i, j int) bool { return created(xs[i]).After(created(xs[j])) })
}

func (s *Store) ListHotels(ctx context.Context, f domain.HotelFilter) ([]domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Hotel{}
	for _, h := range s.hotels {
		if f.City != "" && h.City != f.City {
			continue
		}
		if f.Status != "" && h.Status != f.Status {
			continue
		}
		out = append(out, h)
	}
	newestFirst(out, func(h domain.Hotel) time.Time { return h.CreatedAt })
	return out, nil
}

func (s *Store) ListHotelsByMerchant(ctx context.Context, merchantID string) ([]domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Hotel{}
	for _, h := range s.hotels {
		if h.MerchantID == merchantID {
			out = append(out, h)
		}
	}
	newestFirst(out, func(h domain.Hotel) time.Time { return h.CreatedAt })
	return out, nil
}

func (s *Store) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.NotFound("hotel")
	}
	return h, nil
}

func (s *Store) CreateHotel(ctx context.Context, h domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[h.MerchantID]; !ok {
		return domain.NotFound("referenced record")
	}
	s.hotels[h.ID] = h
	return nil
}

func (s *Store) UpdateHotel(ctx context.Context, id string, p domain.HotelPatch, at time.Time) (domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.NotFound("hotel")
	}
	if p.Empty() {
		return h, nil
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setPtr := func(dst **string, v *string) {
		if v != nil {
			c := *v
			*dst = &c
		}
	}
	set(&h.Name, p.Name)
	set(&h.Address, p.Address)
	set(&h.City, p.City)
	setPtr(&h.Description, p.Description)
	setPtr(&h.Phone, p.Phone)
	setPtr(&h.Email, p.Email)
	setPtr(&h.ImageURL, p.ImageURL)
	h.UpdatedAt = at
	s.hotels[id] = h
	return h, nil
}

func (s *Store) SetHotelStatus(ctx context.Context, id string, from, to domain.HotelStatus, at time.Time) (domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.NotFound("hotel")
	}
	if h.Status != from {
		return domain.Hotel{}, domain.Conflict("hotel status changed concurrently to %s", h.Status)
	}
	h.Status = to
	h.UpdatedAt = at
	s.hotels[id] = h
	return h, nil
}

// ---- room types & rooms ----

func (s *Store) ListRoomTypes(ctx context.Context, hotelID string) ([]domain.RoomType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.RoomType{}
	for _, rt := range s.types {
		if rt.HotelID == hotelID {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetRoomType(ctx context.Context, id string) (domain.RoomType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.types[id]
	if !ok {
		return domain.RoomType{}, domain.NotFound("room type")
	}
	return rt, nil
}

func (s *Store) CreateRoomType(ctx context.Context, rt domain.RoomType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[rt.HotelID]; !ok {
		return domain.NotFound("referenced record")
	}
	s.types[rt.ID] = rt
	return nil
}

func (s *Store) UpdateRoomType(ctx context.Context, id string, p domain.RoomTypePatch, at time.Time) (domain.RoomType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.types[id]
	if !ok {
		return domain.RoomType{}, domain.NotFound("room type")
	}
	if p.Name != nil {
		rt.Name = *p.Name
	}
	if p.Description != nil {
		d := *p.Description
		rt.Description = &d
	}
	if p.BasePrice != nil {
		rt.BasePrice = *p.BasePrice
	}
	if p.MaxOccupancy != nil {
		rt.MaxOccupancy = *p.MaxOccupancy
	}
	if p.Amenities != nil {
		rt.Amenities = append([]string{}, (*p.Amenities)...)
	}
	if p.ImageURL != nil {
		u := *p.ImageURL
		rt.ImageURL = &u
	}
	rt.UpdatedAt = at
	s.types[id] = rt
	return rt, nil
}

func (s *Store) ListRooms(ctx context.Context, hotelID string) ([]domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomsWhere(func(r domain.Room) bool { return r.HotelID == hotelID }), nil
}

func (s *Store) roomsWhere(keep func(domain.Room) bool) []domain.Room {
	out := []domain.Room{}
	for _, r := range s.rooms {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out
}

func (s *Store) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, domain.NotFound("room")
	}
	return r, nil
}

func (s *Store) CreateRoom(ctx context.Context, r domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[r.HotelID]
	if !ok {
		return domain.NotFound("referenced record")
	}
	if _, ok := s.types[r.RoomTypeID]; !ok {
		return domain.NotFound("referenced record")
	}
	for _, other := range s.rooms {
		if other.HotelID == r.HotelID && other.RoomNumber == r.RoomNumber {
			return domain.Conflict("room already exists")
		}
	}
	s.rooms[r.ID] = r
	s.recountRooms(h.ID, r.CreatedAt)
	return nil
}

func (s *Store) UpdateRoom(ctx context.Context, id string, p domain.RoomPatch, at time.Time) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, domain.NotFound("room")
	}
	if p.RoomTypeID != nil {
		r.RoomTypeID = *p.RoomTypeID
	}
	if p.RoomNumber != nil {
		r.RoomNumber = *p.RoomNumber
	}
	if p.Floor != nil {
		f := *p.Floor
		r.Floor = &f
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
	r.UpdatedAt = at
	s.rooms[id] = r
	if p.IsActive != nil {
		s.recountRooms(r.HotelID, at)
	}
	return r, nil
}

// recountRooms refreshes a hotel's active room count; callers hold s.mu.
func (s *Store) recountRooms(hotelID string, at time.Time) {
	h, ok := s.hotels[hotelID]
	if !ok {
		return
	}
	n := 0
	for _, r := range s.rooms {
		if r.HotelID == hotelID && r.IsActive {
			n++
		}
	}
	h.TotalRooms = n
	h.UpdatedAt = at
	s.hotels[hotelID] = h
}

func (s *Store) FindAvailableRooms(ctx context.Context, hotelID string, stay domain.DateRange) ([]domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomsWhere(func(r domain.Room) bool {
		return r.HotelID == hotelID && r.Bookable() && !s.conflicts(r.ID, "", stay)
	}), nil
}

// conflicts reports a confirmed booking on roomID, other than exclude, overlapping stay.
func (s *Store) conflicts(roomID, exclude string, stay domain.DateRange) bool {
	for _, b := range s.bookings {
		if b.RoomID != roomID || b.ID == exclude || b.Status != domain.BookingConfirmed {
			continue
		}
		if domain.Overlaps(b.Stay(), stay) {
			return true
		}
	}
	return false
}
