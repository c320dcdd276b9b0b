package app

import (
	"context"
	"fmt"
	"time"

	"hotel_booking/internal/domain"
)

func hotelKey(id string) string     { return fmt.Sprintf("hotel:%s", id) }
func roomTypesKey(id string) string { return fmt.Sprintf("room-types:%s", id) }
func reviewsKey(id string) string   { return fmt.Sprintf("reviews:%s", id) }

// CatalogService owns hotels, room types, rooms and availability.
type CatalogService struct {
	hotels   domain.HotelRepository
	rooms    domain.RoomRepository
	reviews  domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
	loc      *time.Location
}

func NewCatalogService(d Deps) *CatalogService {
	return &CatalogService{
		hotels: d.Hotels, rooms: d.Rooms, reviews: d.Reviews,
		cache: d.Cache, cacheTTL: d.CacheTTL, now: d.clock(), loc: d.loc(),
	}
}

// cached is a read-through helper. Cache errors only cost a repository read.
func cached[T any](ctx context.Context, c domain.Cache, ttl time.Duration, key string, load func() (T, error)) (T, error) {
	var v T
	if c != nil {
		if ok, _ := c.Get(ctx, key, &v); ok {
			return v, nil
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	if c != nil {
		_ = c.Set(ctx, key, v, ttlSeconds(ttl))
	}
	return v, nil
}

func (s *CatalogService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	for _, k := range keys {
		_ = s.cache.Del(ctx, k)
	}
}

// ---- hotels ----

func (s *CatalogService) ListHotels(ctx context.Context, city, status string) ([]domain.Hotel, error) {
	f := domain.HotelFilter{City: city, Status: domain.HotelStatus(status)}
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.InvalidField("status", "oneof")
	}
	return s.hotels.ListHotels(ctx, f)
}

func (s *CatalogService) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	if err := checkID("id", id); err != nil {
		return domain.Hotel{}, err
	}
	return cached(ctx, s.cache, s.cacheTTL, hotelKey(id), func() (domain.Hotel, error) {
		return s.hotels.GetHotel(ctx, id)
	})
}

func (s *CatalogService) ListMerchantHotels(ctx context.Context, who domain.Identity) ([]domain.Hotel, error) {
	return s.hotels.ListHotelsByMerchant(ctx, who.UserID)
}

// CreateHotel registers a hotel owned by the caller, always pending approval.
func (s *CatalogService) CreateHotel(ctx context.Context, who domain.Identity, in CreateHotelInput) (domain.Hotel, error) {
	if err := check(in); err != nil {
		return domain.Hotel{}, err
	}
	now := s.now()
	h := domain.Hotel{
		ID:          newID(),
		MerchantID:  who.UserID,
		Name:        in.Name,
		Description: in.Description,
		Address:     in.Address,
		City:        in.City,
		Phone:       in.Phone,
		Email:       in.Email,
		ImageURL:    in.ImageURL,
		Status:      domain.HotelPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.hotels.CreateHotel(ctx, h); err != nil {
		return domain.Hotel{}, err
	}
	return h, nil
}

func (s *CatalogService) UpdateHotel(ctx context.Context, who domain.Identity, id string, in UpdateHotelInput) (domain.Hotel, error) {
	if err := check(in); err != nil {
		return domain.Hotel{}, err
	}
	if _, err := hotelAccess(ctx, s.hotels, who, id); err != nil {
		return domain.Hotel{}, err
	}
	h, err := s.hotels.UpdateHotel(ctx, id, in.patch(), s.now())
	if err != nil {
		return domain.Hotel{}, err
	}
	s.invalidate(ctx, hotelKey(id))
	return h, nil
}

// SetHotelStatus applies an admin moderation decision.
func (s *CatalogService) SetHotelStatus(ctx context.Context, id string, in HotelStatusInput) (domain.Hotel, error) {
	if err := check(in); err != nil {
		return domain.Hotel{}, err
	}
	if err := checkID("id", id); err != nil {
		return domain.Hotel{}, err
	}
	cur, err := s.hotels.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	next := domain.HotelStatus(in.Status)
	if !cur.Status.CanTransitionTo(next) {
		return domain.Hotel{}, domain.Conflict("cannot move hotel from %s to %s", cur.Status, next)
	}
	h, err := s.hotels.SetHotelStatus(ctx, id, cur.Status, next, s.now())
	if err != nil {
		return domain.Hotel{}, err
	}
	s.invalidate(ctx, hotelKey(id))
	return h, nil
}

// ---- room types ----

func (s *CatalogService) ListRoomTypes(ctx context.Context, hotelID string) ([]domain.RoomType, error) {
	if err := checkID("hotelId", hotelID); err != nil {
		return nil, err
	}
	return cached(ctx, s.cache, s.cacheTTL, roomTypesKey(hotelID), func() ([]domain.RoomType, error) {
		return s.rooms.ListRoomTypes(ctx, hotelID)
	})
}

func (s *CatalogService) CreateRoomType(ctx context.Context, who domain.Identity, hotelID string, in CreateRoomTypeInput) (domain.RoomType, error) {
	if err := check(in); err != nil {
		return domain.RoomType{}, err
	}
	if _, err := hotelAccess(ctx, s.hotels, who, hotelID); err != nil {
		return domain.RoomType{}, err
	}
	now := s.now()
	rt := domain.RoomType{
		ID:           newID(),
		HotelID:      hotelID,
		Name:         in.Name,
		Description:  in.Description,
		BasePrice:    in.BasePrice,
		MaxOccupancy: domain.DefaultMaxOccupancy,
		Amenities:    in.Amenities,
		ImageURL:     in.ImageURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.MaxOccupancy != nil {
		rt.MaxOccupancy = *in.MaxOccupancy
	}
	if rt.Amenities == nil {
		rt.Amenities = []string{}
	}
	if err := s.rooms.CreateRoomType(ctx, rt); err != nil {
		return domain.RoomType{}, err
	}
	s.invalidate(ctx, roomTypesKey(hotelID))
	return rt, nil
}

func (s *CatalogService) UpdateRoomType(ctx context.Context, who domain.Identity, id string, in UpdateRoomTypeInput) (domain.RoomType, error) {
	if err := check(in); err != nil {
		return domain.RoomType{}, err
	}
	if err := checkID("id", id); err != nil {
		return domain.RoomType{}, err
	}
	cur, err := s.rooms.GetRoomType(ctx, id)
	if err != nil {
		return domain.RoomType{}, err
	}
	if _, err := hotelAccess(ctx, s.hotels, who, cur.HotelID); err != nil {
		return domain.RoomType{}, err
	}
	rt, err := s.rooms.UpdateRoomType(ctx, id, domain.RoomTypePatch{
		Name: in.Name, Description: in.Description, BasePrice: in.BasePrice,
		MaxOccupancy: in.MaxOccupancy, Amenities: in.Amenities, ImageURL: in.ImageURL,
	}, s.now())
	if err != nil {
		return domain.RoomType{}, err
	}
	s.invalidate(ctx, roomTypesKey(cur.HotelID))
	return rt, nil
}

// ---- rooms ----

func (s *CatalogService) ListRooms(ctx context.Context, hotelID string) ([]domain.Room, error) {
	if err := checkID("hotelId", hotelID); err != nil {
		return nil, err
	}
	return s.rooms.ListRooms(ctx, hotelID)
}

func (s *CatalogService) CreateRoom(ctx context.Context, who domain.Identity, hotelID string, in CreateRoomInput) (domain.Room, error) {
	if err := check(in); err != nil {
		return domain.Room{}, err
	}
	if _, err := hotelAccess(ctx, s.hotels, who, hotelID); err != nil {
		return domain.Room{}, err
	}
	if err := s.requireRoomType(ctx, hotelID, in.RoomTypeID); err != nil {
		return domain.Room{}, err
	}
	now := s.now()
	rm := domain.Room{
		ID:         newID(),
		HotelID:    hotelID,
		RoomTypeID: in.RoomTypeID,
		RoomNumber: in.RoomNumber,
		Floor:      in.Floor,
		Status:     domain.RoomAvailable,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Status != nil {
		rm.Status = domain.RoomStatus(*in.Status)
	}
	if in.IsActive != nil {
		rm.IsActive = *in.IsActive
	}
	if err := s.rooms.CreateRoom(ctx, rm); err != nil {
		return domain.Room{}, err
	}
	// totalRooms changed
	s.invalidate(ctx, hotelKey(hotelID))
	return rm, nil
}

func (s *CatalogService) UpdateRoom(ctx context.Context, who domain.Identity, id string, in UpdateRoomInput) (domain.Room, error) {
	if err := check(in); err != nil {
		return domain.Room{}, err
	}
	if err := checkID("id", id); err != nil {
		return domain.Room{}, err
	}
	cur, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}
	if _, err := hotelAccess(ctx, s.hotels, who, cur.HotelID); err != nil {
		return domain.Room{}, err
	}
	if in.RoomTypeID != nil {
		if err := s.requireRoomType(ctx, cur.HotelID, *in.RoomTypeID); err != nil {
			return domain.Room{}, err
		}
	}
	p := domain.RoomPatch{RoomTypeID: in.RoomTypeID, RoomNumber: in.RoomNumber, Floor: in.Floor, IsActive: in.IsActive}
	if in.Status != nil {
		st := domain.RoomStatus(*in.Status)
		p.Status = &st
	}
	rm, err := s.rooms.UpdateRoom(ctx, id, p, s.now())
	if err != nil {
		return domain.Room{}, err
	}
	if in.IsActive != nil {
		s.invalidate(ctx, hotelKey(cur.HotelID))
	}
	return rm, nil
}

func (s *CatalogService) requireRoomType(ctx context.Context, hotelID, roomTypeID string) error {
	rt, err := s.rooms.GetRoomType(ctx, roomTypeID)
	if err != nil {
		return err
	}
	if rt.HotelID != hotelID {
		return domain.InvalidField("roomTypeId", "hotel")
	}
	return nil
}

// FindAvailableRooms lists bookable rooms of a hotel with no confirmed booking
// overlapping [checkIn, checkOut]. An unknown hotel yields an empty list.
func (s *CatalogService) FindAvailableRooms(ctx context.Context, hotelID, checkIn, checkOut string) ([]domain.Room, error) {
	if err := checkID("hotelId", hotelID); err != nil {
		return nil, err
	}
	stay, err := parseStay(queryStay, checkIn, checkOut, s.loc)
	if err != nil {
		return nil, err
	}
	return s.rooms.FindAvailableRooms(ctx, hotelID, stay)
}

// ---- reviews (read side) ----

func (s *CatalogService) ListReviews(ctx context.Context, hotelID string) ([]domain.Review, error) {
	if err := checkID("hotelId", hotelID); err != nil {
		return nil, err
	}
	return cached(ctx, s.cache, s.cacheTTL, reviewsKey(hotelID), func() ([]domain.Review, error) {
		return s.reviews.ListReviews(ctx, hotelID)
	})
}
