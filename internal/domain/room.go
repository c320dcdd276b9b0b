package domain

import "time"

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomCleaning    RoomStatus = "cleaning"
	RoomMaintenance RoomStatus = "maintenance"
	RoomOutOfOrder  RoomStatus = "out_of_order"
)

const DefaultMaxOccupancy = 2

type RoomType struct {
	ID           string    `json:"id"`
	HotelID      string    `json:"hotelId"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	BasePrice    float64   `json:"basePrice"`
	MaxOccupancy int       `json:"maxOccupancy"`
	Amenities    []string  `json:"amenities"`
	ImageURL     *string   `json:"imageUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RoomTypePatch struct {
	Name         *string
	Description  *string
	BasePrice    *float64
	MaxOccupancy *int
	Amenities    *[]string
	ImageURL     *string
}

type Room struct {
	ID         string     `json:"id"`
	HotelID    string     `json:"hotelId"`
	RoomTypeID string     `json:"roomTypeId"`
	RoomNumber string     `json:"roomNumber"`
	Floor      *int       `json:"floor"`
	Status     RoomStatus `json:"status"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Bookable reports whether the room itself may be offered, ignoring bookings.
func (r Room) Bookable() bool { return r.IsActive && r.Status == RoomAvailable }

type RoomPatch struct {
	RoomTypeID *string
	RoomNumber *string
	Floor      *int
	Status     *RoomStatus
	IsActive   *bool
}
