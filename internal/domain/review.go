package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	HotelID   string    `json:"hotelId"`
	BookingID string    `json:"bookingId"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type HotelStats struct {
	TotalRooms    int     `json:"totalRooms"`
	OccupiedRooms int     `json:"occupiedRooms"`
	TodayCheckIns int     `json:"todayCheckIns"`
	TodayRevenue  float64 `json:"todayRevenue"`
}

type PlatformStats struct {
	TotalMerchants int     `json:"totalMerchants"`
	TotalUsers     int     `json:"totalUsers"`
	TotalBookings  int     `json:"totalBookings"`
	TotalRevenue   float64 `json:"totalRevenue"`
}
