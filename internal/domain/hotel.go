package domain

import "time"

type HotelStatus string

const (
	HotelPending   HotelStatus = "pending"
	HotelApproved  HotelStatus = "approved"
	HotelRejected  HotelStatus = "rejected"
	HotelSuspended HotelStatus = "suspended"
)

// hotelTransitions lists the moves an admin may make; anything absent is refused.
var hotelTransitions = map[HotelStatus][]HotelStatus{
	HotelPending:  {HotelApproved, HotelRejected},
	HotelApproved: {HotelSuspended},
}

func (s HotelStatus) Valid() bool {
	switch s {
	case HotelPending, HotelApproved, HotelRejected, HotelSuspended:
		return true
	}
	return false
}

func (s HotelStatus) CanTransitionTo(next HotelStatus) bool {
	for _, n := range hotelTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

type Hotel struct {
	ID          string      `json:"id"`
	MerchantID  string      `json:"merchantId"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Address     string      `json:"address"`
	City        string      `json:"city"`
	Phone       *string     `json:"phone"`
	Email       *string     `json:"email"`
	ImageURL    *string     `json:"imageUrl"`
	Status      HotelStatus `json:"status"`
	Rating      float64     `json:"rating"`
	TotalRooms  int         `json:"totalRooms"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type HotelFilter struct {
	City   string
	Status HotelStatus
}

// HotelPatch carries the merchant-editable fields; nil means unchanged.
type HotelPatch struct {
	Name        *string
	Description *string
	Address     *string
	City        *string
	Phone       *string
	Email       *string
	ImageURL    *string
}

func (p HotelPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Address == nil && p.City == nil &&
		p.Phone == nil && p.Email == nil && p.ImageURL == nil
}
