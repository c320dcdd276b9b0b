package app

import "hotel_booking/internal/domain"

type CreateHotelInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
	Address     string  `json:"address" validate:"required"`
	City        string  `json:"city" validate:"required,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,max=64"`
	Email       *string `json:"email" validate:"omitempty,email"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
}

type UpdateHotelInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Address     *string `json:"address" validate:"omitempty,min=1"`
	City        *string `json:"city" validate:"omitempty,min=1,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,max=64"`
	Email       *string `json:"email" validate:"omitempty,email"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
}

func (in UpdateHotelInput) patch() domain.HotelPatch {
	return domain.HotelPatch{
		Name: in.Name, Description: in.Description, Address: in.Address, City: in.City,
		Phone: in.Phone, Email: in.Email, ImageURL: in.ImageURL,
	}
}

type HotelStatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected suspended"`
}

type CreateRoomTypeInput struct {
	Name         string   `json:"name" validate:"required,max=255"`
	Description  *string  `json:"description"`
	BasePrice    float64  `json:"basePrice" validate:"gt=0"`
	MaxOccupancy *int     `json:"maxOccupancy" validate:"omitempty,min=1"`
	Amenities    []string `json:"amenities" validate:"omitempty,dive,min=1"`
	ImageURL     *string  `json:"imageUrl" validate:"omitempty,url"`
}

type UpdateRoomTypeInput struct {
	Name         *string   `json:"name" validate:"omitempty,min=1,max=255"`
	Description  *string   `json:"description"`
	BasePrice    *float64  `json:"basePrice" validate:"omitempty,gt=0"`
	MaxOccupancy *int      `json:"maxOccupancy" validate:"omitempty,min=1"`
	Amenities    *[]string `json:"amenities"`
	ImageURL     *string   `json:"imageUrl" validate:"omitempty,url"`
}

type CreateRoomInput struct {
	RoomTypeID string  `json:"roomTypeId" validate:"required,uuid"`
	RoomNumber string  `json:"roomNumber" validate:"required,max=32"`
	Floor      *int    `json:"floor"`
	Status     *string `json:"status" validate:"omitempty,oneof=available occupied cleaning maintenance out_of_order"`
	IsActive   *bool   `json:"isActive"`
}

type UpdateRoomInput struct {
	RoomTypeID *string `json:"roomTypeId" validate:"omitempty,uuid"`
	RoomNumber *string `json:"roomNumber" validate:"omitempty,min=1,max=32"`
	Floor      *int    `json:"floor"`
	Status     *string `json:"status" validate:"omitempty,oneof=available occupied cleaning maintenance out_of_order"`
	IsActive   *bool   `json:"isActive"`
}

type CreateBookingInput struct {
	HotelID         string  `json:"hotelId" validate:"required,uuid"`
	RoomID          string  `json:"roomId" validate:"required,uuid"`
	CheckInDate     string  `json:"checkInDate" validate:"required"`
	CheckOutDate    string  `json:"checkOutDate" validate:"required"`
	Guests          int     `json:"guests" validate:"min=1"`
	TotalAmount     float64 `json:"totalAmount" validate:"gt=0"`
	SpecialRequests *string `json:"specialRequests"`
}

type UpdateBookingInput struct {
	Status          *string `json:"status" validate:"omitempty,oneof=pending confirmed checked_in checked_out cancelled"`
	Guests          *int    `json:"guests" validate:"omitempty,min=1"`
	SpecialRequests *string `json:"specialRequests"`
	CheckInDate     *string `json:"checkInDate"`
	CheckOutDate    *string `json:"checkOutDate"`
}

type BookingQuery struct {
	HotelID string
	Status  string
}

type CreatePaymentInput struct {
	BookingID     string  `json:"bookingId" validate:"required,uuid"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	PaymentMethod string  `json:"paymentMethod" validate:"required,max=64"`
}

type CreateReviewInput struct {
	HotelID   string  `json:"hotelId" validate:"required,uuid"`
	BookingID string  `json:"bookingId" validate:"required,uuid"`
	Rating    int     `json:"rating" validate:"min=1,max=5"`
	Comment   *string `json:"comment"`
}
