package domain

import (
	"errors"
	"time"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCancelled  BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCheckedIn, BookingCheckedOut, BookingCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	HotelID         string        `json:"hotelId"`
	RoomID          string        `json:"roomId"`
	CheckInDate     time.Time     `json:"checkInDate"`
	CheckOutDate    time.Time     `json:"checkOutDate"`
	Guests          int           `json:"guests"`
	TotalAmount     float64       `json:"totalAmount"`
	Status          BookingStatus `json:"status"`
	SpecialRequests *string       `json:"specialRequests"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

func (b Booking) Stay() DateRange { return DateRange{Start: b.CheckInDate, End: b.CheckOutDate} }

// BookingFilter narrows a listing. HotelIDs, when non-nil, restricts to those
// hotels; an empty non-nil slice matches nothing.
type BookingFilter struct {
	UserID   string
	HotelID  string
	HotelIDs []string
	Status   BookingStatus
}

type BookingPatch struct {
	Status          *BookingStatus
	Guests          *int
	SpecialRequests *string
	CheckInDate     *time.Time
	CheckOutDate    *time.Time
}

func (p BookingPatch) TouchesStay() bool { return p.CheckInDate != nil || p.CheckOutDate != nil }

// Apply returns b with the patch merged in. The result is not validated.
func (b Booking) Apply(p BookingPatch) Booking {
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.Guests != nil {
		b.Guests = *p.Guests
	}
	if p.SpecialRequests != nil {
		b.SpecialRequests = p.SpecialRequests
	}
	if p.CheckInDate != nil {
		b.CheckInDate = *p.CheckInDate
	}
	if p.CheckOutDate != nil {
		b.CheckOutDate = *p.CheckOutDate
	}
	return b
}

// NeedsOverlapCheck reports whether applying p to a booking currently in
// status cur yields a confirmed booking whose stay must be re-checked.
func (p BookingPatch) NeedsOverlapCheck(cur BookingStatus) bool {
	next := cur
	if p.Status != nil {
		next = *p.Status
	}
	if next != BookingConfirmed {
		return false
	}
	return cur != BookingConfirmed || p.TouchesStay()
}

// ErrInvalidStay is returned when check-in is not strictly before check-out.
var ErrInvalidStay = errors.New("checkInDate must be before checkOutDate")

// DateRange is a closed interval [Start, End].
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Validate() error {
	if !r.Start.Before(r.End) {
		return ErrInvalidStay
	}
	return nil
}

func (r DateRange) contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Overlaps reports whether an existing stay conflicts with a requested one.
// Bounds are inclusive: a stay ending on the requested check-in day conflicts.
// The storage query for availability uses the same three clauses.
func Overlaps(existing, requested DateRange) bool {
	return requested.contains(existing.Start) ||
		requested.contains(existing.End) ||
		(!existing.Start.After(requested.Start) && !existing.End.Before(requested.End))
}

const dateOnly = "2006-01-02"

// ParseDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date, the
// latter read as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(dateOnly, s, loc)
}

// DayWindow returns [midnight, next midnight) around t in t's location.
func DayWindow(t time.Time) DateRange {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return DateRange{Start: start, End: start.AddDate(0, 0, 1)}
}
