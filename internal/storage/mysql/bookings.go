package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"hotel_booking/internal/domain"
)

func scanBooking(s scanner) (domain.Booking, error) {
	var b domain.Booking
	var status string
	var req sql.NullString
	if err := s.Scan(&b.ID, &b.UserID, &b.HotelID, &b.RoomID, &b.CheckInDate, &b.CheckOutDate, &b.Guests,
		&b.TotalAmount, &status, &req, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	b.SpecialRequests = strPtr(req)
	return b, nil
}

func (r *Repo) queryBookings(ctx context.Context, q string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) ListBookings(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	if f.HotelIDs != nil && len(f.HotelIDs) == 0 {
		return []domain.Booking{}, nil
	}
	var where []string
	var args []any
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.HotelID != "" {
		where = append(where, "hotel_id = ?")
		args = append(args, f.HotelID)
	}
	if len(f.HotelIDs) > 0 {
		where = append(where, "hotel_id IN (?"+strings.Repeat(",?", len(f.HotelIDs)-1)+")")
		for _, id := range f.HotelIDs {
			args = append(args, id)
		}
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	q := "SELECT " + bookingCols + " FROM bookings"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"
	return r.queryBookings(ctx, q, args...)
}

func (r *Repo) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, getBookingSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, domain.NotFound("booking")
	}
	return b, err
}

func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		n, err := lockRoomForStay(ctx, tx, b.RoomID, b.ID, b.Stay())
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.Conflict("room is already booked for the requested dates")
		}
		_, err = tx.ExecContext(ctx, insertBookingSQL,
			b.ID, b.UserID, b.HotelID, b.RoomID, b.CheckInDate, b.CheckOutDate, b.Guests,
			b.TotalAmount, string(b.Status), valStr(b.SpecialRequests), b.CreatedAt, b.UpdatedAt,
		)
		return mapWriteErr(err, "booking")
	})
}

func (r *Repo) UpdateBooking(ctx context.Context, id string, p domain.BookingPatch, at time.Time) (domain.Booking, error) {
	var out domain.Booking
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := scanBooking(tx.QueryRowContext(ctx, lockBookingSQL, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFound("booking")
			}
			return err
		}
		next := cur.Apply(p)
		if err := next.Stay().Validate(); err != nil {
			return domain.InvalidField("checkOutDate", "gtfield")
		}
		if p.NeedsOverlapCheck(cur.Status) {
			n, err := lockRoomForStay(ctx, tx, next.RoomID, next.ID, next.Stay())
			if err != nil {
				return err
			}
			if n > 0 {
				return domain.Conflict("room is already booked for the requested dates")
			}
		}
		next.UpdatedAt = at
		if _, err := tx.ExecContext(ctx, updateBookingSQL,
			string(next.Status), next.Guests, valStr(next.SpecialRequests), next.CheckInDate, next.CheckOutDate,
			next.UpdatedAt, id,
		); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

func (r *Repo) ListUnpaidBookings(ctx context.Context, olderThan time.Time) ([]domain.Booking, error) {
	return r.queryBookings(ctx, unpaidBookingsSQL, olderThan)
}
