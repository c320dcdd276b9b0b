package mysql

import (
	"context"
	"database/sql"

	"hotel_booking/internal/domain"
)

func (r *Repo) ListReviews(ctx context.Context, hotelID string) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		var comment sql.NullString
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.HotelID, &rv.BookingID, &rv.Rating, &comment,
			&rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		rv.Comment = strPtr(comment)
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CreateReview(ctx context.Context, rv domain.Review) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertReviewSQL,
			rv.ID, rv.UserID, rv.HotelID, rv.BookingID, rv.Rating, valStr(rv.Comment), rv.CreatedAt, rv.UpdatedAt,
		); err != nil {
			return mapWriteErr(err, "review for this booking")
		}
		_, err := tx.ExecContext(ctx, refreshHotelRatingSQL, rv.HotelID, rv.CreatedAt, rv.HotelID)
		return err
	})
}

func (r *Repo) HotelStats(ctx context.Context, hotelID string, day domain.DateRange) (domain.HotelStats, error) {
	var s domain.HotelStats
	err := r.db.QueryRowContext(ctx, hotelStatsSQL,
		hotelID,
		hotelID,
		hotelID, day.Start, day.End,
		hotelID, day.Start, day.End,
	).Scan(&s.TotalRooms, &s.OccupiedRooms, &s.TodayCheckIns, &s.TodayRevenue)
	return s, err
}

func (r *Repo) PlatformStats(ctx context.Context) (domain.PlatformStats, error) {
	var s domain.PlatformStats
	err := r.db.QueryRowContext(ctx, platformStatsSQL).
		Scan(&s.TotalMerchants, &s.TotalUsers, &s.TotalBookings, &s.TotalRevenue)
	return s, err
}
