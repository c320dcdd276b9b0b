package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"

	"hotel_booking/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// mapWriteErr turns constraint violations into domain errors.
func mapWriteErr(err error, resource string) error {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1062:
			return domain.Conflict("%s already exists", resource)
		case 1452:
			return domain.NotFound("referenced record")
		}
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

// setter accumulates "col = ?" pairs for partial updates.
type setter struct {
	cols []string
	args []any
}

func (s *setter) add(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setter) empty() bool { return len(s.cols) == 0 }

func (s *setter) sql(table string) string {
	return "UPDATE " + table + " SET " + strings.Join(s.cols, ", ") + " WHERE id = ?"
}

type Repo struct{ db *sql.DB }

var _ domain.Store = (*Repo)(nil)

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ---- users ----

func scanUser(s scanner) (domain.User, error) {
	var u domain.User
	var email, first, last, img, phone sql.NullString
	var role string
	if err := s.Scan(&u.ID, &email, &first, &last, &img, &role, &phone, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	u.Email, u.FirstName, u.LastName, u.ProfileImageURL, u.Phone = strPtr(email), strPtr(first), strPtr(last), strPtr(img), strPtr(phone)
	u.Role = domain.Role(role)
	return u, nil
}

func (r *Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.NotFound("user")
	}
	return u, err
}

func (r *Repo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, insertUserSQL,
		u.ID, valStr(u.Email), valStr(u.FirstName), valStr(u.LastName), valStr(u.ProfileImageURL),
		string(u.Role), valStr(u.Phone), u.CreatedAt, u.UpdatedAt,
	)
	return mapWriteErr(err, "user")
}

// ---- hotels ----

func scanHotel(s scanner) (domain.Hotel, error) {
	var h domain.Hotel
	var desc, phone, email, img sql.NullString
	var status string
	if err := s.Scan(&h.ID, &h.MerchantID, &h.Name, &desc, &h.Address, &h.City, &phone, &email, &img,
		&status, &h.Rating, &h.TotalRooms, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return domain.Hotel{}, err
	}
	h.Description, h.Phone, h.Email, h.ImageURL = strPtr(desc), strPtr(phone), strPtr(email), strPtr(img)
	h.Status = domain.HotelStatus(status)
	return h, nil
}

func (r *Repo) queryHotels(ctx context.Context, q string, args ...any) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) ListHotels(ctx context.Context, f domain.HotelFilter) ([]domain.Hotel, error) {
	var where []string
	var args []any
	if f.City != "" {
		where = append(where, "city = ?")
		args = append(args, f.City)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	q := "SELECT " + hotelCols + " FROM hotels"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"
	return r.queryHotels(ctx, q, args...)
}

func (r *Repo) ListHotelsByMerchant(ctx context.Context, merchantID string) ([]domain.Hotel, error) {
	return r.queryHotels(ctx, listHotelsByMerchantSQL, merchantID)
}

func (r *Repo) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hotel{}, domain.NotFound("hotel")
	}
	return h, err
}

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) error {
	_, err := r.db.ExecContext(ctx, insertHotelSQL,
		h.ID, h.MerchantID, h.Name, valStr(h.Description), h.Address, h.City,
		valStr(h.Phone), valStr(h.Email), valStr(h.ImageURL),
		string(h.Status), h.Rating, h.TotalRooms, h.CreatedAt, h.UpdatedAt,
	)
	return mapWriteErr(err, "hotel")
}

func (r *Repo) UpdateHotel(ctx context.Context, id string, p domain.HotelPatch, at time.Time) (domain.Hotel, error) {
	var s setter
	if p.Name != nil {
		s.add("name", *p.Name)
	}
	if p.Description != nil {
		s.add("description", *p.Description)
	}
	if p.Address != nil {
		s.add("address", *p.Address)
	}
	if p.City != nil {
		s.add("city", *p.City)
	}
	if p.Phone != nil {
		s.add("phone", *p.Phone)
	}
	if p.Email != nil {
		s.add("email", *p.Email)
	}
	if p.ImageURL != nil {
		s.add("image_url", *p.ImageURL)
	}
	if !s.empty() {
		s.add("updated_at", at)
		if _, err := r.db.ExecContext(ctx, s.sql("hotels"), append(s.args, id)...); err != nil {
			return domain.Hotel{}, err
		}
	}
	return r.GetHotel(ctx, id)
}

func (r *Repo) SetHotelStatus(ctx context.Context, id string, from, to domain.HotelStatus, at time.Time) (domain.Hotel, error) {
	res, err := r.db.ExecContext(ctx, setHotelStatusSQL, string(to), at, id, string(from))
	if err != nil {
		return domain.Hotel{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Hotel{}, err
	}
	h, err := r.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	if n == 0 {
		return domain.Hotel{}, domain.Conflict("hotel status changed concurrently to %s", h.Status)
	}
	return h, nil
}
