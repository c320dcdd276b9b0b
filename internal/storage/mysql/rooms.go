package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"hotel_booking/internal/domain"
)

func amenitiesJSON(a []string) string {
	if a == nil {
		a = []string{}
	}
	b, _ := json.Marshal(a)
	return string(b)
}

func scanRoomType(s scanner) (domain.RoomType, error) {
	var rt domain.RoomType
	var desc, img sql.NullString
	var amen []byte
	if err := s.Scan(&rt.ID, &rt.HotelID, &rt.Name, &desc, &rt.BasePrice, &rt.MaxOccupancy, &amen, &img,
		&rt.CreatedAt, &rt.UpdatedAt); err != nil {
		return domain.RoomType{}, err
	}
	rt.Description, rt.ImageURL = strPtr(desc), strPtr(img)
	rt.Amenities = []string{}
	if len(amen) > 0 {
		_ = json.Unmarshal(amen, &rt.Amenities)
	}
	return rt, nil
}

func scanRoom(s scanner) (domain.Room, error) {
	var rm domain.Room
	var floor sql.NullInt64
	var status string
	if err := s.Scan(&rm.ID, &rm.HotelID, &rm.RoomTypeID, &rm.RoomNumber, &floor, &status, &rm.IsActive,
		&rm.CreatedAt, &rm.UpdatedAt); err != nil {
		return domain.Room{}, err
	}
	rm.Floor = intPtr(floor)
	rm.Status = domain.RoomStatus(status)
	return rm, nil
}

func (r *Repo) ListRoomTypes(ctx context.Context, hotelID string) ([]domain.RoomType, error) {
	rows, err := r.db.QueryContext(ctx, listRoomTypesSQL, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.RoomType{}
	for rows.Next() {
		rt, err := scanRoomType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *Repo) GetRoomType(ctx context.Context, id string) (domain.RoomType, error) {
	rt, err := scanRoomType(r.db.QueryRowContext(ctx, getRoomTypeSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RoomType{}, domain.NotFound("room type")
	}
	return rt, err
}

func (r *Repo) CreateRoomType(ctx context.Context, rt domain.RoomType) error {
	_, err := r.db.ExecContext(ctx, insertRoomTypeSQL,
		rt.ID, rt.HotelID, rt.Name, valStr(rt.Description), rt.BasePrice, rt.MaxOccupancy,
		amenitiesJSON(rt.Amenities), valStr(rt.ImageURL), rt.CreatedAt, rt.UpdatedAt,
	)
	return mapWriteErr(err, "room type")
}

func (r *Repo) UpdateRoomType(ctx context.Context, id string, p domain.RoomTypePatch, at time.Time) (domain.RoomType, error) {
	var s setter
	if p.Name != nil {
		s.add("name", *p.Name)
	}
	if p.Description != nil {
		s.add("description", *p.Description)
	}
	if p.BasePrice != nil {
		s.add("base_price", *p.BasePrice)
	}
	if p.MaxOccupancy != nil {
		s.add("max_occupancy", *p.MaxOccupancy)
	}
	if p.Amenities != nil {
		s.add("amenities", amenitiesJSON(*p.Amenities))
	}
	if p.ImageURL != nil {
		s.add("image_url", *p.ImageURL)
	}
	if !s.empty() {
		s.add("updated_at", at)
		if _, err := r.db.ExecContext(ctx, s.sql("room_types"), append(s.args, id)...); err != nil {
			return domain.RoomType{}, err
		}
	}
	return r.GetRoomType(ctx, id)
}

func (r *Repo) queryRooms(ctx context.Context, q string, args ...any) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *Repo) ListRooms(ctx context.Context, hotelID string) ([]domain.Room, error) {
	return r.queryRooms(ctx, listRoomsSQL, hotelID)
}

func (r *Repo) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, getRoomSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, domain.NotFound("room")
	}
	return rm, err
}

func (r *Repo) CreateRoom(ctx context.Context, rm domain.Room) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertRoomSQL,
			rm.ID, rm.HotelID, rm.RoomTypeID, rm.RoomNumber, valInt(rm.Floor),
			string(rm.Status), rm.IsActive, rm.CreatedAt, rm.UpdatedAt,
		); err != nil {
			return mapWriteErr(err, "room")
		}
		_, err := tx.ExecContext(ctx, recountHotelRoomsSQL, rm.HotelID, rm.CreatedAt, rm.HotelID)
		return err
	})
}

func (r *Repo) UpdateRoom(ctx context.Context, id string, p domain.RoomPatch, at time.Time) (domain.Room, error) {
	var s setter
	if p.RoomTypeID != nil {
		s.add("room_type_id", *p.RoomTypeID)
	}
	if p.RoomNumber != nil {
		s.add("room_number", *p.RoomNumber)
	}
	if p.Floor != nil {
		s.add("floor", *p.Floor)
	}
	if p.Status != nil {
		s.add("status", string(*p.Status))
	}
	if p.IsActive != nil {
		s.add("is_active", *p.IsActive)
	}
	if !s.empty() {
		s.add("updated_at", at)
		err := r.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, s.sql("rooms"), append(s.args, id)...); err != nil {
				return mapWriteErr(err, "room")
			}
			if p.IsActive == nil {
				return nil
			}
			var hotelID string
			err := tx.QueryRowContext(ctx, roomHotelSQL, id).Scan(&hotelID)
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFound("room")
			} else if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, recountHotelRoomsSQL, hotelID, at, hotelID)
			return err
		})
		if err != nil {
			return domain.Room{}, err
		}
	}
	return r.GetRoom(ctx, id)
}

func overlapArgs(stay domain.DateRange) []any {
	return []any{stay.Start, stay.End, stay.Start, stay.End, stay.Start, stay.End}
}

func (r *Repo) FindAvailableRooms(ctx context.Context, hotelID string, stay domain.DateRange) ([]domain.Room, error) {
	args := append([]any{hotelID}, overlapArgs(stay)...)
	return r.queryRooms(ctx, availableRoomsSQL, args...)
}

// lockRoomForStay takes the room row lock and counts confirmed bookings, other
// than exclude, that overlap stay.
func lockRoomForStay(ctx context.Context, tx *sql.Tx, roomID, exclude string, stay domain.DateRange) (int, error) {
	var id string
	if err := tx.QueryRowContext(ctx, lockRoomSQL, roomID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.NotFound("room")
		}
		return 0, err
	}
	var n int
	args := append([]any{roomID, exclude}, overlapArgs(stay)...)
	if err := tx.QueryRowContext(ctx, countConflictsSQL, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
