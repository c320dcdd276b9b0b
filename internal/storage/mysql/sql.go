package mysql

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

const userCols = `id, email, first_name, last_name, profile_image_url, role, phone, created_at, updated_at`

const getUserSQL = `SELECT ` + userCols + ` FROM users WHERE id = ?`

const insertUserSQL = `
INSERT INTO users
  (id, email, first_name, last_name, profile_image_url, role, phone, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// -----------------------------------------------------------------------------
// HOTELS
// -----------------------------------------------------------------------------

const hotelCols = `id, merchant_id, name, description, address, city, phone, email, image_url, status, rating, total_rooms, created_at, updated_at`

const getHotelSQL = `SELECT ` + hotelCols + ` FROM hotels WHERE id = ?`

const listHotelsByMerchantSQL = `SELECT ` + hotelCols + ` FROM hotels WHERE merchant_id = ? ORDER BY created_at DESC`

const insertHotelSQL = `
INSERT INTO hotels
  (id, merchant_id, name, description, address, city, phone, email, image_url, status, rating, total_rooms, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const setHotelStatusSQL = `UPDATE hotels SET status = ?, updated_at = ? WHERE id = ? AND status = ?`

// total_rooms tracks active rooms. Placeholders: hotel_id, updated_at, hotel_id.
const recountHotelRoomsSQL = `
UPDATE hotels
SET total_rooms = (SELECT COUNT(*) FROM rooms WHERE hotel_id = ? AND is_active = TRUE), updated_at = ?
WHERE id = ?`

const roomHotelSQL = `SELECT hotel_id FROM rooms WHERE id = ?`

// Rating is the mean over all reviews of the hotel; 0 with none.
const refreshHotelRatingSQL = `
UPDATE hotels
SET rating = (SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE hotel_id = ?),
    updated_at = ?
WHERE id = ?
`

// -----------------------------------------------------------------------------
// ROOM TYPES & ROOMS
// -----------------------------------------------------------------------------

const roomTypeCols = `id, hotel_id, name, description, base_price, max_occupancy, amenities, image_url, created_at, updated_at`

const getRoomTypeSQL = `SELECT ` + roomTypeCols + ` FROM room_types WHERE id = ?`

const listRoomTypesSQL = `SELECT ` + roomTypeCols + ` FROM room_types WHERE hotel_id = ? ORDER BY name`

const insertRoomTypeSQL = `
INSERT INTO room_types
  (id, hotel_id, name, description, base_price, max_occupancy, amenities, image_url, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const roomCols = `id, hotel_id, room_type_id, room_number, floor, status, is_active, created_at, updated_at`

const getRoomSQL = `SELECT ` + roomCols + ` FROM rooms WHERE id = ?`

const listRoomsSQL = `SELECT ` + roomCols + ` FROM rooms WHERE hotel_id = ? ORDER BY room_number`

const insertRoomSQL = `
INSERT INTO rooms
  (id, hotel_id, room_type_id, room_number, floor, status, is_active, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const lockRoomSQL = `SELECT id FROM rooms WHERE id = ? FOR UPDATE`

// overlapClause is the inclusive stay-overlap predicate against alias b.
// Placeholders: in, out, in, out, in, out.
const overlapClause = `(
        (b.check_in_date  >= ? AND b.check_in_date  <= ?)
     OR (b.check_out_date >= ? AND b.check_out_date <= ?)
     OR (b.check_in_date  <= ? AND b.check_out_date >= ?)
    )`

// Placeholders: hotel_id, then overlapClause.
const availableRoomsSQL = `
SELECT r.id, r.hotel_id, r.room_type_id, r.room_number, r.floor, r.status, r.is_active, r.created_at, r.updated_at
FROM rooms r
WHERE r.hotel_id = ?
  AND r.status = 'available'
  AND r.is_active = TRUE
  AND NOT EXISTS (
    SELECT 1 FROM bookings b
    WHERE b.room_id = r.id
      AND b.status = 'confirmed'
      AND ` + overlapClause + `
  )
ORDER BY r.room_number
`

// Placeholders: room_id, excluded booking id, then overlapClause.
const countConflictsSQL = `
SELECT COUNT(*) FROM bookings b
WHERE b.room_id = ?
  AND b.id <> ?
  AND b.status = 'confirmed'
  AND ` + overlapClause

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

const bookingCols = `id, user_id, hotel_id, room_id, check_in_date, check_out_date, guests, total_amount, status, special_requests, created_at, updated_at`

const getBookingSQL = `SELECT ` + bookingCols + ` FROM bookings WHERE id = ?`

const lockBookingSQL = getBookingSQL + ` FOR UPDATE`

const insertBookingSQL = `
INSERT INTO bookings
  (id, user_id, hotel_id, room_id, check_in_date, check_out_date, guests, total_amount, status, special_requests, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateBookingSQL = `
UPDATE bookings
SET status = ?, guests = ?, special_requests = ?, check_in_date = ?, check_out_date = ?, updated_at = ?
WHERE id = ?
`

const unpaidBookingsSQL = `
SELECT ` + bookingCols + `
FROM bookings b
WHERE b.status = 'pending'
  AND b.created_at <= ?
  AND NOT EXISTS (SELECT 1 FROM payments p WHERE p.booking_id = b.id)
ORDER BY b.created_at
`

// -----------------------------------------------------------------------------
// PAYMENTS & SETTLEMENT JOBS
// -----------------------------------------------------------------------------

const paymentCols = `id, booking_id, amount, payment_method, status, transaction_id, paid_at, created_at, updated_at`

const listPaymentsSQL = `SELECT ` + paymentCols + ` FROM payments WHERE booking_id = ? ORDER BY created_at DESC`

const insertPaymentSQL = `
INSERT INTO payments
  (id, booking_id, amount, payment_method, status, transaction_id, paid_at, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertPaymentJobSQL = `
INSERT INTO payment_jobs
  (id, payment_id, due_at, attempts, status, last_error, created_at, updated_at)
VALUES
  (?, ?, ?, 0, 'queued', NULL, ?, ?)
`

// SKIP LOCKED lets several workers drain the queue without blocking each other.
// Only job rows are locked; payments stay readable by the API.
const claimPaymentJobsSQL = `
SELECT j.id, j.payment_id, j.due_at, j.attempts, j.status, j.last_error, j.created_at,
       p.booking_id, p.amount, p.payment_method
FROM payment_jobs j
JOIN payments p ON p.id = j.payment_id
WHERE j.status = 'queued' AND j.due_at <= ?
ORDER BY j.due_at
LIMIT ?
FOR UPDATE OF j SKIP LOCKED
`

const leasePaymentJobSQL = `UPDATE payment_jobs SET due_at = ?, attempts = attempts + 1, updated_at = ? WHERE id = ?`

const completePaymentSQL = `
UPDATE payments
SET status = 'completed', paid_at = ?, transaction_id = ?, updated_at = ?
WHERE id = ? AND status = 'pending'
`

const failPaymentSQL = `UPDATE payments SET status = 'failed', updated_at = ? WHERE id = ? AND status = 'pending'`

const closePaymentJobSQL = `UPDATE payment_jobs SET status = 'done', last_error = ?, updated_at = ? WHERE id = ?`

const retryPaymentJobSQL = `UPDATE payment_jobs SET due_at = ?, last_error = ?, updated_at = ? WHERE id = ? AND status = 'queued'`

// -----------------------------------------------------------------------------
// REVIEWS
// -----------------------------------------------------------------------------

const reviewCols = `id, user_id, hotel_id, booking_id, rating, comment, created_at, updated_at`

const listReviewsSQL = `SELECT ` + reviewCols + ` FROM reviews WHERE hotel_id = ? ORDER BY created_at DESC, id DESC`

const insertReviewSQL = `
INSERT INTO reviews
  (id, user_id, hotel_id, booking_id, rating, comment, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

// -----------------------------------------------------------------------------
// STATS
// -----------------------------------------------------------------------------

// Placeholders: hotel x2, hotel + window x2, hotel + window x2.
const hotelStatsSQL = `
SELECT
  (SELECT COUNT(*) FROM rooms WHERE hotel_id = ? AND is_active = TRUE),
  (SELECT COUNT(*) FROM rooms WHERE hotel_id = ? AND status = 'occupied'),
  (SELECT COUNT(*) FROM bookings WHERE hotel_id = ? AND check_in_date >= ? AND check_in_date < ?),
  (SELECT COALESCE(SUM(total_amount), 0) FROM bookings
     WHERE hotel_id = ? AND status = 'confirmed' AND created_at >= ? AND created_at < ?)
`

const platformStatsSQL = `
SELECT
  (SELECT COUNT(*) FROM users WHERE role = 'merchant'),
  (SELECT COUNT(*) FROM users WHERE role = 'customer'),
  (SELECT COUNT(*) FROM bookings),
  (SELECT COALESCE(SUM(total_amount), 0) FROM bookings WHERE status = 'confirmed')
`
