package memory

import (
	"context"
	"sort"
	"time"

	"hotel_booking/internal/domain"
)

func (s *Store) ListBookings(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var hotels map[string]bool
	if f.HotelIDs != nil {
		hotels = make(map[string]bool, len(f.HotelIDs))
		for _, id := range f.HotelIDs {
			hotels[id] = true
		}
	}
	out := []domain.Booking{}
	for _, b := range s.bookings {
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		if f.HotelID != "" && b.HotelID != f.HotelID {
			continue
		}
		if hotels != nil && !hotels[b.HotelID] {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	newestFirst(out, func(b domain.Booking) time.Time { return b.CreatedAt })
	return out, nil
}

func (s *Store) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.Booking{}, domain.NotFound("booking")
	}
	return b, nil
}

func (s *Store) CreateBooking(ctx context.Context, b domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[b.RoomID]; !ok {
		return domain.NotFound("room")
	}
	if s.conflicts(b.RoomID, b.ID, b.Stay()) {
		return domain.Conflict("room is already booked for the requested dates")
	}
	s.bookings[b.ID] = b
	return nil
}

func (s *Store) UpdateBooking(ctx context.Context, id string, p domain.BookingPatch, at time.Time) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bookings[id]
	if !ok {
		return domain.Booking{}, domain.NotFound("booking")
	}
	next := cur.Apply(p)
	if err := next.Stay().Validate(); err != nil {
		return domain.Booking{}, domain.InvalidField("checkOutDate", "gtfield")
	}
	if p.NeedsOverlapCheck(cur.Status) && s.conflicts(next.RoomID, next.ID, next.Stay()) {
		return domain.Booking{}, domain.Conflict("room is already booked for the requested dates")
	}
	next.UpdatedAt = at
	s.bookings[id] = next
	return next, nil
}

func (s *Store) ListUnpaidBookings(ctx context.Context, olderThan time.Time) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paid := map[string]bool{}
	for _, p := range s.payments {
		paid[p.BookingID] = true
	}
	out := []domain.Booking{}
	for _, b := range s.bookings {
		if b.Status == domain.BookingPending && !b.CreatedAt.After(olderThan) && !paid[b.ID] {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ---- payments ----

func (s *Store) CreatePayment(ctx context.Context, p domain.Payment, job domain.PaymentJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[p.BookingID]; !ok {
		return domain.NotFound("referenced record")
	}
	job.PaymentID = p.ID
	job.Status = domain.JobQueued
	s.payments[p.ID] = p
	s.jobs[job.ID] = job
	return nil
}

func (s *Store) ListPayments(ctx context.Context, bookingID string) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Payment{}
	for _, p := range s.payments {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	newestFirst(out, func(p domain.Payment) time.Time { return p.CreatedAt })
	return out, nil
}

func (s *Store) ClaimPaymentJobs(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]domain.PaymentJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []domain.PaymentJob
	for _, j := range s.jobs {
		if j.Status == domain.JobQueued && !j.DueAt.After(now) {
			due = append(due, j)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].DueAt.Before(due[j].DueAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	for i := range due {
		due[i].Attempts++
		stored := due[i]
		stored.DueAt = now.Add(lease)
		s.jobs[stored.ID] = stored
		if p, ok := s.payments[due[i].PaymentID]; ok {
			due[i].BookingID, due[i].Amount, due[i].PaymentMethod = p.BookingID, p.Amount, p.PaymentMethod
		}
	}
	return due, nil
}

func (s *Store) CompletePayment(ctx context.Context, job domain.PaymentJob, transactionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.payments[job.PaymentID]; ok && p.Status == domain.PaymentPending {
		tx := transactionID
		paidAt := at
		p.Status = domain.PaymentCompleted
		p.TransactionID = &tx
		p.PaidAt = &paidAt
		p.UpdatedAt = at
		s.payments[p.ID] = p
	}
	s.closeJob(job.ID, nil)
	return nil
}

func (s *Store) RetryPaymentJob(ctx context.Context, jobID string, dueAt time.Time, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok || j.Status != domain.JobQueued {
		return nil
	}
	j.DueAt = dueAt
	j.LastError = &reason
	s.jobs[jobID] = j
	return nil
}

func (s *Store) FailPayment(ctx context.Context, job domain.PaymentJob, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.payments[job.PaymentID]; ok && p.Status == domain.PaymentPending {
		p.Status = domain.PaymentFailed
		p.UpdatedAt = at
		s.payments[p.ID] = p
	}
	s.closeJob(job.ID, &reason)
	return nil
}

func (s *Store) closeJob(id string, reason *string) {
	if j, ok := s.jobs[id]; ok {
		j.Status = domain.JobDone
		j.LastError = reason
		s.jobs[id] = j
	}
}

// PendingJobs returns a copy of the queued settlement jobs.
func (s *Store) PendingJobs() []domain.PaymentJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.PaymentJob
	for _, j := range s.jobs {
		if j.Status == domain.JobQueued {
			out = append(out, j)
		}
	}
	return out
}

// ---- reviews & stats ----

func (s *Store) ListReviews(ctx context.Context, hotelID string) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Review{}
	for _, r := range s.reviews {
		if r.HotelID == hotelID {
			out = append(out, r)
		}
	}
	newestFirst(out, func(r domain.Review) time.Time { return r.CreatedAt })
	return out, nil
}

func (s *Store) CreateReview(ctx context.Context, r domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[r.HotelID]
	if !ok {
		return domain.NotFound("referenced record")
	}
	sum, n := r.Rating, 1
	for _, other := range s.reviews {
		if other.BookingID == r.BookingID {
			return domain.Conflict("review for this booking already exists")
		}
		if other.HotelID == r.HotelID {
			sum += other.Rating
			n++
		}
	}
	s.reviews[r.ID] = r
	h.Rating = float64(sum) / float64(n)
	h.UpdatedAt = r.CreatedAt
	s.hotels[h.ID] = h
	return nil
}

func inWindow(t time.Time, w domain.DateRange) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (s *Store) HotelStats(ctx context.Context, hotelID string, day domain.DateRange) (domain.HotelStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out domain.HotelStats
	for _, r := range s.rooms {
		if r.HotelID != hotelID {
			continue
		}
		if r.IsActive {
			out.TotalRooms++
		}
		if r.Status == domain.RoomOccupied {
			out.OccupiedRooms++
		}
	}
	for _, b := range s.bookings {
		if b.HotelID != hotelID {
			continue
		}
		if inWindow(b.CheckInDate, day) {
			out.TodayCheckIns++
		}
		if b.Status == domain.BookingConfirmed && inWindow(b.CreatedAt, day) {
			out.TodayRevenue += b.TotalAmount
		}
	}
	return out, nil
}

func (s *Store) PlatformStats(ctx context.Context) (domain.PlatformStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out domain.PlatformStats
	for _, u := range s.users {
		switch u.Role {
		case domain.RoleMerchant:
			out.TotalMerchants++
		case domain.RoleCustomer:
			out.TotalUsers++
		}
	}
	out.TotalBookings = len(s.bookings)
	for _, b := range s.bookings {
		if b.Status == domain.BookingConfirmed {
			out.TotalRevenue += b.TotalAmount
		}
	}
	return out, nil
}
