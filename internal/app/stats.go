package app

import (
	"context"
	"time"

	"hotel_booking/internal/domain"
)

type StatsService struct {
	stats  domain.StatsRepository
	hotels domain.HotelRepository
	now    func() time.Time
	loc    *time.Location
}

func NewStatsService(d Deps) *StatsService {
	return &StatsService{stats: d.Stats, hotels: d.Hotels, now: d.clock(), loc: d.loc()}
}

// HotelStats reports the dashboard figures for "today", the local calendar
// day containing now, half-open at the next midnight.
func (s *StatsService) HotelStats(ctx context.Context, who domain.Identity, hotelID string) (domain.HotelStats, error) {
	if _, err := hotelAccess(ctx, s.hotels, who, hotelID); err != nil {
		return domain.HotelStats{}, err
	}
	return s.stats.HotelStats(ctx, hotelID, domain.DayWindow(s.now().In(s.loc)))
}

func (s *StatsService) PlatformStats(ctx context.Context) (domain.PlatformStats, error) {
	return s.stats.PlatformStats(ctx)
}
