package app

import (
	"context"
	"errors"
	"time"

	"hotel_booking/internal/domain"
)

// Profile is what the identity provider asserts about a caller.
type Profile struct {
	Subject         string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
	// Role is honoured only when the user is first provisioned.
	Role domain.Role
}

type IdentityService struct {
	users domain.UserRepository
	now   func() time.Time
}

func NewIdentityService(users domain.UserRepository, now func() time.Time) *IdentityService {
	if now == nil {
		now = time.Now
	}
	return &IdentityService{users: users, now: now}
}

// Resolve returns the stored user for p, provisioning it on first sight.
// The stored role always wins over the token's.
func (s *IdentityService) Resolve(ctx context.Context, p Profile) (domain.User, error) {
	if p.Subject == "" {
		return domain.User{}, domain.Forbidden("token has no subject")
	}
	u, err := s.users.GetUser(ctx, p.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	role := p.Role
	if !role.Valid() {
		role = domain.RoleCustomer
	}
	now := s.now()
	u = domain.User{
		ID:              p.Subject,
		Email:           optional(p.Email),
		FirstName:       optional(p.FirstName),
		LastName:        optional(p.LastName),
		ProfileImageURL: optional(p.ProfileImageURL),
		Role:            role,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		// a concurrent first request may have provisioned it
		if errors.Is(err, domain.ErrConflict) {
			return s.users.GetUser(ctx, p.Subject)
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *IdentityService) CurrentUser(ctx context.Context, who domain.Identity) (domain.User, error) {
	return s.users.GetUser(ctx, who.UserID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
