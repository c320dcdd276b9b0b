package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

func TestResolve_ProvisionsOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ids := app.NewIdentityService(store, func() time.Time { return testNow })

	u, err := ids.Resolve(ctx, app.Profile{Subject: "auth0|42", Email: "a@b.c", Role: domain.RoleMerchant})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if u.ID != "auth0|42" || u.Role != domain.RoleMerchant || u.Email == nil || *u.Email != "a@b.c" || u.FirstName != nil {
		t.Fatalf("unexpected user: %+v", u)
	}

	// a later token cannot escalate the stored role
	u, err = ids.Resolve(ctx, app.Profile{Subject: "auth0|42", Role: domain.RoleAdmin})
	if err != nil || u.Role != domain.RoleMerchant {
		t.Fatalf("stored role should win, got %+v %v", u, err)
	}

	got, err := ids.CurrentUser(ctx, domain.Identity{UserID: "auth0|42"})
	if err != nil || !got.CreatedAt.Equal(testNow) {
		t.Fatalf("CurrentUser = %+v %v", got, err)
	}
}

func TestResolve_Defaults(t *testing.T) {
	ctx := context.Background()
	ids := app.NewIdentityService(memory.New(), nil)

	u, err := ids.Resolve(ctx, app.Profile{Subject: "u1", Role: "superuser"})
	if err != nil || u.Role != domain.RoleCustomer {
		t.Fatalf("unknown role should default to customer, got %+v %v", u, err)
	}
	if _, err := ids.Resolve(ctx, app.Profile{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("empty subject should be forbidden, got %v", err)
	}
	if _, err := ids.CurrentUser(ctx, domain.Identity{UserID: "nobody"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// racingUsers simulates another request provisioning the same user between
// our lookup and insert.
type racingUsers struct {
	*memory.Store
	raced bool
}

func (r *racingUsers) GetUser(ctx context.Context, id string) (domain.User, error) {
	if !r.raced {
		return domain.User{}, domain.NotFound("user")
	}
	return r.Store.GetUser(ctx, id)
}

func (r *racingUsers) CreateUser(ctx context.Context, u domain.User) error {
	r.raced = true
	winner := u
	winner.Role = domain.RoleAdmin
	if err := r.Store.CreateUser(ctx, winner); err != nil {
		return err
	}
	return r.Store.CreateUser(ctx, u)
}

func TestResolve_ConcurrentProvisioning(t *testing.T) {
	repo := &racingUsers{Store: memory.New()}
	ids := app.NewIdentityService(repo, nil)
	u, err := ids.Resolve(context.Background(), app.Profile{Subject: "u1"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if u.Role != domain.RoleAdmin {
		t.Fatalf("expected the concurrently stored user, got %+v", u)
	}
}
