package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleMerchant || r == RoleAdmin
}

type User struct {
	ID              string    `json:"id"`
	Email           *string   `json:"email"`
	FirstName       *string   `json:"firstName"`
	LastName        *string   `json:"lastName"`
	ProfileImageURL *string   `json:"profileImageUrl"`
	Role            Role      `json:"role"`
	Phone           *string   `json:"phone"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

func (i Identity) Is(r Role) bool { return i.Role == r }
