package model

import "time"

type Role string

const (
	RoleRenter Role = "renter"
	RoleLender Role = "lender"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleRenter, RoleLender, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated principal behind a request. It is always passed
// explicitly; nothing reads it from ambient state.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	WalletBalance float64   `json:"wallet_balance"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *User) Actor() Actor { return Actor{ID: u.ID, Role: u.Role} }

// model/user.go

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"required,oneof=renter lender"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
