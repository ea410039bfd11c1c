package user

import "time"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStaff   Role = "STAFF"
	RoleShipper Role = "SHIPPER"
)

// User is the account record orders reference through managerId/shipperId.
// Account management lives outside this service; orders only resolve
// name and contact fields when populating.
type User struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
