package enums

// UserRole gates dashboard-only operations.
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleCustomer UserRole = "customer"
)

func (r UserRole) String() string {
	return string(r)
}
