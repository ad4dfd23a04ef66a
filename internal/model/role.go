package model

import "fmt"

// Role is the closed set of user roles. Permissions are looked up in the
// capability table instead of comparing role strings at call sites.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Capability names one thing a role may do.
type Capability string

const (
	CapSell               Capability = "sell"
	CapOperateCashier     Capability = "operate_cashier"
	CapAuthorizeOverrides Capability = "authorize_overrides"
	CapManagePromotions   Capability = "manage_promotions"
	CapManageCatalog      Capability = "manage_catalog"
	CapManageCashiers     Capability = "manage_cashiers"
	CapViewReports        Capability = "view_reports"
	CapManageUsers        Capability = "manage_users"
)

var capabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapSell:               true,
		CapOperateCashier:     true,
		CapAuthorizeOverrides: true,
		CapManagePromotions:   true,
		CapManageCatalog:      true,
		CapManageCashiers:     true,
		CapViewReports:        true,
		CapManageUsers:        true,
	},
	RoleManager: {
		CapSell:               true,
		CapOperateCashier:     true,
		CapAuthorizeOverrides: true,
		CapManagePromotions:   true,
		CapManageCatalog:      true,
		CapManageCashiers:     true,
		CapViewReports:        true,
	},
	RoleEmployee: {
		CapSell:           true,
		CapOperateCashier: true,
	},
}

// Can reports whether the role holds the capability. Unknown roles hold none.
func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

// ParseRole converts a stored or submitted role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
