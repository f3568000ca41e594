package permissions

import (
	"slices"

	"hotel/shared/constant"
)

const (
	CapabilityManageRooms     = "manage_rooms"
	CapabilityManageBookings  = "manage_bookings"
	CapabilityViewAllBookings = "view_all_bookings"
	CapabilityManageUsers     = "manage_users"
)

var roleCapabilities = map[string][]string{
	constant.RoleAdmin: {
		CapabilityManageRooms,
		CapabilityManageBookings,
		CapabilityViewAllBookings,
		CapabilityManageUsers,
	},
	constant.RoleReceptionist: {
		CapabilityManageRooms,
		CapabilityManageBookings,
		CapabilityViewAllBookings,
	},
	constant.RoleCustomer: {},
}

// Capabilities returns a copy of the capability set granted to role. Unknown roles get none.
func Capabilities(role string) []string {
	return slices.Clone(roleCapabilities[role])
}

func Can(role, capability string) bool {
	return slices.Contains(roleCapabilities[role], capability)
}

// CanAll reports whether role holds every capability in required.
func CanAll(role string, required []string) bool {
	for _, capability := range required {
		if !Can(role, capability) {
			return false
		}
	}

	return true
}

func IsKnownRole(role string) bool {
	_, ok := roleCapabilities[role]

	return ok
}
