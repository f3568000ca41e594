package permissions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel/permissions"
	"hotel/shared/constant"
)

func TestGet_EmbeddedEndpoints(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	tests := []struct {
		name      string
		path      string
		method    string
		wantFound bool
		wantSkip  bool
		wantPerms []string
	}{
		{name: "login is public", path: "/v1/auth/login", method: "POST", wantFound: true, wantSkip: true},
		{name: "room listing is public", path: "/v1/rooms/", method: "GET", wantFound: true, wantSkip: true},
		{name: "room creation needs manage_rooms", path: "/v1/rooms/", method: "POST", wantFound: true, wantPerms: []string{permissions.CapabilityManageRooms}},
		{name: "own bookings need any login", path: "/v1/bookings/me", method: "GET", wantFound: true, wantPerms: []string{}},
		{name: "admin patch needs manage_bookings", path: "/v1/admin/bookings/{id}", method: "PATCH", wantFound: true, wantPerms: []string{permissions.CapabilityManageBookings}},
		{name: "admin users need manage_users", path: "/v1/admin/users/", method: "GET", wantFound: true, wantPerms: []string{permissions.CapabilityManageUsers}},
		{name: "method mismatch", path: "/v1/auth/login", method: "GET"},
		{name: "unknown route", path: "/v1/unknown", method: "GET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint, found := data.FindPermissions(tt.path, tt.method)

			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantSkip, endpoint.Skip)

			if tt.wantPerms != nil {
				assert.ElementsMatch(t, tt.wantPerms, endpoint.Permissions)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	data, err := permissions.Load([]byte(`{"endpoints":[{"path":"/a","method":"GET","permissions":["x"]}]}`))
	require.NoError(t, err)

	endpoint, found := data.FindPermissions("/a", "GET")
	assert.True(t, found)
	assert.Equal(t, []string{"x"}, endpoint.Permissions)

	_, err = permissions.Load([]byte(`{"endpoints":`))
	assert.Error(t, err)
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		role string
		want []string
	}{
		{
			role: constant.RoleAdmin,
			want: []string{
				permissions.CapabilityManageRooms,
				permissions.CapabilityManageBookings,
				permissions.CapabilityViewAllBookings,
				permissions.CapabilityManageUsers,
			},
		},
		{
			role: constant.RoleReceptionist,
			want: []string{
				permissions.CapabilityManageRooms,
				permissions.CapabilityManageBookings,
				permissions.CapabilityViewAllBookings,
			},
		},
		{role: constant.RoleCustomer, want: []string{}},
		{role: "OWNER", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, permissions.Capabilities(tt.role))
		})
	}
}

func TestCan(t *testing.T) {
	assert.True(t, permissions.Can(constant.RoleReceptionist, permissions.CapabilityManageBookings))
	assert.False(t, permissions.Can(constant.RoleReceptionist, permissions.CapabilityManageUsers))
	assert.False(t, permissions.Can(constant.RoleCustomer, permissions.CapabilityViewAllBookings))
	assert.False(t, permissions.Can("", permissions.CapabilityManageRooms))
}

func TestCanAll(t *testing.T) {
	assert.True(t, permissions.CanAll(constant.RoleCustomer, nil))
	assert.True(t, permissions.CanAll(constant.RoleAdmin, []string{permissions.CapabilityManageUsers, permissions.CapabilityManageRooms}))
	assert.False(t, permissions.CanAll(constant.RoleReceptionist, []string{permissions.CapabilityManageRooms, permissions.CapabilityManageUsers}))
}

func TestCapabilities_ReturnsCopy(t *testing.T) {
	caps := permissions.Capabilities(constant.RoleAdmin)
	caps[0] = "tampered"

	assert.True(t, permissions.Can(constant.RoleAdmin, permissions.CapabilityManageRooms))
	assert.True(t, permissions.IsKnownRole(constant.RoleCustomer))
	assert.False(t, permissions.IsKnownRole("GUEST"))
}

func TestFindPermissions_TrailingSlash(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	endpoint, found := data.FindPermissions("/v1/rooms", "POST")

	assert.True(t, found)
	assert.Equal(t, []string{permissions.CapabilityManageRooms}, endpoint.Permissions)
}
