package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRosterAuthenticate(t *testing.T) {
	r := DefaultRoster()

	admin, err := r.Authenticate("admin", "adminpass")
	require.NoError(t, err)
	assert.Equal(t, RoleAdministrator, admin.Role)

	regular, err := r.Authenticate("user", "userpass")
	require.NoError(t, err)
	assert.Equal(t, RoleRegularUser, regular.Role)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	r := DefaultRoster()

	_, err := r.Authenticate("admin", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = r.Authenticate("nobody", "adminpass")
	assert.ErrorIs(t, err, ErrBadCredentials)
}
