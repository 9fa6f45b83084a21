package user

import "errors"

var ErrBadCredentials = errors.New("user: invalid credentials")

// Role is a closed enumeration; there are exactly two variants.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleRegularUser   Role = "regular_user"
)

type User struct {
	Username string
	Role     Role

	secret string
}

func New(username, secret string, role Role) User {
	return User{Username: username, Role: role, secret: secret}
}

// Roster is the process-wide static user set, fixed at startup.
type Roster struct {
	users map[string]User
}

func NewRoster(users ...User) *Roster {
	r := &Roster{users: make(map[string]User, len(users))}
	for _, u := range users {
		r.users[u.Username] = u
	}
	return r
}

// DefaultRoster returns the built-in accounts.
func DefaultRoster() *Roster {
	return NewRoster(
		New("admin", "adminpass", RoleAdministrator),
		New("user", "userpass", RoleRegularUser),
	)
}

// Authenticate resolves a username/secret pair to its user. A wrong
// username and a wrong secret are indistinguishable to the caller.
func (r *Roster) Authenticate(username, secret string) (User, error) {
	u, ok := r.users[username]
	if !ok || u.secret != secret {
		return User{}, ErrBadCredentials
	}
	return u, nil
}
