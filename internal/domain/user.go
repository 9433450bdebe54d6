package domain

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the access level of an account.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleUser      Role = "User"
	RoleDeveloper Role = "Developer"
)

// ParseRole returns the Role matching s, or an error for anything outside
// the fixed set. The empty string parses to the zero Role (unassigned).
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser, RoleDeveloper:
		return Role(s), nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether the role is one of the fixed set.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser || r == RoleDeveloper
}

func (r Role) String() string { return string(r) }

// User is a persisted account. PasswordHash and Salt are always set
// together and never leave the process; ID is assigned by the store on
// insert and immutable afterwards.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"Name"`
	Email        string             `bson:"Email"`
	PasswordHash string             `bson:"Password,omitempty"`
	Salt         string             `bson:"Salt,omitempty"`
	Role         Role               `bson:"Role,omitempty"`
}

// NewUser builds an account entity with server-derived credentials. The
// ID stays zero until the repository inserts the entity.
func NewUser(name, email string, role Role, passwordHash, salt string) User {
	return User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		Role:         role,
	}
}

// UserView is the external projection of a User. It is the only user
// shape that crosses the system boundary in responses.
type UserView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role,omitempty"`
}

// NewUserView projects an entity onto its external view, dropping the
// credential fields.
func NewUserView(u User) UserView {
	return UserView{Name: u.Name, Email: u.Email, Role: u.Role}
}

// UserData is the inbound shape for create and update. Password is the
// plaintext supplied by the caller; it exists only for the duration of
// the call.
type UserData struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// LoginRequest carries the credentials of a login attempt.
type LoginRequest struct {
	Name     string
	Password string
}

// Criteria is a partially-specified filter over user fields. Zero fields
// impose no constraint; an all-zero Criteria matches everything. Search
// paths treat Name and Email as case-insensitive substrings, single-entity
// lookups match them exactly.
type Criteria struct {
	Name  string
	Email string
	Role  Role
}

// ByName returns criteria matching a single account name.
func ByName(name string) Criteria { return Criteria{Name: name} }

// Empty reports whether no field constrains the match.
func (c Criteria) Empty() bool {
	return c.Name == "" && c.Email == "" && c.Role == ""
}
