// Package startup holds invariants checked once before the server accepts
// traffic.
package startup

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/DELTAJoSch/Horus/internal/application/ports"
	"github.com/DELTAJoSch/Horus/internal/domain"
)

// Default account created on an empty store so the system is never
// unreachable. The password should be changed on first login.
const (
	DefaultAdminName     = "admin"
	DefaultAdminEmail    = "admin@example.com"
	defaultAdminPassword = "admin"
)

// UserExistenceEnsurer guarantees at least one account exists.
type UserExistenceEnsurer struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewUserExistenceEnsurer(users ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *UserExistenceEnsurer {
	return &UserExistenceEnsurer{users: users, hasher: hasher, log: log}
}

// Ensure creates the default Admin account if the store is empty. A
// non-empty store is a no-op.
func (e *UserExistenceEnsurer) Ensure(ctx context.Context) error {
	count, err := e.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	salt, err := e.hasher.GenerateSalt()
	if err != nil {
		return err
	}
	digest, err := e.hasher.Hash(defaultAdminPassword, salt)
	if err != nil {
		return err
	}
	id, err := e.users.Create(ctx,
		domain.NewUser(DefaultAdminName, DefaultAdminEmail, domain.RoleAdmin, digest, salt))
	if err != nil {
		return err
	}
	e.log.Warn().
		Str("name", DefaultAdminName).
		Str("id", id).
		Msg("store was empty, created default admin account")
	return nil
}
