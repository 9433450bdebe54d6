// Package user implements the account use-cases: login verification,
// admin-gated create/update/delete and the read paths consumed by the
// HTTP layer.
package user

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/rs/zerolog"

	"github.com/DELTAJoSch/Horus/internal/application/ports"
	"github.com/DELTAJoSch/Horus/internal/domain"
	domerrors "github.com/DELTAJoSch/Horus/internal/domain/errors"
)

// Service orchestrates validation, authorization, credential hashing and
// repository access. It holds no mutable state and is safe for concurrent
// use.
type Service struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

// NewService wires the account use-cases.
func NewService(users ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *Service {
	return &Service{users: users, hasher: hasher, log: log}
}

// Login verifies the credentials of a login attempt. A wrong password is a
// normal false result, not an error; an unknown name is NotFound.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (bool, error) {
	if req.Name == "" || req.Password == "" {
		return false, domerrors.InvalidArgument("name or password missing")
	}
	u, err := s.users.GetOne(ctx, domain.ByName(req.Name))
	if err != nil {
		return false, err
	}
	if u.PasswordHash == "" || u.Salt == "" {
		return false, nil
	}
	digest, err := s.hasher.Hash(req.Password, u.Salt)
	if err != nil {
		return false, domerrors.Internal("hashing login candidate", err)
	}
	return subtle.ConstantTimeCompare([]byte(digest), []byte(u.PasswordHash)) == 1, nil
}

// Create persists a new account on behalf of an Admin issuer and returns
// the created account's name.
func (s *Service) Create(ctx context.Context, data domain.UserData, issuer string) (string, error) {
	if data.Password == "" || data.Email == "" || data.Name == "" {
		return "", domerrors.InvalidArgument("name, email and password are required")
	}
	if err := s.authorize(ctx, issuer); err != nil {
		return "", err
	}
	entity, err := s.withFreshCredentials(data)
	if err != nil {
		return "", err
	}
	id, err := s.users.Create(ctx, entity)
	if err != nil {
		return "", err
	}
	s.log.Info().Str("name", data.Name).Str("id", id).Str("issuer", issuer).Msg("account created")
	return data.Name, nil
}

// Update replaces the account identified by targetName wholesale. The
// password is mandatory; salt and hash are regenerated on every update.
func (s *Service) Update(ctx context.Context, data domain.UserData, targetName, issuer string) error {
	if err := s.authorize(ctx, issuer); err != nil {
		return err
	}
	if data.Password == "" {
		return domerrors.InvalidArgument("password is required on update")
	}
	target, err := s.users.GetOne(ctx, domain.ByName(targetName))
	if err != nil {
		return err
	}
	entity, err := s.withFreshCredentials(data)
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, target.ID.Hex(), entity); err != nil {
		return err
	}
	s.log.Info().Str("name", targetName).Str("issuer", issuer).Msg("account updated")
	return nil
}

// Delete removes the account identified by targetName. Deleting an absent
// account is a silent no-op; an absent issuer is still NotFound.
func (s *Service) Delete(ctx context.Context, targetName, issuer string) error {
	if err := s.authorize(ctx, issuer); err != nil {
		return err
	}
	target, err := s.users.GetOne(ctx, domain.ByName(targetName))
	if err != nil {
		if errors.Is(err, domerrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.users.Delete(ctx, target.ID.Hex()); err != nil {
		// Deleted concurrently between lookup and delete; still a no-op.
		if errors.Is(err, domerrors.ErrNotFound) {
			return nil
		}
		return err
	}
	s.log.Info().Str("name", targetName).Str("issuer", issuer).Msg("account deleted")
	return nil
}

// Get returns the external view of a single account.
func (s *Service) Get(ctx context.Context, name string) (domain.UserView, error) {
	u, err := s.users.GetOne(ctx, domain.ByName(name))
	if err != nil {
		return domain.UserView{}, err
	}
	return domain.NewUserView(u), nil
}

// List returns a page of account views matching the criteria.
func (s *Service) List(ctx context.Context, page, size int, criteria domain.Criteria) ([]domain.UserView, error) {
	users, err := s.users.Search(ctx, size, page, criteria)
	if err != nil {
		return nil, err
	}
	views := make([]domain.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, domain.NewUserView(u))
	}
	return views, nil
}

// Count returns the number of accounts matching the criteria.
func (s *Service) Count(ctx context.Context, criteria domain.Criteria) (int64, error) {
	return s.users.CountMatching(ctx, criteria)
}

// authorize resolves the issuer and requires the Admin role. An unknown
// issuer is NotFound, a known non-admin is PermissionDenied.
func (s *Service) authorize(ctx context.Context, issuer string) error {
	issuing, err := s.users.GetOne(ctx, domain.ByName(issuer))
	if err != nil {
		return err
	}
	if issuing.Role != domain.RoleAdmin {
		return domerrors.PermissionDenied("issuer is not an admin")
	}
	return nil
}

// withFreshCredentials builds the entity to persist, deriving a new salt
// and digest from the supplied plaintext.
func (s *Service) withFreshCredentials(data domain.UserData) (domain.User, error) {
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return domain.User{}, domerrors.Internal("generating salt", err)
	}
	digest, err := s.hasher.Hash(data.Password, salt)
	if err != nil {
		return domain.User{}, domerrors.Internal("hashing password", err)
	}
	return domain.NewUser(data.Name, data.Email, data.Role, digest, salt), nil
}
