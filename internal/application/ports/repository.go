package ports

import (
	"context"

	"github.com/DELTAJoSch/Horus/internal/domain"
)

// UserRepository defines persistence for user accounts. Criteria passed to
// Search and CountMatching use case-insensitive substring matching on name
// and email; GetOne matches set fields exactly. All multi-field criteria
// are conjunctive.
type UserRepository interface {
	// List returns at most batchSize users starting at pageOffset*batchSize
	// in store order.
	List(ctx context.Context, batchSize, pageOffset int) ([]domain.User, error)
	// Search is List restricted to users matching the criteria.
	Search(ctx context.Context, batchSize, pageOffset int, criteria domain.Criteria) ([]domain.User, error)
	// GetByID returns the user with the given store identifier, or a
	// NotFound error.
	GetByID(ctx context.Context, id string) (domain.User, error)
	// GetOne returns the first user whose set fields equal the criteria, or
	// a NotFound error.
	GetOne(ctx context.Context, criteria domain.Criteria) (domain.User, error)
	// Create inserts the user and returns the store-assigned identifier.
	Create(ctx context.Context, user domain.User) (string, error)
	// Update replaces name, email, password hash, salt and role of the
	// identified user, or returns a NotFound error.
	Update(ctx context.Context, id string, user domain.User) error
	// Delete removes the identified user, or returns a NotFound error if
	// nothing was deleted.
	Delete(ctx context.Context, id string) error
	// Count returns the total number of users.
	Count(ctx context.Context) (int64, error)
	// CountMatching returns the number of users matching the criteria.
	CountMatching(ctx context.Context, criteria domain.Criteria) (int64, error)
}
