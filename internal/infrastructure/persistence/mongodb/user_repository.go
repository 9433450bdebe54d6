// Package mongodb implements the user repository over a MongoDB
// collection. Uniqueness of the account name is enforced by a unique
// index, not by application locking.
package mongodb

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DELTAJoSch/Horus/internal/domain"
	domerrors "github.com/DELTAJoSch/Horus/internal/domain/errors"
)

// Connect dials the MongoDB deployment and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// UserRepository is the MongoDB-backed implementation of
// ports.UserRepository.
type UserRepository struct {
	col *mongo.Collection
}

// NewUserRepository binds the repository to the named collection and
// ensures the unique index on the account name.
func NewUserRepository(ctx context.Context, db *mongo.Database, collection string) (*UserRepository, error) {
	col := db.Collection(collection)
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "Name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return &UserRepository{col: col}, nil
}

func (r *UserRepository) List(ctx context.Context, batchSize, pageOffset int) ([]domain.User, error) {
	return r.find(ctx, bson.D{}, batchSize, pageOffset)
}

func (r *UserRepository) Search(ctx context.Context, batchSize, pageOffset int, criteria domain.Criteria) ([]domain.User, error) {
	return r.find(ctx, searchFilter(criteria), batchSize, pageOffset)
}

func (r *UserRepository) find(ctx context.Context, filter bson.D, batchSize, pageOffset int) ([]domain.User, error) {
	opts := options.Find().
		SetSkip(int64(batchSize) * int64(pageOffset)).
		SetLimit(int64(batchSize))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.User{}, domerrors.NotFound("no user with id " + id)
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *UserRepository) GetOne(ctx context.Context, criteria domain.Criteria) (domain.User, error) {
	return r.findOne(ctx, matchFilter(criteria))
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D) (domain.User, error) {
	var u domain.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domerrors.NotFound("no matching user")
		}
		return domain.User{}, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (string, error) {
	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", domerrors.Internal("store returned a non-ObjectID identifier", nil)
	}
	return oid.Hex(), nil
}

func (r *UserRepository) Update(ctx context.Context, id string, user domain.User) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domerrors.NotFound("no user with id " + id)
	}
	res, err := r.col.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: bson.D{
		{Key: "Name", Value: user.Name},
		{Key: "Email", Value: user.Email},
		{Key: "Password", Value: user.PasswordHash},
		{Key: "Salt", Value: user.Salt},
		{Key: "Role", Value: user.Role},
	}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domerrors.NotFound("no user with id " + id)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domerrors.NotFound("no user with id " + id)
	}
	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domerrors.NotFound("no user with id " + id)
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.D{})
}

func (r *UserRepository) CountMatching(ctx context.Context, criteria domain.Criteria) (int64, error) {
	return r.col.CountDocuments(ctx, searchFilter(criteria))
}

// searchFilter builds the list/count filter: case-insensitive substring on
// name and email, exact on role, AND over set fields.
func searchFilter(c domain.Criteria) bson.D {
	filter := bson.D{}
	if c.Name != "" {
		filter = append(filter, bson.E{Key: "Name", Value: containsFold(c.Name)})
	}
	if c.Email != "" {
		filter = append(filter, bson.E{Key: "Email", Value: containsFold(c.Email)})
	}
	if c.Role != "" {
		filter = append(filter, bson.E{Key: "Role", Value: c.Role})
	}
	return filter
}

// matchFilter builds the single-entity filter: exact equality on set
// fields. Exact-name lookups must not match supersets of the name.
func matchFilter(c domain.Criteria) bson.D {
	filter := bson.D{}
	if c.Name != "" {
		filter = append(filter, bson.E{Key: "Name", Value: c.Name})
	}
	if c.Email != "" {
		filter = append(filter, bson.E{Key: "Email", Value: c.Email})
	}
	if c.Role != "" {
		filter = append(filter, bson.E{Key: "Role", Value: c.Role})
	}
	return filter
}

func containsFold(substr string) bson.D {
	return bson.D{
		{Key: "$regex", Value: regexp.QuoteMeta(substr)},
		{Key: "$options", Value: "i"},
	}
}
