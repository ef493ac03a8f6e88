package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

const usersCollection = "users"

// IdentityStore keeps users in a collection with a unique index on email.
type IdentityStore struct {
	coll  *mongo.Collection
	vault ports.CredentialVault
	now   func() time.Time
}

func NewIdentityStore(db *mongo.Database, vault ports.CredentialVault) *IdentityStore {
	return &IdentityStore{coll: db.Collection(usersCollection), vault: vault, now: time.Now}
}

type mongoUser struct {
	Email        string `bson:"email"`
	PasswordHash string `bson:"password_hash"`
	Requires2FA  bool   `bson:"requires_2fa"`
	CreatedAt    int64  `bson:"created_at"`
}

// EnsureIndexes creates the unique email index. Safe to call on every start.
func (s *IdentityStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return oops.In("mongo").Code("INDEX_CREATE_FAILED").With("collection", usersCollection).Wrap(err)
	}
	return nil
}

func (s *IdentityStore) Add(ctx context.Context, user domain.User) error {
	doc := mongoUser{
		Email:        user.Email.String(),
		PasswordHash: user.PasswordHash,
		Requires2FA:  user.Requires2FA,
		CreatedAt:    s.now().Unix(),
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserAlreadyExists
		}
		return oops.In("mongo").Code("USER_INSERT_FAILED").Wrap(err)
	}
	return nil
}

func (s *IdentityStore) Get(ctx context.Context, email domain.Email) (domain.User, error) {
	var mu mongoUser
	if err := s.coll.FindOne(ctx, bson.M{"email": email.String()}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, oops.In("mongo").Code("USER_FIND_FAILED").Wrap(err)
	}

	stored, err := domain.ParseEmail(mu.Email)
	if err != nil {
		return domain.User{}, oops.In("mongo").Code("USER_CORRUPT").With("field", "email").Wrap(err)
	}
	return domain.NewUser(stored, mu.PasswordHash, mu.Requires2FA), nil
}

func (s *IdentityStore) Validate(ctx context.Context, email domain.Email, password domain.Password) error {
	u, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	ok, err := s.vault.Verify(ctx, u.PasswordHash, password)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrIncorrectCredentials
	}
	return nil
}
