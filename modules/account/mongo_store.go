package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/starterkit/pkg/mongo"
)

// MongoStore implements Storage on a MongoDB collection. Email uniqueness is
// enforced by a sparse unique index so federated-only accounts without an
// email do not collide.
type MongoStore struct {
	coll *mongodrv.Collection
}

// NewMongoStore creates a Storage backed by the "accounts" collection of the
// given database. Call EnsureIndexes once at startup.
func NewMongoStore(db *mongodrv.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("accounts")}
}

var _ Storage = (*MongoStore)(nil)

// EnsureIndexes creates the unique and lookup indexes the store relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongodrv.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "email", Value: bson.D{{Key: "$gt", Value: ""}}}}),
		},
		{Keys: bson.D{{Key: "password_reset_token", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "google_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "facebook_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	return err
}

// accountDoc is the BSON shape of an account. The uuid is stored as its
// string form to keep documents readable in the shell.
type accountDoc struct {
	ID                     string    `bson:"_id"`
	Email                  string    `bson:"email,omitempty"`
	PasswordHash           string    `bson:"password_hash,omitempty"`
	PasswordResetToken     string    `bson:"password_reset_token,omitempty"`
	PasswordResetExpires   time.Time `bson:"password_reset_expires,omitempty"`
	EmailVerificationToken string    `bson:"email_verification_token,omitempty"`
	EmailVerified          bool      `bson:"email_verified"`
	GoogleID               string    `bson:"google_id,omitempty"`
	FacebookID             string    `bson:"facebook_id,omitempty"`
	Name                   string    `bson:"name,omitempty"`
	Gender                 string    `bson:"gender,omitempty"`
	Location               string    `bson:"location,omitempty"`
	Website                string    `bson:"website,omitempty"`
	Picture                string    `bson:"picture,omitempty"`
	CreatedAt              time.Time `bson:"created_at"`
	UpdatedAt              time.Time `bson:"updated_at"`
}

func toDoc(acc *Account) accountDoc {
	return accountDoc{
		ID:                     acc.ID.String(),
		Email:                  acc.Email,
		PasswordHash:           acc.PasswordHash,
		PasswordResetToken:     acc.PasswordResetToken,
		PasswordResetExpires:   acc.PasswordResetExpires,
		EmailVerificationToken: acc.EmailVerificationToken,
		EmailVerified:          acc.EmailVerified,
		GoogleID:               acc.GoogleID,
		FacebookID:             acc.FacebookID,
		Name:                   acc.Profile.Name,
		Gender:                 acc.Profile.Gender,
		Location:               acc.Profile.Location,
		Website:                acc.Profile.Website,
		Picture:                acc.Profile.Picture,
		CreatedAt:              acc.CreatedAt,
		UpdatedAt:              acc.UpdatedAt,
	}
}

func (d accountDoc) toAccount() (*Account, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, ErrInvalidAccount
	}
	return &Account{
		ID:                     id,
		Email:                  d.Email,
		PasswordHash:           d.PasswordHash,
		PasswordResetToken:     d.PasswordResetToken,
		PasswordResetExpires:   d.PasswordResetExpires,
		EmailVerificationToken: d.EmailVerificationToken,
		EmailVerified:          d.EmailVerified,
		GoogleID:               d.GoogleID,
		FacebookID:             d.FacebookID,
		Profile: Profile{
			Name:     d.Name,
			Gender:   d.Gender,
			Location: d.Location,
			Website:  d.Website,
			Picture:  d.Picture,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func (s *MongoStore) Create(ctx context.Context, acc *Account) error {
	if acc == nil || acc.ID == uuid.Nil {
		return ErrInvalidAccount
	}

	now := time.Now()
	acc.CreatedAt = now
	acc.UpdatedAt = now

	_, err := s.coll.InsertOne(ctx, toDoc(acc))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *MongoStore) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.getBy(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (s *MongoStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	if email == "" {
		return nil, ErrNotFound
	}
	return s.getBy(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *MongoStore) GetByResetToken(ctx context.Context, token string) (*Account, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return s.getBy(ctx, bson.D{{Key: "password_reset_token", Value: token}})
}

func (s *MongoStore) GetByGoogleID(ctx context.Context, id string) (*Account, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.getBy(ctx, bson.D{{Key: "google_id", Value: id}})
}

func (s *MongoStore) GetByFacebookID(ctx context.Context, id string) (*Account, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.getBy(ctx, bson.D{{Key: "facebook_id", Value: id}})
}

func (s *MongoStore) getBy(ctx context.Context, filter bson.D) (*Account, error) {
	var doc accountDoc
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if mongo.IsNotFoundError(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toAccount()
}

func (s *MongoStore) Update(ctx context.Context, acc *Account) error {
	if acc == nil || acc.ID == uuid.Nil {
		return ErrInvalidAccount
	}

	acc.UpdatedAt = time.Now()

	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: acc.ID.String()}}, toDoc(acc))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
