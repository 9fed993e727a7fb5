package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/staffdesk/auth-service/internal/core/domain"
)

const accountCollection = "accounts"

type MongoAccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *MongoAccountRepository {
	return &MongoAccountRepository{coll: db.Collection(accountCollection)}
}

type mongoAccount struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Username         string             `bson:"username"`
	Email            string             `bson:"email"`
	PasswordHash     string             `bson:"password_hash"`
	Roles            []string           `bson:"roles"`
	Status           string             `bson:"status"`
	ContactNumber    string             `bson:"contact_number,omitempty"`
	EmployeeID       string             `bson:"employee_id,omitempty"`
	Designation      string             `bson:"designation,omitempty"`
	ResetToken       string             `bson:"reset_token,omitempty"`
	ResetTokenExpiry int64              `bson:"reset_token_expiry,omitempty"`
	CreatedAt        int64              `bson:"created_at"`
	UpdatedAt        int64              `bson:"updated_at"`
}

// EnsureIndexes creates the unique indexes backing the Conflict semantics for
// usernames and emails, plus a sparse index for reset-token lookups.
func (r *MongoAccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "reset_token", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("ensure account indexes: %w", err)
	}
	return nil
}

func (r *MongoAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	doc := toMongoAccount(account)

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	created := *account
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *MongoAccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoAccountRepository) FindByResetToken(ctx context.Context, token string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"reset_token": token})
}

func (r *MongoAccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *MongoAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

// SetStatus updates the lifecycle status in a single document operation and
// returns the updated account.
func (r *MongoAccountRepository) SetStatus(ctx context.Context, username string, status domain.AccountStatus) (*domain.Account, error) {
	update := bson.M{"$set": bson.M{
		"status":     string(status),
		"updated_at": time.Now().UTC().Unix(),
	}}
	return r.findOneAndUpdate(ctx, bson.M{"username": username}, update)
}

func (r *MongoAccountRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	update := bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC().Unix(),
	}}
	return r.updateOne(ctx, bson.M{"username": username}, update)
}

func (r *MongoAccountRepository) SetResetToken(ctx context.Context, username, token string, expiry time.Time) error {
	update := bson.M{"$set": bson.M{
		"reset_token":        token,
		"reset_token_expiry": expiry.UTC().Unix(),
		"updated_at":         time.Now().UTC().Unix(),
	}}
	return r.updateOne(ctx, bson.M{"username": username}, update)
}

func (r *MongoAccountRepository) ClearResetToken(ctx context.Context, username string) error {
	update := bson.M{
		"$unset": bson.M{"reset_token": "", "reset_token_expiry": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC().Unix()},
	}
	return r.updateOne(ctx, bson.M{"username": username}, update)
}

// ResetPasswordByToken filters on the reset token itself, so the password
// swap and the token clearing are one atomic document update. A concurrent
// consumer of the same token finds no match and gets ErrAccountNotFound.
func (r *MongoAccountRepository) ResetPasswordByToken(ctx context.Context, token, passwordHash string) (*domain.Account, error) {
	update := bson.M{
		"$set": bson.M{
			"password_hash": passwordHash,
			"updated_at":    time.Now().UTC().Unix(),
		},
		"$unset": bson.M{"reset_token": "", "reset_token_expiry": ""},
	}
	return r.findOneAndUpdate(ctx, bson.M{"reset_token": token}, update)
}

func (r *MongoAccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var ma mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return fromMongoAccount(&ma), nil
}

func (r *MongoAccountRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	return n > 0, nil
}

func (r *MongoAccountRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *MongoAccountRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Account, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ma mongoAccount
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return fromMongoAccount(&ma), nil
}

func toMongoAccount(a *domain.Account) mongoAccount {
	roles := make([]string, len(a.Roles))
	for i, r := range a.Roles {
		roles[i] = string(r)
	}

	doc := mongoAccount{
		Username:      a.Username,
		Email:         a.Email,
		PasswordHash:  a.PasswordHash,
		Roles:         roles,
		Status:        string(a.Status),
		ContactNumber: a.ContactNumber,
		EmployeeID:    a.EmployeeID,
		Designation:   a.Designation,
		ResetToken:    a.ResetToken,
		CreatedAt:     a.CreatedAt.Unix(),
		UpdatedAt:     a.UpdatedAt.Unix(),
	}
	if !a.ResetTokenExpiry.IsZero() {
		doc.ResetTokenExpiry = a.ResetTokenExpiry.Unix()
	}
	return doc
}

func fromMongoAccount(ma *mongoAccount) *domain.Account {
	roles := make([]domain.Role, len(ma.Roles))
	for i, r := range ma.Roles {
		roles[i] = domain.Role(r)
	}

	return &domain.Account{
		ID:               ma.ID.Hex(),
		Username:         ma.Username,
		Email:            ma.Email,
		PasswordHash:     ma.PasswordHash,
		Roles:            roles,
		Status:           domain.AccountStatus(ma.Status),
		ContactNumber:    ma.ContactNumber,
		EmployeeID:       ma.EmployeeID,
		Designation:      ma.Designation,
		ResetToken:       ma.ResetToken,
		ResetTokenExpiry: unixToTime(ma.ResetTokenExpiry),
		CreatedAt:        unixToTime(ma.CreatedAt),
		UpdatedAt:        unixToTime(ma.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
