package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parkingapp/auth-service/internal/core/domain"
)

const (
	usersCollection = "users"
	rolesCollection = "roles"
	codesCollection = "access_codes"
)

// CredentialStore is the production ports.CredentialStore backed by MongoDB.
// Unique indexes on username, email and code are the race-safety backstop
// behind the service-level existence checks.
type CredentialStore struct {
	client *mongo.Client
	users  *mongo.Collection
	roles  *mongo.Collection
	codes  *mongo.Collection
}

func NewCredentialStore(db *mongo.Database) *CredentialStore {
	return &CredentialStore{
		client: db.Client(),
		users:  db.Collection(usersCollection),
		roles:  db.Collection(rolesCollection),
		codes:  db.Collection(codesCollection),
	}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Roles        []string           `bson:"roles"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

type mongoRole struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

type mongoAccessCode struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Code      string             `bson:"code"`
	Used      bool               `bson:"used"`
	ExpiresAt *int64             `bson:"expires_at,omitempty"`
	CreatedAt int64              `bson:"created_at"`
}

// EnsureIndexes creates the unique indexes the registration flow relies on.
// Call once at startup, before the HTTP server accepts traffic.
func (r *CredentialStore) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	_, err = r.roles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}}, Options: unique,
	})
	if err != nil {
		return fmt.Errorf("role index: %w", err)
	}

	_, err = r.codes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "code", Value: 1}}, Options: unique,
	})
	if err != nil {
		return fmt.Errorf("access code index: %w", err)
	}
	return nil
}

func (r *CredentialStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *CredentialStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *CredentialStore) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.users.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, storeErr("count users", err)
	}
	return n > 0, nil
}

func (r *CredentialStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findUser(ctx, bson.M{"email": email})
}

func (r *CredentialStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findUser(ctx, bson.M{"username": username})
}

func (r *CredentialStore) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.users.FindOne(ctx, filter).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr("find user", err)
	}

	return &domain.User{
		ID:           mu.ID.Hex(),
		Username:     mu.Username,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		Roles:        domain.NewRoleSet(mu.Roles...),
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}, nil
}

func (r *CredentialStore) FindRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	var mr mongoRole
	if err := r.roles.FindOne(ctx, bson.M{"name": name}).Decode(&mr); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrRoleNotConfigured
		}
		return nil, storeErr("find role", err)
	}
	return &domain.Role{ID: mr.ID.Hex(), Name: mr.Name}, nil
}

func (r *CredentialStore) FindAccessCodeByCode(ctx context.Context, code string) (*domain.AccessCode, error) {
	var mc mongoAccessCode
	if err := r.codes.FindOne(ctx, bson.M{"code": code}).Decode(&mc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrCodeNotFound
		}
		return nil, storeErr("find access code", err)
	}

	record := &domain.AccessCode{
		ID:        mc.ID.Hex(),
		Code:      mc.Code,
		Used:      mc.Used,
		CreatedAt: unixToTime(mc.CreatedAt),
	}
	if mc.ExpiresAt != nil {
		t := unixToTime(*mc.ExpiresAt)
		record.ExpiresAt = &t
	}
	return record, nil
}

func (r *CredentialStore) SaveAccessCode(ctx context.Context, code *domain.AccessCode) error {
	doc := accessCodeDoc(code)
	_, err := r.codes.UpdateOne(ctx,
		bson.M{"code": code.Code},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return storeErr("save access code", err)
	}
	return nil
}

// CreateUserWithCode inserts the user and marks the access code used inside
// one MongoDB transaction. Requires a replica set (standalone mongod does
// not support transactions).
func (r *CredentialStore) CreateUserWithCode(ctx context.Context, user *domain.User, code *domain.AccessCode) error {
	session, err := r.client.StartSession()
	if err != nil {
		return storeErr("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		doc := mongoUser{
			Username:     user.Username,
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
			Roles:        user.Roles.Names(),
			CreatedAt:    user.CreatedAt.Unix(),
			UpdatedAt:    user.UpdatedAt.Unix(),
		}
		if _, err := r.users.InsertOne(sc, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, duplicateKeyErr(err)
			}
			return nil, storeErr("insert user", err)
		}

		result, err := r.codes.UpdateOne(sc,
			bson.M{"code": code.Code, "used": false},
			bson.M{"$set": bson.M{"used": true}},
		)
		if err != nil {
			return nil, storeErr("consume access code", err)
		}
		// A concurrent registration may have consumed the code between the
		// gate check and this write; abort so the user insert rolls back.
		if result.ModifiedCount == 0 {
			return nil, domain.ErrCodeAlreadyUsed
		}
		return nil, nil
	})
	return err
}

// EnsureRole upserts a role by name. Used by provisioning tooling; the
// service itself never creates roles.
func (r *CredentialStore) EnsureRole(ctx context.Context, name string) error {
	_, err := r.roles.UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$setOnInsert": bson.M{"name": name}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return storeErr("ensure role", err)
	}
	return nil
}

func accessCodeDoc(code *domain.AccessCode) mongoAccessCode {
	doc := mongoAccessCode{
		Code:      code.Code,
		Used:      code.Used,
		CreatedAt: code.CreatedAt.Unix(),
	}
	if code.ExpiresAt != nil {
		ts := code.ExpiresAt.Unix()
		doc.ExpiresAt = &ts
	}
	return doc
}

// duplicateKeyErr translates a unique-index violation into the validation
// error matching the clashing field.
func duplicateKeyErr(err error) error {
	if strings.Contains(err.Error(), "email") {
		return domain.ErrEmailTaken
	}
	return domain.ErrUsernameTaken
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
