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

	"github.com/facegate/auth-system/internal/core/domain"
)

const accountCollection = "accounts"

// AccountRepository persists accounts in MongoDB. Templates and password
// hashes are stored as opaque blobs; the schema knows nothing about
// descriptor dimensionality or hash parameters.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

type mongoAccount struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email,omitempty"`
	PasswordHash string             `bson:"password_hash,omitempty"`
	Template     []byte             `bson:"template,omitempty"`
	// ExternalID must be absent (not empty) when unset so the sparse unique
	// index ignores accounts without a linked identity.
	ExternalID string `bson:"external_id,omitempty"`
	Role       string `bson:"role"`
	CreatedAt  int64  `bson:"created_at"`
}

// Create inserts the account. The insert is atomic against both uniqueness
// indexes: it either fully succeeds or leaves no row. Duplicate keys are
// translated to the domain taxonomy instead of leaking driver errors.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	doc := mongoAccount{
		Username:     account.Username,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		Template:     account.Template,
		ExternalID:   account.ExternalID,
		Role:         account.Role,
		CreatedAt:    account.CreatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "uniq_external_id") {
				return nil, domain.ErrProvisioningConflict
			}
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("%w: insert account: %v", domain.ErrStoreUnavailable, err)
	}

	created := *account
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *AccountRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"external_id": externalID})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var ma mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&ma); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: find account: %v", domain.ErrStoreUnavailable, err)
	}
	return ma.toDomain(), nil
}

// ListEnrolled returns every account carrying a face template in _id order,
// which for ObjectIDs is creation order. The result is a point-in-time
// snapshot: the gallery scan tolerates, and simply does not see, accounts
// enrolled after the cursor opened.
func (r *AccountRepository) ListEnrolled(ctx context.Context) ([]*domain.Account, error) {
	filter := bson.M{"template": bson.M{"$exists": true, "$ne": nil}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: list enrolled: %v", domain.ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var accounts []*domain.Account
	for cursor.Next(ctx) {
		var ma mongoAccount
		if err := cursor.Decode(&ma); err != nil {
			return nil, fmt.Errorf("%w: decode enrolled account: %v", domain.ErrStoreUnavailable, err)
		}
		accounts = append(accounts, ma.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: list enrolled: %v", domain.ErrStoreUnavailable, err)
	}
	return accounts, nil
}

func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("%w: count accounts: %v", domain.ErrStoreUnavailable, err)
	}
	return n, nil
}

func (ma *mongoAccount) toDomain() *domain.Account {
	return &domain.Account{
		ID:           ma.ID.Hex(),
		Username:     ma.Username,
		Email:        ma.Email,
		PasswordHash: ma.PasswordHash,
		Template:     domain.Template(ma.Template),
		ExternalID:   ma.ExternalID,
		Role:         ma.Role,
		CreatedAt:    unixToTime(ma.CreatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
