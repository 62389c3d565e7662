package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/clothing-store/internal/models"
	"github.com/aaravmahajanofficial/clothing-store/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cartItemDocument struct {
	ProductID primitive.ObjectID `bson:"productId"`
	Quantity  int                `bson:"quantity"`
	Price     float64            `bson:"price"`
}

type cartDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     primitive.ObjectID `bson:"userId"`
	Items      []cartItemDocument `bson:"items"`
	TotalPrice float64            `bson:"totalPrice"`
	Version    int64              `bson:"version"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

type MongoCartRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongoCartRepo(db *mongo.Database, collection string, timeout time.Duration) *MongoCartRepository {
	return &MongoCartRepository{collection: db.Collection(collection), timeout: timeout}
}

func (m *MongoCartRepository) FindByOwner(ctx context.Context, userID string) (*models.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user id %q", ErrInvalidID, userID)
	}

	return m.findOne(ctx, bson.M{"userId": oid})
}

func (m *MongoCartRepository) FindByID(ctx context.Context, cartID string) (*models.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(cartID)
	if err != nil {
		return nil, fmt.Errorf("%w: cart id %q", ErrInvalidID, cartID)
	}

	return m.findOne(ctx, bson.M{"_id": oid})
}

func (m *MongoCartRepository) findOne(ctx context.Context, filter bson.M) (*models.Cart, error) {
	dbCtx, cancel := utils.WithStoreTimeout(ctx, m.timeout)
	defer cancel()

	var doc cartDocument

	err := m.collection.FindOne(dbCtx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return fromDocument(&doc), nil
}

func (m *MongoCartRepository) Insert(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithStoreTimeout(ctx, m.timeout)
	defer cancel()

	doc, err := toDocument(cart)
	if err != nil {
		return err
	}

	doc.ID = primitive.NewObjectID()
	doc.Version = 1

	if _, err := m.collection.InsertOne(dbCtx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCart
		}
		return fmt.Errorf("failed to create cart: %w", err)
	}

	cart.ID = doc.ID.Hex()
	cart.Version = doc.Version

	return nil
}

func (m *MongoCartRepository) Replace(ctx context.Context, cart *models.Cart, expectedVersion int64) error {
	dbCtx, cancel := utils.WithStoreTimeout(ctx, m.timeout)
	defer cancel()

	doc, err := toDocument(cart)
	if err != nil {
		return err
	}

	if doc.ID.IsZero() {
		return fmt.Errorf("%w: cart id is empty", ErrInvalidID)
	}

	doc.Version = expectedVersion + 1

	filter := bson.M{"_id": doc.ID, "version": expectedVersion}
	if expectedVersion == 0 {
		// documents written before versioning have no version field
		filter["version"] = bson.M{"$in": bson.A{0, nil}}
	}

	result, err := m.collection.ReplaceOne(dbCtx, filter, doc)
	if err != nil {
		return fmt.Errorf("failed to replace cart: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}

	cart.Version = doc.Version

	return nil
}

// EnsureIndexes makes the owner id unique, which is what turns two racing
// first-adds for the same user into a single cart.
func (m *MongoCartRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("userId_unique"),
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func toDocument(cart *models.Cart) (*cartDocument, error) {
	doc := &cartDocument{
		TotalPrice: cart.TotalPrice,
		Version:    cart.Version,
		CreatedAt:  cart.CreatedAt,
		UpdatedAt:  cart.UpdatedAt,
		Items:      make([]cartItemDocument, 0, len(cart.Items)),
	}

	if cart.ID != "" {
		oid, err := primitive.ObjectIDFromHex(cart.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: cart id %q", ErrInvalidID, cart.ID)
		}
		doc.ID = oid
	}

	userID, err := primitive.ObjectIDFromHex(cart.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: user id %q", ErrInvalidID, cart.UserID)
	}
	doc.UserID = userID

	for _, item := range cart.Items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product id %q", ErrInvalidID, item.ProductID)
		}
		doc.Items = append(doc.Items, cartItemDocument{
			ProductID: productID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		})
	}

	return doc, nil
}

func fromDocument(doc *cartDocument) *models.Cart {
	cart := &models.Cart{
		ID:         doc.ID.Hex(),
		UserID:     doc.UserID.Hex(),
		Items:      make([]models.CartItem, 0, len(doc.Items)),
		TotalPrice: doc.TotalPrice,
		Version:    doc.Version,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}

	for _, item := range doc.Items {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: item.ProductID.Hex(),
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}

	return cart
}
