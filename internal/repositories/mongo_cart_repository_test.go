package repository_test

import (
	"testing"
	"time"

	"github.com/aaravmahajanofficial/clothing-store/internal/models"
	repository "github.com/aaravmahajanofficial/clothing-store/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func mustOID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	oid, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return oid
}

func TestMongoCartRepository_Find(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	now := time.Now().UTC().Truncate(time.Millisecond)

	mt.Run("Success - By Owner", func(mt *mtest.T) {
		// Arrange
		repo := repository.NewMongoCartRepo(mt.DB, mt.Coll.Name(), 0)
		ns := mt.DB.Name() + "." + mt.Coll.Name()

		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: mustOID(mt.T, testCartID)},
			{Key: "userId", Value: mustOID(mt.T, testUserID)},
			{Key: "items", Value: bson.A{
				bson.D{
					{Key: "productId", Value: mustOID(mt.T, testProductID)},
					{Key: "quantity", Value: 2},
					{Key: "price", Value: 10.5},
				},
			}},
			{Key: "totalPrice", Value: 21.0},
			{Key: "version", Value: int64(2)},
			{Key: "createdAt", Value: now},
			{Key: "updatedAt", Value: now},
		}))

		// Act
		cart, err := repo.FindByOwner(mt.Context(), testUserID)

		// Assert
		require.NoError(mt, err)
		require.NotNil(mt, cart)
		assert.Equal(mt, testCartID, cart.ID)
		assert.Equal(mt, testUserID, cart.UserID)
		assert.Equal(mt, []models.CartItem{{ProductID: testProductID, Quantity: 2, UnitPrice: 10.5}}, cart.Items)
		assert.Equal(mt, 21.0, cart.TotalPrice)
		assert.Equal(mt, int64(2), cart.Version)
		assert.True(mt, now.Equal(cart.CreatedAt))
	})

	mt.Run("Success - Legacy Document Without Version", func(mt *mtest.T) {
		// Arrange
		repo := repository.NewMongoCartRepo(mt.DB, mt.Coll.Name(), 0)
		ns := mt.DB.Name() + "." + mt.Coll.Name()

		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: mustOID(mt.T, testCartID)},
			{Key: "userId", Value: mustOID(mt.T, testUserID)},
			{Key: "items", Value: bson.A{}},
			{Key: "totalPrice", Value: 0.0},
		}))

		// Act
		cart, err := repo.FindByID(mt.Context(), testCartID)

		// Assert
		require.NoError(mt, err)
		assert.Zero(mt, cart.Version)
		assert.NotNil(mt, cart.Items)
		assert.Empty(mt, cart.Items)
	})

	mt.Run("Failure - Not Found", func(mt *mtest.T) {
		// Arrange
		repo := repository.NewMongoCartRepo(mt.DB, mt.Coll.Name(), 0)
		ns := mt.DB.Name() + "." + mt.Coll.Name()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		// Act
		cart, err := repo.FindByOwner(mt.Context(), testUserID)

		// Assert
		require.ErrorIs(mt, err, repository.ErrCartNotFound)
		assert.Nil(mt, cart)
	})

	mt.Run("Failure - Invalid ID", func(mt *mtest.T) {
		// Arrange
		repo := repository.NewMongoCartRepo(mt.DB, mt.Coll.Name(), 0)

		// Act
		cart, err := repo.FindByID(mt.Context(), "not-an-object-id")

		// Assert
		require.ErrorIs(mt, err, repository.ErrInvalidID)
		assert.Nil(mt, cart)
	})
}

func TestMongoCartRepository_Insert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("Success", func(mt *mtest.T) {
		// Arrange
		repo := repository.NewMongoCartRepo(mt.DB, mt.Coll.Name(), 0)
		cart := models.NewCart(testUserID, time.Now())
		cart.AddItem(testProductID, 1, 5)

		mt.AddMockResponses(mtest.CreateSuccessResponse())

		// Act
		err := repo.Insert(mt.Context(), cart)

		// Assert
		require.NoError(mt, err)
		assert.True(mt, primitive.IsValidObjectID(cart.ID))
		assert.Equal(mt, int64(1), cart.Version)
	})

	mt.Run("Failure - Duplicate Owner", func(mt *mtest.T) {
		// Arrange
		repo := repository.NewMongoCartRepo(mt.DB, mt.Coll.Name(), 0)
		cart := models.NewCart(testUserID, time.Now())

		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		// Act
		err := repo.Insert(mt.Context(), cart)

		// Assert
		require.ErrorIs(mt, err, repository.ErrDuplicateCart)
		assert.Empty(mt, cart.ID)
	})

	mt.Run("Failure - Invalid Product ID", func(mt *mtest.T) {
		// Arrange
		repo := repository.NewMongoCartRepo(mt.DB, mt.Coll.Name(), 0)
		cart := models.NewCart(testUserID, time.Now())
		cart.AddItem("sku-123", 1, 5)

		// Act
		err := repo.Insert(mt.Context(), cart)

		// Assert
		require.ErrorIs(mt, err, repository.ErrInvalidID)
	})
}

func TestMongoCartRepository_Replace(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	newCart := func() *models.Cart {
		cart := models.NewCart(testUserID, time.Now())
		cart.ID = testCartID
		cart.Version = 2
		cart.AddItem(testProductID, 3, 2)
		return cart
	}

	mt.Run("Success", func(mt *mtest.T) {
		// Arrange
		repo := repository.NewMongoCartRepo(mt.DB, mt.Coll.Name(), 0)
		cart := newCart()

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		// Act
		err := repo.Replace(mt.Context(), cart, 2)

		// Assert
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), cart.Version)
	})

	mt.Run("Failure - Version Conflict", func(mt *mtest.T) {
		// Arrange
		repo := repository.NewMongoCartRepo(mt.DB, mt.Coll.Name(), 0)
		cart := newCart()

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		// Act
		err := repo.Replace(mt.Context(), cart, 2)

		// Assert
		require.ErrorIs(mt, err, repository.ErrVersionConflict)
		assert.Equal(mt, int64(2), cart.Version)
	})

	mt.Run("Failure - Missing ID", func(mt *mtest.T) {
		// Arrange
		repo := repository.NewMongoCartRepo(mt.DB, mt.Coll.Name(), 0)
		cart := newCart()
		cart.ID = ""

		// Act
		err := repo.Replace(mt.Context(), cart, 2)

		// Assert
		require.ErrorIs(mt, err, repository.ErrInvalidID)
	})
}

func TestMongoCartRepository_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("Success", func(mt *mtest.T) {
		repo := repository.NewMongoCartRepo(mt.DB, mt.Coll.Name(), 0)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.EnsureIndexes(mt.Context()))
	})
}
