package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ludovicdevio/storefront/internal/domain"
)

type mongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) CartStore {
	return &mongoStore{
		collection: db.Collection("carts"),
	}
}

func (m *mongoStore) Find(ctx context.Context, key string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"_id": key}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", storeUnavailable(err))
	}
	if cart.Items == nil {
		cart.Items = make(map[string]*domain.CartItem)
	}

	return &cart, nil
}

func (m *mongoStore) Upsert(ctx context.Context, cart *domain.Cart) error {
	// Whole-record replacement, so a reset Items map always lands even when
	// only nested fields changed.
	filter := bson.M{"_id": cart.ID}
	opts := options.Replace().SetUpsert(true)

	_, err := m.collection.ReplaceOne(ctx, filter, cart, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", storeUnavailable(err))
	}

	return nil
}

func (m *mongoStore) Delete(ctx context.Context, key string) error {
	filter := bson.M{"_id": key}

	_, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", storeUnavailable(err))
	}

	return nil
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}
