package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/edgard/facto/internal/config"
)

// Mongo is the MongoDB backed store. It implements both ConversationBackend
// and LogStore; each bot creates the indexes of the collections it uses.
type Mongo struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
	log     *slog.Logger
}

var (
	_ ConversationBackend = (*Mongo)(nil)
	_ LogStore            = (*Mongo)(nil)
)

// NewMongo connects to cfg.URI and verifies the connection.
func NewMongo(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*Mongo, error) {
	if cfg.URI == "" {
		return nil, errors.New("database URI is empty")
	}
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.OperationTimeout
	if timeout <= 0 {
		timeout = config.DefaultStoreOpTimeout
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	m := &Mongo{
		client:  client,
		db:      client.Database(cfg.Name),
		timeout: timeout,
		log:     log.With("component", "mongo", "database", cfg.Name),
	}
	if err := m.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.log.InfoContext(ctx, "MongoDB connected")
	return m, nil
}

// Persistent is always true for MongoDB.
func (m *Mongo) Persistent() bool { return true }

// Ping checks the server connection.
func (m *Mongo) Ping(ctx context.Context) error {
	ctx, cancel := m.opContext(ctx)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	m.log.InfoContext(ctx, "MongoDB connection closed")
	return nil
}

func (m *Mongo) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

func (m *Mongo) collection(c Collection) *mongo.Collection {
	return m.db.Collection(string(c))
}

// EnsureConversationIndexes creates the unique keys of the journal collections.
func (m *Mongo) EnsureConversationIndexes(ctx context.Context) error {
	return m.ensureIndexes(ctx, map[Collection][]mongo.IndexModel{
		CollectionConversations: {
			{Keys: bson.D{{Key: "thread_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionChatModes: {
			{Keys: bson.D{{Key: "chat_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	})
}

// EnsureLogIndexes creates the identity and query indexes of the logger
// collections.
func (m *Mongo) EnsureLogIndexes(ctx context.Context) error {
	return m.ensureIndexes(ctx, map[Collection][]mongo.IndexModel{
		CollectionMessages: {
			{
				Keys:    bson.D{{Key: "message_id", Value: 1}, {Key: "chat_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("message_chat_unique"),
			},
			{Keys: bson.D{{Key: "chat_id", Value: 1}}, Options: options.Index().SetName("chat_id_idx")},
			{Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetName("date_idx")},
			{Keys: bson.D{{Key: "from_user.id", Value: 1}}, Options: options.Index().SetName("user_id_idx")},
			{Keys: bson.D{{Key: "message_thread_id", Value: 1}}, Options: options.Index().SetName("thread_id_idx")},
		},
		CollectionEvents: {
			{
				Keys:    bson.D{{Key: "message_id", Value: 1}, {Key: "chat_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("event_chat_unique"),
			},
			{Keys: bson.D{{Key: "chat_id", Value: 1}}, Options: options.Index().SetName("chat_id_idx")},
			{Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetName("date_idx")},
		},
	})
}

func (m *Mongo) ensureIndexes(ctx context.Context, indexes map[Collection][]mongo.IndexModel) error {
	for coll, models := range indexes {
		opCtx, cancel := m.opContext(ctx)
		_, err := m.collection(coll).Indexes().CreateMany(opCtx, models)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	m.log.InfoContext(ctx, "MongoDB indexes ensured", "collections", len(indexes))
	return nil
}

func (m *Mongo) upsert(ctx context.Context, coll Collection, filter bson.M, set any) (bool, error) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	res, err := m.collection(coll).UpdateOne(ctx, filter, bson.M{"$set": set}, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func findAll[T any](ctx context.Context, m *Mongo, coll Collection, filter any, opts ...options.Lister[options.FindOptions]) ([]T, error) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	cur, err := m.collection(coll).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
