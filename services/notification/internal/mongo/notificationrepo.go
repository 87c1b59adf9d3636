package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hawkrclub/hawkr/pkg/enums/role"
	"github.com/hawkrclub/hawkr/services/notification/internal/notification"
)

// collectionNames maps each role to its own collection. The split is an
// authorization boundary: a repo call scoped to one role can never touch
// another role's records.
var collectionNames = map[string]string{
	role.Roles.Customer.Name: "customer_notifications",
	role.Roles.Vendor.Name:   "vendor_notifications",
	role.Roles.Operator.Name: "operator_notifications",
}

type NotificationRepo struct {
	client *mongo.Client
	db     *mongo.Database
	logger aqm.Logger
	config *aqm.Config
}

func NewNotificationRepo(config *aqm.Config, logger aqm.Logger) *NotificationRepo {
	return &NotificationRepo{
		logger: logger,
		config: config,
	}
}

func (r *NotificationRepo) Start(ctx context.Context) error {
	mongoURL, _ := r.config.GetString("db.mongo.url")
	if mongoURL == "" {
		mongoURL = "mongodb://localhost:27017"
	}

	dbName, _ := r.config.GetString("db.mongo.name")
	if dbName == "" {
		dbName = "hawkr_notification"
	}

	clientOptions := options.Client().ApplyURI(mongoURL).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	r.client = client
	r.db = client.Database(dbName)

	for _, name := range collectionNames {
		coll := r.db.Collection(name)

		ownerIndex := mongo.IndexModel{
			Keys: bson.D{
				{Key: "owner_id", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "seq", Value: -1},
			},
		}
		if _, err := coll.Indexes().CreateOne(ctx, ownerIndex); err != nil {
			return fmt.Errorf("cannot create owner index on %s: %w", name, err)
		}

		unreadIndex := mongo.IndexModel{
			Keys: bson.D{
				{Key: "owner_id", Value: 1},
				{Key: "is_read", Value: 1},
			},
		}
		if _, err := coll.Indexes().CreateOne(ctx, unreadIndex); err != nil {
			return fmt.Errorf("cannot create unread index on %s: %w", name, err)
		}
	}

	r.logger.Infof("Connected to MongoDB: %s, database: %s", mongoURL, dbName)
	return nil
}

func (r *NotificationRepo) Stop(ctx context.Context) error {
	if r.client != nil {
		if err := r.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
		}
		r.logger.Info("Disconnected from MongoDB")
	}
	return nil
}

func (r *NotificationRepo) collection(scope notification.Scope) *mongo.Collection {
	return r.db.Collection(collectionNames[scope.Role.Name])
}

// record wraps the domain model with the owner discriminator column.
type record struct {
	OwnerID                   uuid.UUID `bson:"owner_id"`
	notification.Notification `bson:",inline"`
}

func (r *NotificationRepo) Insert(ctx context.Context, scope notification.Scope, n *notification.Notification) error {
	doc := record{OwnerID: scope.OwnerID, Notification: *n}
	if _, err := r.collection(scope).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("cannot insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepo) Get(ctx context.Context, scope notification.Scope, id uuid.UUID) (*notification.Notification, error) {
	filter := bson.M{"_id": id, "owner_id": scope.OwnerID}

	var doc record
	err := r.collection(scope).FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notification.ErrNotFound
		}
		return nil, fmt.Errorf("cannot find notification: %w", err)
	}
	return &doc.Notification, nil
}

func (r *NotificationRepo) ListRecent(ctx context.Context, scope notification.Scope, limit int) ([]notification.Notification, error) {
	filter := bson.M{"owner_id": scope.OwnerID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "seq", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection(scope).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []record
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cannot decode notifications: %w", err)
	}

	out := make([]notification.Notification, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Notification)
	}
	return out, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, scope notification.Scope, id uuid.UUID, at time.Time) error {
	filter := bson.M{"_id": id, "owner_id": scope.OwnerID}
	update := bson.M{"$set": bson.M{"is_read": true, "read_at": at}}

	result, err := r.collection(scope).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot mark notification read: %w", err)
	}
	if result.MatchedCount == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, scope notification.Scope, at time.Time) (int64, error) {
	filter := bson.M{"owner_id": scope.OwnerID, "is_read": false}
	update := bson.M{"$set": bson.M{"is_read": true, "read_at": at}}

	result, err := r.collection(scope).UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("cannot mark notifications read: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *NotificationRepo) CountUnread(ctx context.Context, scope notification.Scope) (int64, error) {
	filter := bson.M{"owner_id": scope.OwnerID, "is_read": false}

	count, err := r.collection(scope).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("cannot count unread notifications: %w", err)
	}
	return count, nil
}
