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

	"github.com/hawkrclub/hawkr/services/chatbot/internal/chatbot"
)

const (
	linksCollection  = "identity_links"
	tokensCollection = "link_tokens"
)

type LinkRepo struct {
	client *mongo.Client
	db     *mongo.Database
	logger aqm.Logger
	config *aqm.Config
}

func NewLinkRepo(config *aqm.Config, logger aqm.Logger) *LinkRepo {
	return &LinkRepo{
		logger: logger,
		config: config,
	}
}

func (r *LinkRepo) Start(ctx context.Context) error {
	mongoURL, _ := r.config.GetString("db.mongo.url")
	if mongoURL == "" {
		mongoURL = "mongodb://localhost:27017"
	}

	dbName, _ := r.config.GetString("db.mongo.name")
	if dbName == "" {
		dbName = "hawkr_chatbot"
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

	// One link per channel, enforced at the database.
	channelIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "chat_channel_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.db.Collection(linksCollection).Indexes().CreateOne(ctx, channelIndex); err != nil {
		return fmt.Errorf("cannot create channel index: %w", err)
	}

	customerIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "customer_id", Value: 1}},
	}
	if _, err := r.db.Collection(linksCollection).Indexes().CreateOne(ctx, customerIndex); err != nil {
		return fmt.Errorf("cannot create customer index: %w", err)
	}

	tokenIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "token", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.db.Collection(tokensCollection).Indexes().CreateOne(ctx, tokenIndex); err != nil {
		return fmt.Errorf("cannot create token index: %w", err)
	}

	// Mongo reaps expired tokens in the background; the service still
	// checks expiry itself since the reaper runs on a coarse interval.
	expiryIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	if _, err := r.db.Collection(tokensCollection).Indexes().CreateOne(ctx, expiryIndex); err != nil {
		return fmt.Errorf("cannot create expiry index: %w", err)
	}

	r.logger.Info("Link repo started", "db", dbName)
	return nil
}

func (r *LinkRepo) Stop(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}

func (r *LinkRepo) CreateToken(ctx context.Context, token *chatbot.LinkToken) error {
	if _, err := r.db.Collection(tokensCollection).InsertOne(ctx, token); err != nil {
		return fmt.Errorf("cannot insert token: %w", err)
	}
	return nil
}

func (r *LinkRepo) GetToken(ctx context.Context, token string) (*chatbot.LinkToken, error) {
	var record chatbot.LinkToken
	err := r.db.Collection(tokensCollection).FindOne(ctx, bson.M{"token": token}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, chatbot.ErrTokenNotFound
		}
		return nil, fmt.Errorf("cannot get token: %w", err)
	}
	return &record, nil
}

func (r *LinkRepo) DeleteToken(ctx context.Context, token string) error {
	if _, err := r.db.Collection(tokensCollection).DeleteOne(ctx, bson.M{"token": token}); err != nil {
		return fmt.Errorf("cannot delete token: %w", err)
	}
	return nil
}

func (r *LinkRepo) CreateLink(ctx context.Context, link *chatbot.IdentityLink) error {
	if _, err := r.db.Collection(linksCollection).InsertOne(ctx, link); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return chatbot.ErrAlreadyLinked
		}
		return fmt.Errorf("cannot insert link: %w", err)
	}
	return nil
}

func (r *LinkRepo) GetLinkByChannel(ctx context.Context, channelID string) (*chatbot.IdentityLink, error) {
	var link chatbot.IdentityLink
	err := r.db.Collection(linksCollection).FindOne(ctx, bson.M{"chat_channel_id": channelID}).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, chatbot.ErrNotLinked
		}
		return nil, fmt.Errorf("cannot get link: %w", err)
	}
	return &link, nil
}

func (r *LinkRepo) GetLinkByCustomer(ctx context.Context, customerID uuid.UUID) (*chatbot.IdentityLink, error) {
	var link chatbot.IdentityLink
	err := r.db.Collection(linksCollection).FindOne(ctx, bson.M{"customer_id": customerID}).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, chatbot.ErrNotLinked
		}
		return nil, fmt.Errorf("cannot get link: %w", err)
	}
	return &link, nil
}

func (r *LinkRepo) DeleteLinkByChannel(ctx context.Context, channelID string) error {
	result, err := r.db.Collection(linksCollection).DeleteOne(ctx, bson.M{"chat_channel_id": channelID})
	if err != nil {
		return fmt.Errorf("cannot delete link: %w", err)
	}
	if result.DeletedCount == 0 {
		return chatbot.ErrNotLinked
	}
	return nil
}
