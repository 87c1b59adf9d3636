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

	"github.com/hawkrclub/hawkr/services/feedback/internal/feedback"
)

const (
	feedbackCollection = "feedback"
	stallsCollection   = "stalls"
	centresCollection  = "centres"
)

type FeedbackRepo struct {
	client *mongo.Client
	db     *mongo.Database
	logger aqm.Logger
	config *aqm.Config
}

func NewFeedbackRepo(config *aqm.Config, logger aqm.Logger) *FeedbackRepo {
	return &FeedbackRepo{
		logger: logger,
		config: config,
	}
}

func (r *FeedbackRepo) Start(ctx context.Context) error {
	mongoURL, _ := r.config.GetString("db.mongo.url")
	if mongoURL == "" {
		mongoURL = "mongodb://localhost:27017"
	}

	dbName, _ := r.config.GetString("db.mongo.name")
	if dbName == "" {
		dbName = "hawkr_feedback"
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

	stallIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "stall_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	}
	if _, err := r.db.Collection(feedbackCollection).Indexes().CreateOne(ctx, stallIndex); err != nil {
		return fmt.Errorf("cannot create stall index: %w", err)
	}

	r.logger.Info("Feedback repo started", "db", dbName)
	return nil
}

func (r *FeedbackRepo) Stop(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}

// Create inserts the feedback and folds its rating into the stall
// aggregate in one transaction. Concurrent submissions against the same
// stall serialize on the transactional read-modify-write.
func (r *FeedbackRepo) Create(ctx context.Context, f *feedback.Feedback) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("cannot start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var stall feedback.Stall
		err := r.db.Collection(stallsCollection).FindOne(sc, bson.M{"_id": f.StallID}).Decode(&stall)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, feedback.ErrNotFound
			}
			return nil, fmt.Errorf("cannot load stall: %w", err)
		}

		average, count := feedback.AddRating(stall.AverageRating, stall.TotalReviews, f.Rating)

		update := bson.M{"$set": bson.M{
			"average_rating": average,
			"total_reviews":  count,
			"updated_at":     time.Now(),
		}}
		if _, err := r.db.Collection(stallsCollection).UpdateOne(sc, bson.M{"_id": stall.ID}, update); err != nil {
			return nil, fmt.Errorf("cannot update stall aggregate: %w", err)
		}

		if _, err := r.db.Collection(feedbackCollection).InsertOne(sc, f); err != nil {
			return nil, fmt.Errorf("cannot insert feedback: %w", err)
		}
		return nil, nil
	})
	return err
}

func (r *FeedbackRepo) Get(ctx context.Context, id uuid.UUID) (*feedback.Feedback, error) {
	var f feedback.Feedback
	err := r.db.Collection(feedbackCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, feedback.ErrNotFound
		}
		return nil, fmt.Errorf("cannot get feedback: %w", err)
	}
	return &f, nil
}

func (r *FeedbackRepo) ListByStall(ctx context.Context, stallID uuid.UUID) ([]*feedback.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.db.Collection(feedbackCollection).Find(ctx, bson.M{"stall_id": stallID}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list feedback: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*feedback.Feedback
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("cannot decode feedback: %w", err)
	}
	return records, nil
}

// Delete removes the feedback and backs its rating out of the stall
// aggregate, in the same transaction shape as Create.
func (r *FeedbackRepo) Delete(ctx context.Context, id uuid.UUID) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("cannot start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var f feedback.Feedback
		err := r.db.Collection(feedbackCollection).FindOne(sc, bson.M{"_id": id}).Decode(&f)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, feedback.ErrNotFound
			}
			return nil, fmt.Errorf("cannot load feedback: %w", err)
		}

		var stall feedback.Stall
		err = r.db.Collection(stallsCollection).FindOne(sc, bson.M{"_id": f.StallID}).Decode(&stall)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, feedback.ErrNotFound
			}
			return nil, fmt.Errorf("cannot load stall: %w", err)
		}

		average, count := feedback.RemoveRating(stall.AverageRating, stall.TotalReviews, f.Rating)

		update := bson.M{"$set": bson.M{
			"average_rating": average,
			"total_reviews":  count,
			"updated_at":     time.Now(),
		}}
		if _, err := r.db.Collection(stallsCollection).UpdateOne(sc, bson.M{"_id": stall.ID}, update); err != nil {
			return nil, fmt.Errorf("cannot update stall aggregate: %w", err)
		}

		if _, err := r.db.Collection(feedbackCollection).DeleteOne(sc, bson.M{"_id": id}); err != nil {
			return nil, fmt.Errorf("cannot delete feedback: %w", err)
		}
		return nil, nil
	})
	return err
}

// SetResolution writes the resolution only onto a still-unresolved
// record; the filter enforces write-once at the database.
func (r *FeedbackRepo) SetResolution(ctx context.Context, id uuid.UUID, stallResponse string, res *feedback.Resolution) error {
	filter := bson.M{"_id": id, "resolution": nil}
	update := bson.M{"$set": bson.M{
		"stall_response": stallResponse,
		"resolution":     res,
		"updated_at":     time.Now(),
	}}

	result, err := r.db.Collection(feedbackCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot set resolution: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return feedback.ErrAlreadyResolved
	}
	return nil
}

func (r *FeedbackRepo) GetStall(ctx context.Context, id uuid.UUID) (*feedback.Stall, error) {
	var stall feedback.Stall
	err := r.db.Collection(stallsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&stall)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, feedback.ErrNotFound
		}
		return nil, fmt.Errorf("cannot get stall: %w", err)
	}
	return &stall, nil
}

func (r *FeedbackRepo) GetCentre(ctx context.Context, id uuid.UUID) (*feedback.Centre, error) {
	var centre feedback.Centre
	err := r.db.Collection(centresCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&centre)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, feedback.ErrNotFound
		}
		return nil, fmt.Errorf("cannot get centre: %w", err)
	}
	return &centre, nil
}
