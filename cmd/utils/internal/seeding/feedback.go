package seeding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	demoFeedbackChickenRice1ID = uuid.MustParse("d5000000-0000-4000-8000-000000000001")
	demoFeedbackChickenRice2ID = uuid.MustParse("d5000000-0000-4000-8000-000000000002")
	demoFeedbackLaksaID        = uuid.MustParse("d5000000-0000-4000-8000-000000000003")
	demoFeedbackSatayID        = uuid.MustParse("d5000000-0000-4000-8000-000000000004")
)

// SeedFeedback creates demo feedback for the completed demo orders and syncs
// the stall rating aggregates to match.
func SeedFeedback(ctx context.Context, db *mongo.Database) error {
	feedbackCollection := db.Collection("feedback")
	stallsCollection := db.Collection("stalls")

	now := time.Now()

	records := []bson.M{
		{
			"_id":         demoFeedbackChickenRice1ID,
			"customer_id": demoCustomer1ID,
			"stall_id":    demoStallChickenRiceID,
			"order_id":    demoOrderChickenRiceID,
			"rating":      5,
			"comment":     "Tender chicken, fragrant rice. Worth the queue.",
			"is_public":   true,
			"created_at":  now.Add(-80 * time.Minute),
			"updated_at":  now.Add(-80 * time.Minute),
			"created_by":  "demo-seed",
			"updated_by":  "demo-seed",
		},
		// No order reference, a walk-up review
		{
			"_id":         demoFeedbackChickenRice2ID,
			"customer_id": demoCustomer2ID,
			"stall_id":    demoStallChickenRiceID,
			"rating":      4,
			"comment":     "Good portion for the price.",
			"is_public":   true,
			"created_at":  now.Add(-70 * time.Minute),
			"updated_at":  now.Add(-70 * time.Minute),
			"created_by":  "demo-seed",
			"updated_by":  "demo-seed",
		},
		{
			"_id":         demoFeedbackLaksaID,
			"customer_id": demoCustomer2ID,
			"stall_id":    demoStallLaksaID,
			"order_id":    demoOrderLaksaID,
			"rating":      2,
			"comment":     "Otah arrived cold and the gravy was watery.",
			"is_public":   true,
			"created_at":  now.Add(-2 * time.Hour),
			"updated_at":  now.Add(-2 * time.Hour),
			"created_by":  "demo-seed",
			"updated_by":  "demo-seed",
		},
		{
			"_id":         demoFeedbackSatayID,
			"customer_id": demoCustomer3ID,
			"stall_id":    demoStallSatayID,
			"order_id":    demoOrderSatayID,
			"rating":      4,
			"comment":     "Smoky and well marinated. Peanut sauce could be thicker.",
			"is_public":   true,
			"created_at":  now.Add(-24 * time.Hour),
			"updated_at":  now.Add(-24 * time.Hour),
			"created_by":  "demo-seed",
			"updated_by":  "demo-seed",
		},
	}

	for _, record := range records {
		_, err := feedbackCollection.UpdateOne(ctx, bson.M{"_id": record["_id"]}, bson.M{"$setOnInsert": record}, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("cannot create demo feedback: %w", err)
		}
	}

	// Aggregates are normally maintained transactionally on create and delete.
	// Seeding bypasses the service so the aggregates are set here to match.
	aggregates := []struct {
		stallID uuid.UUID
		average float64
		total   int64
	}{
		{demoStallChickenRiceID, 4.5, 2},
		{demoStallLaksaID, 2.0, 1},
		{demoStallSatayID, 4.0, 1},
	}

	for _, agg := range aggregates {
		_, err := stallsCollection.UpdateOne(ctx, bson.M{"_id": agg.stallID}, bson.M{
			"$set": bson.M{
				"average_rating": agg.average,
				"total_reviews":  agg.total,
				"updated_at":     now,
				"updated_by":     "demo-seed",
			},
		})
		if err != nil {
			return fmt.Errorf("cannot sync stall aggregate: %w", err)
		}
	}

	return nil
}
