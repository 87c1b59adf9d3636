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

// Fixed IDs so orders and feedback can reference the marketplace without lookups
// and so repeated runs stay idempotent.
var (
	demoCentreID = uuid.MustParse("d1000000-0000-4000-8000-000000000001")

	demoOperator1ID = uuid.MustParse("d1000000-0000-4000-8000-000000000010")
	demoOperator2ID = uuid.MustParse("d1000000-0000-4000-8000-000000000011")

	demoStallChickenRiceID = uuid.MustParse("d2000000-0000-4000-8000-000000000001")
	demoStallLaksaID       = uuid.MustParse("d2000000-0000-4000-8000-000000000002")
	demoStallSatayID       = uuid.MustParse("d2000000-0000-4000-8000-000000000003")

	demoVendor1ID = uuid.MustParse("d2000000-0000-4000-8000-000000000010")
	demoVendor2ID = uuid.MustParse("d2000000-0000-4000-8000-000000000011")
	demoVendor3ID = uuid.MustParse("d2000000-0000-4000-8000-000000000012")

	demoCustomer1ID = uuid.MustParse("d3000000-0000-4000-8000-000000000001")
	demoCustomer2ID = uuid.MustParse("d3000000-0000-4000-8000-000000000002")
	demoCustomer3ID = uuid.MustParse("d3000000-0000-4000-8000-000000000003")
)

// SeedMarketplace creates a demo hawker centre and its stalls
func SeedMarketplace(ctx context.Context, db *mongo.Database) error {
	centresCollection := db.Collection("centres")
	stallsCollection := db.Collection("stalls")

	now := time.Now()

	centre := bson.M{
		"_id":          demoCentreID,
		"name":         "Maxwell Food Centre",
		"operator_ids": []uuid.UUID{demoOperator1ID, demoOperator2ID},
		"created_at":   now,
		"updated_at":   now,
		"created_by":   "demo-seed",
		"updated_by":   "demo-seed",
	}

	_, err := centresCollection.UpdateOne(ctx, bson.M{"_id": demoCentreID}, bson.M{"$setOnInsert": centre}, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("cannot create demo centre: %w", err)
	}

	stalls := []bson.M{
		{
			"_id":            demoStallChickenRiceID,
			"name":           "Ah Hock Chicken Rice",
			"centre_id":      demoCentreID,
			"vendor_id":      demoVendor1ID,
			"average_rating": 0.0,
			"total_reviews":  int64(0),
			"created_at":     now,
			"updated_at":     now,
			"created_by":     "demo-seed",
			"updated_by":     "demo-seed",
		},
		{
			"_id":            demoStallLaksaID,
			"name":           "Tiong Bahru Laksa",
			"centre_id":      demoCentreID,
			"vendor_id":      demoVendor2ID,
			"average_rating": 0.0,
			"total_reviews":  int64(0),
			"created_at":     now,
			"updated_at":     now,
			"created_by":     "demo-seed",
			"updated_by":     "demo-seed",
		},
		{
			"_id":            demoStallSatayID,
			"name":           "Satay Corner",
			"centre_id":      demoCentreID,
			"vendor_id":      demoVendor3ID,
			"average_rating": 0.0,
			"total_reviews":  int64(0),
			"created_at":     now,
			"updated_at":     now,
			"created_by":     "demo-seed",
			"updated_by":     "demo-seed",
		},
	}

	for _, stall := range stalls {
		_, err = stallsCollection.UpdateOne(ctx, bson.M{"_id": stall["_id"]}, bson.M{"$setOnInsert": stall}, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("cannot create demo stall: %w", err)
		}
	}

	return nil
}
