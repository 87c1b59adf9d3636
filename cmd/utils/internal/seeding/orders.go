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
	demoOrderChickenRiceID = uuid.MustParse("d4000000-0000-4000-8000-000000000001")
	demoOrderLaksaID       = uuid.MustParse("d4000000-0000-4000-8000-000000000002")
	demoOrderSatayID       = uuid.MustParse("d4000000-0000-4000-8000-000000000003")
	demoOrderPendingID     = uuid.MustParse("d4000000-0000-4000-8000-000000000004")
	demoOrderPreparingID   = uuid.MustParse("d4000000-0000-4000-8000-000000000005")
	demoOrderCancelledID   = uuid.MustParse("d4000000-0000-4000-8000-000000000006")
)

// SeedOrders creates demo orders across the stalls with a realistic spread of statuses
func SeedOrders(ctx context.Context, db *mongo.Database) error {
	ordersCollection := db.Collection("orders")

	now := time.Now()

	orders := []bson.M{
		// Completed orders, these back the demo feedback
		{
			"_id":         demoOrderChickenRiceID,
			"customer_id": demoCustomer1ID,
			"stall_id":    demoStallChickenRiceID,
			"stall_name":  "Ah Hock Chicken Rice",
			"items": []bson.M{
				{"name": "Roasted Chicken Rice", "quantity": 2, "price_cents": int64(450)},
				{"name": "Iced Barley", "quantity": 2, "price_cents": int64(160)},
			},
			"total_cents": int64(1220),
			"currency":    "sgd",
			"status":      "completed",
			"payment_ref": "pi_demo_chicken_rice",
			"created_at":  now.Add(-2 * time.Hour),
			"updated_at":  now.Add(-90 * time.Minute),
			"created_by":  "demo-seed",
			"updated_by":  "demo-seed",
		},
		{
			"_id":         demoOrderLaksaID,
			"customer_id": demoCustomer2ID,
			"stall_id":    demoStallLaksaID,
			"stall_name":  "Tiong Bahru Laksa",
			"items": []bson.M{
				{"name": "Laksa", "quantity": 1, "price_cents": int64(550), "notes": "Less spicy"},
				{"name": "Otah", "quantity": 2, "price_cents": int64(180)},
			},
			"total_cents": int64(910),
			"currency":    "sgd",
			"status":      "completed",
			"payment_ref": "pi_demo_laksa",
			"created_at":  now.Add(-3 * time.Hour),
			"updated_at":  now.Add(-150 * time.Minute),
			"created_by":  "demo-seed",
			"updated_by":  "demo-seed",
		},
		{
			"_id":         demoOrderSatayID,
			"customer_id": demoCustomer3ID,
			"stall_id":    demoStallSatayID,
			"stall_name":  "Satay Corner",
			"items": []bson.M{
				{"name": "Chicken Satay (10 sticks)", "quantity": 1, "price_cents": int64(800)},
				{"name": "Ketupat", "quantity": 2, "price_cents": int64(100)},
			},
			"total_cents": int64(1000),
			"currency":    "sgd",
			"status":      "completed",
			"payment_ref": "pi_demo_satay",
			"created_at":  now.Add(-26 * time.Hour),
			"updated_at":  now.Add(-25 * time.Hour),
			"created_by":  "demo-seed",
			"updated_by":  "demo-seed",
		},
		// In-flight orders
		{
			"_id":         demoOrderPendingID,
			"customer_id": demoCustomer1ID,
			"stall_id":    demoStallLaksaID,
			"stall_name":  "Tiong Bahru Laksa",
			"items": []bson.M{
				{"name": "Laksa", "quantity": 2, "price_cents": int64(550)},
			},
			"total_cents": int64(1100),
			"currency":    "sgd",
			"status":      "pending",
			"payment_ref": "pi_demo_pending",
			"created_at":  now.Add(-5 * time.Minute),
			"updated_at":  now.Add(-5 * time.Minute),
			"created_by":  "demo-seed",
			"updated_by":  "demo-seed",
		},
		{
			"_id":         demoOrderPreparingID,
			"customer_id": demoCustomer2ID,
			"stall_id":    demoStallChickenRiceID,
			"stall_name":  "Ah Hock Chicken Rice",
			"items": []bson.M{
				{"name": "Steamed Chicken Rice", "quantity": 1, "price_cents": int64(450)},
				{"name": "Extra Chicken", "quantity": 1, "price_cents": int64(300)},
			},
			"total_cents": int64(750),
			"currency":    "sgd",
			"status":      "preparing",
			"payment_ref": "pi_demo_preparing",
			"created_at":  now.Add(-20 * time.Minute),
			"updated_at":  now.Add(-12 * time.Minute),
			"created_by":  "demo-seed",
			"updated_by":  "demo-seed",
		},
		{
			"_id":         demoOrderCancelledID,
			"customer_id": demoCustomer3ID,
			"stall_id":    demoStallChickenRiceID,
			"stall_name":  "Ah Hock Chicken Rice",
			"items": []bson.M{
				{"name": "Roasted Chicken Rice", "quantity": 1, "price_cents": int64(450)},
			},
			"total_cents": int64(450),
			"currency":    "sgd",
			"status":      "cancelled",
			"payment_ref": "pi_demo_cancelled",
			"created_at":  now.Add(-50 * time.Minute),
			"updated_at":  now.Add(-45 * time.Minute),
			"created_by":  "demo-seed",
			"updated_by":  "demo-seed",
		},
	}

	for _, order := range orders {
		_, err := ordersCollection.UpdateOne(ctx, bson.M{"_id": order["_id"]}, bson.M{"$setOnInsert": order}, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("cannot create demo order: %w", err)
		}
	}

	return nil
}
