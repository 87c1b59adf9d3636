package order

import (
	"fmt"

	"github.com/hawkrclub/hawkr/pkg"
	"github.com/hawkrclub/hawkr/pkg/enums/orderstatus"
)

// Notification types keyed by order status.
var notificationTypes = map[string]string{
	orderstatus.Statuses.Confirmed.Name: "order_confirmed",
	orderstatus.Statuses.Preparing.Name: "order_preparing",
	orderstatus.Statuses.Ready.Name:     "order_ready",
	orderstatus.Statuses.Completed.Name: "order_complete",
	orderstatus.Statuses.Cancelled.Name: "order_cancelled",
}

type inAppTemplate struct {
	title   string
	message func(s pkg.OrderSnapshot) string
}

// Every trigger-relevant status has an in-app template; the in-app write
// is the minimum delivery guarantee.
var inAppTemplates = map[string]inAppTemplate{
	orderstatus.Statuses.Confirmed.Name: {
		title: "Order Confirmed",
		message: func(s pkg.OrderSnapshot) string {
			return fmt.Sprintf("%s has accepted your order.", stallName(s))
		},
	},
	orderstatus.Statuses.Preparing.Name: {
		title: "Order Being Prepared",
		message: func(s pkg.OrderSnapshot) string {
			return fmt.Sprintf("%s has started preparing your order.", stallName(s))
		},
	},
	orderstatus.Statuses.Ready.Name: {
		title: "Order Ready for Collection",
		message: func(s pkg.OrderSnapshot) string {
			return fmt.Sprintf("Your order at %s is ready. Please collect it at the counter.", stallName(s))
		},
	},
	orderstatus.Statuses.Completed.Name: {
		title: "Order Completed",
		message: func(s pkg.OrderSnapshot) string {
			return fmt.Sprintf("Thanks for ordering from %s. Enjoy your meal!", stallName(s))
		},
	},
	orderstatus.Statuses.Cancelled.Name: {
		title: "Order Cancelled",
		message: func(s pkg.OrderSnapshot) string {
			return fmt.Sprintf("Your order at %s has been cancelled.", stallName(s))
		},
	},
}

// Chat templates cover a subset of statuses; a status without one skips
// the chat step entirely. Completed ships without a chat template.
var chatTemplates = map[string]func(s pkg.OrderSnapshot) string{
	orderstatus.Statuses.Confirmed.Name: func(s pkg.OrderSnapshot) string {
		return fmt.Sprintf("✅ %s accepted your order.", stallName(s))
	},
	orderstatus.Statuses.Preparing.Name: func(s pkg.OrderSnapshot) string {
		return fmt.Sprintf("🍳 %s is preparing your order.", stallName(s))
	},
	orderstatus.Statuses.Ready.Name: func(s pkg.OrderSnapshot) string {
		return fmt.Sprintf("🔔 Your order at %s is ready for collection!", stallName(s))
	},
	orderstatus.Statuses.Cancelled.Name: func(s pkg.OrderSnapshot) string {
		return fmt.Sprintf("❌ Your order at %s was cancelled.", stallName(s))
	},
}

func stallName(s pkg.OrderSnapshot) string {
	if s.StallName != "" {
		return s.StallName
	}
	return "the stall"
}
