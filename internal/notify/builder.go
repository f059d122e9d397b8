package notify

import (
	"fmt"
	"strings"

	"github.com/brooklynnepley/brookskitchen-backend/pkg/formrelay"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/money"
)

// EmailConfig carries the shop-owner identity stamped into every order email.
type EmailConfig struct {
	OwnerEmail string
	OwnerName  string
	OwnerPhone string
	SiteHost   string
}

const deliveryTextPickup = "Pickup (FREE)"

func deliveryOptionText(order Order) string {
	if order.DeliveryOption == DeliveryOptionDelivery {
		return fmt.Sprintf("Local Delivery (%s)", feeText(order.DeliveryFeeCents))
	}
	return deliveryTextPickup
}

// feeText renders whole-dollar fees without cents ("$5"), matching the site
// copy, and falls back to standard formatting otherwise ("$7.50").
func feeText(feeCents int64) string {
	fee := money.FromMinorUnits(feeCents)
	if fee.IsInteger() {
		return "$" + fee.String()
	}
	return money.FormatUSD(fee)
}

func formatOrderItems(items []OrderItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("• %s (%s) - Qty: %d - %s",
			item.Name, item.PackSize, item.Quantity, money.FormatUSD(item.LineTotal())))
	}
	return strings.Join(lines, "\n")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// BuildOwnerEmail composes the new-order notification sent to the shop owner.
func BuildOwnerEmail(order Order, cfg EmailConfig) formrelay.OrderEmailPayload {
	itemsText := formatOrderItems(order.Items)
	deliveryText := deliveryOptionText(order)

	instructionsLine := ""
	if strings.TrimSpace(order.SpecialInstructions) != "" {
		instructionsLine = fmt.Sprintf("SPECIAL INSTRUCTIONS: %s\n", order.SpecialInstructions)
	}

	body := fmt.Sprintf(`Hi %s!

You have a new order from %s! 🎉

CUSTOMER DETAILS:
• Name: %s
• Email: %s
• Phone: %s
• Address: %s

DELIVERY OPTION: %s
%s
ORDER DETAILS:
%s

PRICING:
• Subtotal: %s
• Delivery Fee: %s
• TOTAL: %s

Order placed on %s at %s

Thank you for your business! 💕

---
This order was placed through your website at %s`,
		cfg.OwnerName,
		order.CustomerName,
		order.CustomerName,
		order.CustomerEmail,
		orDefault(order.CustomerPhone, "Not provided"),
		orDefault(order.CustomerAddress, "Not provided"),
		deliveryText,
		instructionsLine,
		itemsText,
		money.FormatUSD(money.FromMinorUnits(order.SubtotalCents)),
		money.FormatUSD(money.FromMinorUnits(order.DeliveryFeeCents)),
		money.FormatUSD(money.FromMinorUnits(order.TotalCents)),
		order.PlacedAt.Format("1/2/2006"),
		order.PlacedAt.Format("3:04:05 PM"),
		cfg.SiteHost,
	)

	return formrelay.OrderEmailPayload{
		To:                  cfg.OwnerEmail,
		Subject:             fmt.Sprintf("New Order from %s - Brook's Kitchen", order.CustomerName),
		Body:                body,
		CustomerName:        order.CustomerName,
		CustomerEmail:       order.CustomerEmail,
		CustomerPhone:       order.CustomerPhone,
		CustomerAddress:     order.CustomerAddress,
		DeliveryOption:      deliveryText,
		SpecialInstructions: orDefault(order.SpecialInstructions, "None"),
		OrderItems:          itemsText,
		Subtotal:            money.FromMinorUnits(order.SubtotalCents).StringFixed(2),
		DeliveryFee:         money.FromMinorUnits(order.DeliveryFeeCents).StringFixed(2),
		Total:               money.FromMinorUnits(order.TotalCents).StringFixed(2),
		OrderDate:           order.PlacedAt.Format("1/2/2006"),
		OrderTime:           order.PlacedAt.Format("3:04:05 PM"),
	}
}

// BuildCustomerReceipt composes the confirmation receipt sent to the buyer.
func BuildCustomerReceipt(order Order, cfg EmailConfig) formrelay.OrderEmailPayload {
	itemsText := formatOrderItems(order.Items)
	deliveryText := deliveryOptionText(order)

	instructionsLine := ""
	if strings.TrimSpace(order.SpecialInstructions) != "" {
		instructionsLine = fmt.Sprintf("SPECIAL INSTRUCTIONS: %s\n", order.SpecialInstructions)
	}

	contactLines := fmt.Sprintf("• Email: %s", cfg.OwnerEmail)
	if strings.TrimSpace(cfg.OwnerPhone) != "" {
		contactLines += fmt.Sprintf("\n• Phone: %s", cfg.OwnerPhone)
	}

	body := fmt.Sprintf(`Hi %s!

Thank you for your order with Brook's Kitchen! 🎉

ORDER CONFIRMATION:
Order #%s
Date: %s
Time: %s

YOUR ORDER:
%s

DELIVERY OPTION: %s
%s
ORDER SUMMARY:
• Subtotal: %s
• Delivery Fee: %s
• TOTAL: %s

NEXT STEPS:
%s will contact you within 24 hours to confirm your order and arrange delivery/pickup details.

CONTACT INFO:
%s

Thank you for choosing Brook's Kitchen! We can't wait to share our delicious treats with you! 💕

---
Brook's Kitchen
Handmade with love and the finest ingredients`,
		order.CustomerName,
		order.Number(),
		order.PlacedAt.Format("1/2/2006"),
		order.PlacedAt.Format("3:04:05 PM"),
		itemsText,
		deliveryText,
		instructionsLine,
		money.FormatUSD(money.FromMinorUnits(order.SubtotalCents)),
		money.FormatUSD(money.FromMinorUnits(order.DeliveryFeeCents)),
		money.FormatUSD(money.FromMinorUnits(order.TotalCents)),
		cfg.OwnerName,
		contactLines,
	)

	return formrelay.OrderEmailPayload{
		To:                  order.CustomerEmail,
		Subject:             "Order Confirmation - Brook's Kitchen",
		Body:                body,
		CustomerName:        order.CustomerName,
		CustomerEmail:       order.CustomerEmail,
		DeliveryOption:      deliveryText,
		SpecialInstructions: orDefault(order.SpecialInstructions, "None"),
		OrderItems:          itemsText,
		Subtotal:            money.FromMinorUnits(order.SubtotalCents).StringFixed(2),
		DeliveryFee:         money.FromMinorUnits(order.DeliveryFeeCents).StringFixed(2),
		Total:               money.FromMinorUnits(order.TotalCents).StringFixed(2),
		OrderDate:           order.PlacedAt.Format("1/2/2006"),
		OrderTime:           order.PlacedAt.Format("3:04:05 PM"),
	}
}
