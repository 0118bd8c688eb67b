package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/smoralesc/verdeo-backend/pkg/db/models"
	"github.com/smoralesc/verdeo-backend/pkg/enums"
)

// OrderItemDTO is a purchased line as returned to clients.
type OrderItemDTO struct {
	ProductID        uuid.UUID `json:"product_id"`
	ProductName      string    `json:"product_name"`
	Quantity         int       `json:"quantity"`
	PriceAtTimeCents int       `json:"price_at_time_cents"`
}

// OrderDTO is the client-facing order representation.
type OrderDTO struct {
	ID             uuid.UUID         `json:"id"`
	Status         enums.OrderStatus `json:"status"`
	SubtotalCents  int               `json:"subtotal_cents"`
	ShippingCents  int               `json:"shipping_cents"`
	DiscountCents  int               `json:"discount_cents"`
	TotalCents     int               `json:"total_cents"`
	CouponCode     *string           `json:"coupon_code,omitempty"`
	CustomerName   string            `json:"customer_name"`
	CustomerEmail  string            `json:"customer_email"`
	ShippingCity   string            `json:"shipping_city"`
	PaymentID      *string           `json:"payment_id,omitempty"`
	PaidAt         *time.Time        `json:"paid_at,omitempty"`
	Carrier        *string           `json:"carrier,omitempty"`
	TrackingNumber *string           `json:"tracking_number,omitempty"`
	Items          []OrderItemDTO    `json:"items"`
	CreatedAt      time.Time         `json:"created_at"`
}

// ListResult pages admin order listings.
type ListResult struct {
	Orders []OrderDTO `json:"orders"`
	Total  int64      `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

func toDTO(order models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			PriceAtTimeCents: item.PriceAtTimeCents,
		})
	}
	return OrderDTO{
		ID:             order.ID,
		Status:         order.Status,
		SubtotalCents:  order.SubtotalCents,
		ShippingCents:  order.ShippingCents,
		DiscountCents:  order.DiscountCents,
		TotalCents:     order.TotalCents,
		CouponCode:     order.CouponCode,
		CustomerName:   order.CustomerName,
		CustomerEmail:  order.CustomerEmail,
		ShippingCity:   order.ShippingCity,
		PaymentID:      order.PaymentID,
		PaidAt:         order.PaidAt,
		Carrier:        order.Carrier,
		TrackingNumber: order.TrackingNumber,
		Items:          items,
		CreatedAt:      order.CreatedAt,
	}
}
