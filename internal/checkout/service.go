package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smoralesc/verdeo-backend/internal/coupons"
	"github.com/smoralesc/verdeo-backend/internal/orders"
	"github.com/smoralesc/verdeo-backend/internal/products"
	"github.com/smoralesc/verdeo-backend/internal/shipping"
	"github.com/smoralesc/verdeo-backend/pkg/db/models"
	"github.com/smoralesc/verdeo-backend/pkg/enums"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
	"github.com/smoralesc/verdeo-backend/pkg/logger"
	"github.com/smoralesc/verdeo-backend/pkg/mercadopago"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type preferenceCreator interface {
	CreatePreference(ctx context.Context, params mercadopago.PreferenceCreateParams) (*mercadopago.Preference, error)
}

// CheckoutItem is a client-submitted line: product reference and quantity
// only. Names and prices always come from the catalog.
type CheckoutItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutInput is the validated checkout payload.
type CheckoutInput struct {
	Items      []CheckoutItem
	CouponCode *string
	UserID     *uuid.UUID

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	ShippingAddress string
	ShippingCity    string
	ShippingRegion  string
	PostalCode      string
}

// CheckoutResult points the storefront at the hosted payment flow.
type CheckoutResult struct {
	OrderID       uuid.UUID `json:"order_id"`
	PreferenceID  string    `json:"preference_id"`
	InitPoint     string    `json:"init_point"`
	SubtotalCents int       `json:"subtotal_cents"`
	ShippingCents int       `json:"shipping_cents"`
	DiscountCents int       `json:"discount_cents"`
	TotalCents    int       `json:"total_cents"`
}

// URLConfig carries the storefront URLs stamped on every preference.
type URLConfig struct {
	SuccessURL      string
	PendingURL      string
	FailureURL      string
	NotificationURL string
}

// URLsFromSiteBase derives the standard back/notification URLs from the
// configured site base URL.
func URLsFromSiteBase(siteBaseURL string) URLConfig {
	base := strings.TrimRight(siteBaseURL, "/")
	return URLConfig{
		SuccessURL:      base + "/checkout/success",
		PendingURL:      base + "/checkout/pending",
		FailureURL:      base + "/checkout/failure",
		NotificationURL: base + "/api/webhooks/mercadopago",
	}
}

// Service executes checkout orchestration.
type Service interface {
	Execute(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}

type service struct {
	tx          txRunner
	orderRepo   orders.Repository
	productRepo products.Repository
	couponSvc   coupons.Service
	quoter      *shipping.Quoter
	payments    preferenceCreator
	urls        URLConfig
	logg        *logger.Logger
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	orderRepo orders.Repository,
	productRepo products.Repository,
	couponSvc coupons.Service,
	quoter *shipping.Quoter,
	payments preferenceCreator,
	urls URLConfig,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if couponSvc == nil {
		return nil, fmt.Errorf("coupons service required")
	}
	if quoter == nil {
		return nil, fmt.Errorf("shipping quoter required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:          tx,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		couponSvc:   couponSvc,
		quoter:      quoter,
		payments:    payments,
		urls:        urls,
		logg:        logg,
	}, nil
}

func (s *service) Execute(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	loaded, err := s.loadProducts(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	// Re-price every line from the catalog. Client-submitted prices never
	// reach this point: the request shape does not carry them.
	subtotal := 0
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		product := loaded[line.ProductID]
		if product.Stock < line.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
				WithDetails(map[string]any{
					"product_id": product.ID.String(),
					"available":  product.Stock,
				})
		}
		unit := product.EffectivePriceCents()
		subtotal += unit * line.Quantity
		items = append(items, models.OrderItem{
			ProductID:        product.ID,
			ProductName:      product.Name,
			Quantity:         line.Quantity,
			PriceAtTimeCents: unit,
		})
	}

	discount := 0
	var couponCode *string
	if input.CouponCode != nil && strings.TrimSpace(*input.CouponCode) != "" {
		coupon, err := s.couponSvc.Validate(ctx, *input.CouponCode, subtotal)
		if err != nil {
			return nil, err
		}
		discount = coupon.DiscountCents
		couponCode = &coupon.Code
	}

	shippingCents := s.quoter.RateCents(input.ShippingCity)
	total := subtotal + shippingCents - discount
	if total < 0 {
		total = 0
	}

	order := &models.Order{
		UserID:          input.UserID,
		Status:          enums.OrderStatusPending,
		SubtotalCents:   subtotal,
		ShippingCents:   shippingCents,
		DiscountCents:   discount,
		TotalCents:      total,
		CouponCode:      couponCode,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		ShippingAddress: input.ShippingAddress,
		ShippingCity:    input.ShippingCity,
		ShippingRegion:  input.ShippingRegion,
		PostalCode:      input.PostalCode,
		Items:           items,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.orderRepo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order")
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	pref, err := s.payments.CreatePreference(ctx, s.preferenceParams(order))
	if err != nil {
		s.logg.Error(ctx, "payment initialization failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment initialization failed")
	}

	s.logg.Info(s.logg.WithField(ctx, "preference_id", pref.ID), "checkout initiated")

	return &CheckoutResult{
		OrderID:       order.ID,
		PreferenceID:  pref.ID,
		InitPoint:     pref.InitPoint,
		SubtotalCents: subtotal,
		ShippingCents: shippingCents,
		DiscountCents: discount,
		TotalCents:    total,
	}, nil
}

func validateInput(input CheckoutInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout requires at least one item")
	}
	for _, line := range input.Items {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}
	if strings.TrimSpace(input.ShippingCity) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping city required")
	}
	return nil
}

func (s *service) loadProducts(ctx context.Context, lines []CheckoutItem) (map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if seen[line.ProductID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in checkout").
				WithDetails(map[string]any{"product_id": line.ProductID.String()})
		}
		seen[line.ProductID] = true
		ids = append(ids, line.ProductID)
	}

	found, err := s.productRepo.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading products")
	}

	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, product := range found {
		byID[product.ID] = product
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": id.String()})
		}
	}
	return byID, nil
}

// preferenceParams maps the order to provider items: one line per product, a
// shipping line, and a synthetic negative line for the discount. The
// preference total always equals the order total.
func (s *service) preferenceParams(order *models.Order) mercadopago.PreferenceCreateParams {
	items := make([]mercadopago.PreferenceItem, 0, len(order.Items)+2)
	for _, item := range order.Items {
		items = append(items, mercadopago.PreferenceItem{
			ID:             item.ProductID.String(),
			Title:          item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.PriceAtTimeCents,
		})
	}
	if order.ShippingCents > 0 {
		items = append(items, mercadopago.PreferenceItem{
			ID:             "shipping",
			Title:          "Envio",
			Quantity:       1,
			UnitPriceCents: order.ShippingCents,
		})
	}
	if order.DiscountCents > 0 && order.CouponCode != nil {
		items = append(items, mercadopago.PreferenceItem{
			ID:             "discount",
			Title:          fmt.Sprintf("Descuento %s", *order.CouponCode),
			Quantity:       1,
			UnitPriceCents: -order.DiscountCents,
		})
	}

	return mercadopago.PreferenceCreateParams{
		Items: items,
		Payer: mercadopago.PreferencePayer{
			Name:  order.CustomerName,
			Email: order.CustomerEmail,
		},
		ExternalReference: order.ID.String(),
		BackURLs: mercadopago.BackURLs{
			Success: s.urls.SuccessURL,
			Pending: s.urls.PendingURL,
			Failure: s.urls.FailureURL,
		},
		NotificationURL: s.urls.NotificationURL,
		AutoReturn:      "approved",
	}
}
