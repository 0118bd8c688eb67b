package mercadopago

import (
	"github.com/shopspring/decimal"
)

// PreferenceItem is a single line on a checkout preference. UnitPriceCents is
// converted to the provider's decimal amount on the wire.
type PreferenceItem struct {
	ID             string
	Title          string
	Description    string
	Quantity       int
	UnitPriceCents int
}

// BackURLs are the storefront pages the provider redirects the buyer to after
// the payment attempt.
type BackURLs struct {
	Success string `json:"success,omitempty"`
	Pending string `json:"pending,omitempty"`
	Failure string `json:"failure,omitempty"`
}

// PreferencePayer pre-fills the provider checkout with the buyer's contact.
type PreferencePayer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// PreferenceCreateParams carries everything needed to open a hosted checkout.
type PreferenceCreateParams struct {
	Items             []PreferenceItem
	Payer             PreferencePayer
	ExternalReference string
	BackURLs          BackURLs
	NotificationURL   string
	AutoReturn        string
	StatementDescriptor string
}

// Preference is the provider's created checkout session.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
	ExternalReference string `json:"external_reference"`
}

// Payment is the provider's record of a payment attempt, fetched during
// reconciliation.
type Payment struct {
	ID                int64           `json:"id"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	CurrencyID        string          `json:"currency_id"`
	PaymentMethodID   string          `json:"payment_method_id"`
	PaymentTypeID     string          `json:"payment_type_id"`
	DateApproved      string          `json:"date_approved"`
	Payer             PaymentPayer    `json:"payer"`
}

// PaymentPayer identifies who paid.
type PaymentPayer struct {
	Email string `json:"email"`
}

// AmountCents converts the provider's decimal amount back to integer cents.
func (p Payment) AmountCents() int {
	return int(p.TransactionAmount.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

type wireItem struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	CurrencyID  string          `json:"currency_id"`
}

type wirePreferenceRequest struct {
	Items               []wireItem      `json:"items"`
	Payer               *PreferencePayer `json:"payer,omitempty"`
	ExternalReference   string          `json:"external_reference"`
	BackURLs            *BackURLs       `json:"back_urls,omitempty"`
	NotificationURL     string          `json:"notification_url,omitempty"`
	AutoReturn          string          `json:"auto_return,omitempty"`
	StatementDescriptor string          `json:"statement_descriptor,omitempty"`
}

func (p PreferenceCreateParams) toWireRequest(currencyID string) wirePreferenceRequest {
	items := make([]wireItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, wireItem{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   centsToAmount(item.UnitPriceCents),
			CurrencyID:  currencyID,
		})
	}
	req := wirePreferenceRequest{
		Items:               items,
		ExternalReference:   p.ExternalReference,
		NotificationURL:     p.NotificationURL,
		AutoReturn:          p.AutoReturn,
		StatementDescriptor: p.StatementDescriptor,
	}
	if p.Payer.Email != "" || p.Payer.Name != "" {
		payer := p.Payer
		req.Payer = &payer
	}
	if p.BackURLs != (BackURLs{}) {
		backURLs := p.BackURLs
		req.BackURLs = &backURLs
	}
	return req
}

// centsToAmount renders integer cents as the provider's decimal units.
func centsToAmount(cents int) decimal.Decimal {
	return decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(100))
}
