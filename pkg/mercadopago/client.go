package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smoralesc/verdeo-backend/pkg/config"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
	"github.com/smoralesc/verdeo-backend/pkg/logger"
)

const (
	preferencesPath = "/checkout/preferences"
	paymentsPath    = "/v1/payments"
)

var (
	errAccessTokenRequired = errors.New("mercado pago access token is required")
	errLoggerRequired      = errors.New("mercado pago logger is required")
)

// Client exposes Mercado Pago primitives with centralized auth, logging,
// idempotency, and error mapping.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	accessToken   string
	webhookSecret string
	currencyID    string
	logger        *logger.Logger
}

// NewClient initializes the Mercado Pago wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.MercadoPagoConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		return nil, errAccessTokenRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		accessToken:   accessToken,
		webhookSecret: strings.TrimSpace(cfg.WebhookSecret),
		currencyID:    cfg.CurrencyID,
		logger:        logg,
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"sandbox": cfg.IsTest(),
	}), "mercado pago client initialized")
	return c, nil
}

// SigningSecret returns the configured webhook secret, empty when signature
// verification is not set up.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// CurrencyID reports the currency preferences are created in.
func (c *Client) CurrencyID() string {
	if c == nil {
		return ""
	}
	return c.currencyID
}

// CreatePreference opens a hosted checkout session for the given order lines.
func (c *Client) CreatePreference(ctx context.Context, params PreferenceCreateParams) (*Preference, error) {
	if len(params.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "preference requires at least one item")
	}

	c.log(ctx, "request", "create_preference", map[string]any{
		"external_reference": params.ExternalReference,
		"item_count":         len(params.Items),
	})

	var pref Preference
	err := c.do(ctx, http.MethodPost, preferencesPath, params.toWireRequest(c.currencyID), &pref)
	if err != nil {
		c.log(ctx, "error", "create_preference", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_preference", map[string]any{
		"preference_id": pref.ID,
	})
	return &pref, nil
}

// GetPayment fetches the provider's payment record by its numeric id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}

	c.log(ctx, "request", "get_payment", map[string]any{"payment_id": paymentID})

	var payment Payment
	err := c.do(ctx, http.MethodGet, paymentsPath+"/"+paymentID, nil, &payment)
	if err != nil {
		c.log(ctx, "error", "get_payment", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "get_payment", map[string]any{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
	return &payment, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding mercado pago request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building mercado pago request")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling mercado pago")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading mercado pago response")
	}

	if resp.StatusCode >= 400 {
		return c.mapAPIError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding mercado pago response")
		}
	}
	return nil
}

type apiErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}

func (c *Client) mapAPIError(status int, raw []byte) error {
	code := domainCodeForStatus(status)
	message := fmt.Sprintf("mercado pago returned %d", status)

	var body apiErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		message = body.Message
	}
	return pkgerrors.Wrap(code, fmt.Errorf("mercado pago status %d: %s", status, message), "mercado pago request failed")
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("mercado pago %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("mercado pago %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "email", "phone", "card"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
