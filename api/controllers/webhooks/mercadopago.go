package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/smoralesc/verdeo-backend/api/responses"
	mpwebhook "github.com/smoralesc/verdeo-backend/internal/webhooks/mercadopago"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
	"github.com/smoralesc/verdeo-backend/pkg/logger"
)

const maxNotificationBytes = 1 << 20

// NotificationProcessor reconciles one provider notification.
type NotificationProcessor interface {
	Process(ctx context.Context, notification mpwebhook.Notification) (mpwebhook.Outcome, error)
}

// notificationBody is the JSON shape Mercado Pago posts. Older topics carry
// the id in query params instead, so every field is optional here.
type notificationBody struct {
	Type   string `json:"type"`
	Topic  string `json:"topic"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
	ID json.Number `json:"id"`
}

// MercadoPago receives payment notifications. The provider retries anything
// that is not a 2xx, so normal processing always answers 200 even when the
// event is ignored.
func MercadoPago(svc NotificationProcessor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBytes))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		notification := resolveNotification(r, payload)

		outcome, err := svc.Process(ctx, notification)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"topic":   notification.Topic,
				"outcome": string(outcome),
			}), "notification processed")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}
}

// resolveNotification merges the query-param and JSON-body notification
// shapes; query params win when both are present.
func resolveNotification(r *http.Request, payload []byte) mpwebhook.Notification {
	query := r.URL.Query()

	topic := strings.TrimSpace(query.Get("topic"))
	if topic == "" {
		topic = strings.TrimSpace(query.Get("type"))
	}
	dataID := strings.TrimSpace(query.Get("data.id"))
	if dataID == "" {
		dataID = strings.TrimSpace(query.Get("id"))
	}

	if (topic == "" || dataID == "") && len(payload) > 0 {
		var body notificationBody
		if err := json.Unmarshal(payload, &body); err == nil {
			if topic == "" {
				topic = strings.TrimSpace(body.Type)
			}
			if topic == "" {
				topic = strings.TrimSpace(body.Topic)
			}
			if dataID == "" {
				dataID = strings.TrimSpace(body.Data.ID)
			}
			if dataID == "" {
				dataID = strings.TrimSpace(body.ID.String())
			}
		}
	}

	return mpwebhook.Notification{
		Topic:           topic,
		DataID:          dataID,
		RequestID:       r.Header.Get("x-request-id"),
		SignatureHeader: r.Header.Get("x-signature"),
	}
}
