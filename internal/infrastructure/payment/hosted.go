// Package payment adapts a hosted-checkout payment provider.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "Payment-Signature"

// HostedCheckout hands clients a provider-hosted payment page and verifies
// the provider's signed completion webhooks.
type HostedCheckout struct {
	checkoutURL string
	secret      []byte
	currency    string
	now         func() time.Time
}

func NewHostedCheckout(checkoutURL, webhookSecret, currency string) *HostedCheckout {
	return &HostedCheckout{
		checkoutURL: strings.TrimRight(checkoutURL, "/"),
		secret:      []byte(webhookSecret),
		currency:    strings.ToLower(currency),
		now:         time.Now,
	}
}

func (g *HostedCheckout) CreateCheckoutSession(_ context.Context, req ports.CheckoutRequest) (*domain.CheckoutSession, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("payment: checkout has no items")
	}
	var amount int64
	for _, it := range req.Items {
		if it.Amount <= 0 || it.Quantity <= 0 {
			return nil, fmt.Errorf("payment: invalid line item %q", it.Name)
		}
		amount += it.Amount * int64(it.Quantity)
	}

	id := "cs_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return &domain.CheckoutSession{
		ID:            id,
		URL:           g.checkoutURL + "/" + id,
		TourID:        req.ClientReferenceID,
		CustomerEmail: req.CustomerEmail,
		Amount:        amount,
		Currency:      g.currency,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		CreatedAt:     g.now().UTC(),
	}, nil
}

type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		SessionID string `json:"sessionId"`
	} `json:"data"`
}

// ParseWebhook authenticates payload against signature before decoding it.
func (g *HostedCheckout) ParseWebhook(payload []byte, signature string) (*ports.PaymentEvent, error) {
	if len(g.secret) == 0 || !hmac.Equal([]byte(Sign(g.secret, payload)), []byte(strings.ToLower(signature))) {
		return nil, domain.ErrInvalidWebhookSignature
	}

	var body webhookBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, domain.NewValidationError("malformed webhook payload")
	}
	if body.Type == "" || body.Data.SessionID == "" {
		return nil, domain.NewValidationError("webhook payload is missing type or session id")
	}
	return &ports.PaymentEvent{Type: body.Type, SessionID: body.Data.SessionID}, nil
}

// Sign returns the hex HMAC-SHA256 of payload under secret.
func Sign(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
