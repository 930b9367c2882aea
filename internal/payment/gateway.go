// Package payment isolates the checkout provider behind a narrow gateway
// interface. The booking engine only ever sees "create a checkout, get a
// redirect URL"; confirmation arrives later through the webhook handler.
package payment

import "context"

type CheckoutInput struct {
	BookingID    uint
	ExternalRef  string
	ProviderName string
	Amount       float64
	Date         string
	Time         string
	Method       string
	CaseID       *uint
}

type Checkout struct {
	PreferenceID string `json:"preference_id"`
	RedirectURL  string `json:"redirect_url"`
	ExternalRef  string `json:"external_ref"`
}

type Gateway interface {
	CreateCheckout(ctx context.Context, in CheckoutInput) (*Checkout, error)
}
