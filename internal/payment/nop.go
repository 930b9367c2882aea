package payment

import "context"

// NopGateway stands in when no gateway credentials are configured (local
// development). Checkouts resolve to a placeholder URL; confirmation still
// flows through the webhook as usual.
type NopGateway struct{}

func NewNopGateway() *NopGateway {
	return &NopGateway{}
}

func (g *NopGateway) CreateCheckout(ctx context.Context, in CheckoutInput) (*Checkout, error) {
	return &Checkout{
		PreferenceID: "nop-" + in.ExternalRef,
		RedirectURL:  "about:blank",
		ExternalRef:  in.ExternalRef,
	}, nil
}

var _ Gateway = (*NopGateway)(nil)
