package payment

import (
	"context"
	"fmt"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"
)

// MercadoPagoGateway creates checkout preferences; the buyer is redirected to
// the returned init point and the outcome comes back on the webhook.
type MercadoPagoGateway struct {
	client     preference.Client
	webhookURL string
}

func NewMercadoPagoGateway(accessToken, webhookURL string) (*MercadoPagoGateway, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &MercadoPagoGateway{
		client:     preference.NewClient(cfg),
		webhookURL: webhookURL,
	}, nil
}

func (g *MercadoPagoGateway) CreateCheckout(
	ctx context.Context,
	in CheckoutInput,
) (*Checkout, error) {

	req := preference.Request{
		Items: []preference.ItemRequest{
			{
				Title:       fmt.Sprintf("Consulta com %s", in.ProviderName),
				Description: fmt.Sprintf("%s %s", in.Date, in.Time),
				Quantity:    1,
				UnitPrice:   in.Amount,
			},
		},
		ExternalReference: in.ExternalRef,
		NotificationURL:   g.webhookURL,
	}

	resp, err := g.client.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}

	return &Checkout{
		PreferenceID: resp.ID,
		RedirectURL:  resp.InitPoint,
		ExternalRef:  in.ExternalRef,
	}, nil
}

// Compile-time check
var _ Gateway = (*MercadoPagoGateway)(nil)
