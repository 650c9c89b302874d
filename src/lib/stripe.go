package lib

import (
	"context"
	"fmt"
	"os"
	"time"

	"bookingapp/src/config"
	"bookingapp/src/types"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// Stripe calls are the only network-bound operations in the booking flow,
// so every one of them is bounded by this timeout.
const stripeCallTimeout = 10 * time.Second

// StripeGateway opens and inspects hosted Checkout Sessions. It satisfies
// the payment gateway interface consumed by the payment service.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) CreateSession(ctx context.Context, amount float64, productName string) (*types.CheckoutSession, error) {
	sc := GetStripeClient()
	ctx, cancel := context.WithTimeout(ctx, stripeCallTimeout)
	defer cancel()

	base := config.GetBaseURL()
	successURL := fmt.Sprintf("%s%s?session_id=%s", base, config.PAYMENT_SUCCESS_PATH, config.STRIPE_CHECKOUT_SESSION_ID)
	cancelURL := fmt.Sprintf("%s%s?session_id=%s", base, config.PAYMENT_CANCEL_PATH, config.STRIPE_CHECKOUT_SESSION_ID)

	params := stripe.CheckoutSessionCreateParams{
		Mode:       stripe.String("payment"),
		UIMode:     stripe.String("hosted"),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		PaymentMethodTypes: []*string{
			stripe.String("card"),
		},
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(config.PAYMENT_CURRENCY),
					UnitAmount: stripe.Int64(int64(amount * config.CENTS_MULTIPLIER)),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(productName),
					},
				},
			},
		},
	}
	checkoutSession, err := sc.V1CheckoutSessions.Create(ctx, &params)
	if err != nil {
		return nil, err
	}
	return &types.CheckoutSession{ID: checkoutSession.ID, URL: checkoutSession.URL}, nil
}

func (g *StripeGateway) SessionStatus(ctx context.Context, sessionID string) (*types.CheckoutSessionStatus, error) {
	sc := GetStripeClient()
	ctx, cancel := context.WithTimeout(ctx, stripeCallTimeout)
	defer cancel()

	checkoutSession, err := sc.V1CheckoutSessions.Retrieve(ctx, sessionID, &stripe.CheckoutSessionRetrieveParams{})
	if err != nil {
		return nil, err
	}
	return &types.CheckoutSessionStatus{
		Paid:      checkoutSession.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		ExpiresAt: time.Unix(checkoutSession.ExpiresAt, 0),
	}, nil
}
