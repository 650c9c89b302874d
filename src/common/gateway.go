package common

import (
	"context"

	"bookingapp/src/apperr"
	"bookingapp/src/types"
)

// Gateway is the narrow interface over the remote checkout provider. The
// production implementation is lib.StripeGateway; tests install a fake.
type Gateway interface {
	CreateSession(ctx context.Context, amount float64, productName string) (*types.CheckoutSession, error)
	SessionStatus(ctx context.Context, sessionID string) (*types.CheckoutSessionStatus, error)
}

var gateway Gateway

func UseGateway(g Gateway) {
	gateway = g
}

func getGateway() (Gateway, error) {
	if gateway == nil {
		return nil, apperr.Gateway(nil, "payment gateway is not configured")
	}
	return gateway, nil
}
