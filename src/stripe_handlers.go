package main

import (
	"io"
	"log"
	"net/http"
	"os"

	"bookingapp/src/common"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/tidwall/gjson"
)

// stripeWebhookRoute receives checkout session lifecycle events pushed by
// the gateway. The redirect routes remain the primary confirmation path;
// the webhook covers users who close the browser before redirecting.
func stripeWebhookRoute(g *gin.RouterGroup) *gin.RouterGroup {
	g.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "checkout.session.completed":
			sessionID := gjson.GetBytes(event.Data.Raw, "id").String()
			if sessionID == "" {
				log.Println("[Stripe] completed event without session id")
				break
			}
			if _, err := common.ConfirmPayment(ctx, sessionID); err != nil {
				log.Printf("[Stripe] could not confirm session %s: %s\n", sessionID, err.Error())
			}
		case "checkout.session.expired":
			sessionID := gjson.GetBytes(event.Data.Raw, "id").String()
			if sessionID == "" {
				log.Println("[Stripe] expired event without session id")
				break
			}
			payment, err := common.FindPaymentBySessionID(sessionID)
			if err != nil {
				log.Printf("[Stripe] could not load payment for session %s: %s\n", sessionID, err.Error())
				break
			}
			if err := common.MarkPaymentExpired(payment); err != nil {
				log.Printf("[Stripe] could not expire payment %s: %s\n", payment.ID.String(), err.Error())
			}
		}
		ctx.Status(http.StatusOK)
	})
	return g
}
