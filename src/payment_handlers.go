package main

import (
	"net/http"

	"bookingapp/src/common"
	"bookingapp/src/middlewares"
	"bookingapp/src/types"

	"github.com/gin-gonic/gin"
)

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/payments", func(ctx *gin.Context) {
			var filters types.PaymentsQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			identity := middlewares.CurrentIdentity(ctx)
			payments, err := common.ListPayments(identity, filters.UserID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payments, "count": len(payments)})
		}).
		POST("/payments", func(ctx *gin.Context) {
			var body types.CreatePaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			identity := middlewares.CurrentIdentity(ctx)
			payment, err := common.CreatePayment(ctx, identity, body.BookingID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": payment, "checkout_url": payment.SessionURL})
		})
	return g
}

// paymentRedirectHandlers serve the gateway's success and cancel redirects.
// The user lands here from the hosted checkout page, so both routes are
// public and identified by session only.
func paymentRedirectHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/payments/success", func(ctx *gin.Context) {
			var query types.PaymentSessionQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			payment, err := common.ConfirmPayment(ctx, query.SessionID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payment})
		}).
		GET("/payments/cancel", func(ctx *gin.Context) {
			var query types.PaymentSessionQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			payment, err := common.AcknowledgeCancel(query.SessionID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payment})
		})
	return g
}
