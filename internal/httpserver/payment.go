package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/gateway/braintree"
	checkoutsvc "storefront/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

// clientTokenHandler returns a short-lived token for the client payment SDK.
func clientTokenHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := svc.ClientToken(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"clientToken": token})
	}
}

type paymentRequest struct {
	Cart  json.RawMessage `json:"cart"`
	Nonce string          `json:"nonce"`
}

// paymentHandler runs one checkout attempt. Validation failures are 400s;
// gateway failures are surfaced as 500s with the gateway's raw error body.
func paymentHandler(svc CheckoutService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil {
			respondError(c, http.StatusUnauthorized, "authorization required")
			return
		}
		var in paymentRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		_, err := svc.Checkout(c.Request.Context(), *u, checkoutsvc.Input{
			Cart:           in.Cart,
			Nonce:          in.Nonce,
			IdempotencyKey: c.GetHeader("Idempotency-Key"),
		})
		if err != nil {
			writeCheckoutError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func writeCheckoutError(c *gin.Context, logger *log.Logger, err error) {
	var invalid *checkoutsvc.InvalidCartError
	if errors.As(err, &invalid) {
		respondError(c, http.StatusBadRequest, invalid.Error())
		return
	}

	if errors.Is(err, domain.ErrAlreadyExists) {
		respondError(c, http.StatusConflict, "idempotency key already used")
		return
	}

	var declined *braintree.DeclinedError
	if errors.As(err, &declined) && len(declined.RawBody) > 0 && json.Valid(declined.RawBody) {
		// The gateway's error payload goes back verbatim.
		c.Data(http.StatusInternalServerError, "application/json", declined.RawBody)
		return
	}

	var persistence *checkoutsvc.PersistenceError
	if errors.As(err, &persistence) {
		logger.Printf("payment: %v", persistence)
		respondError(c, http.StatusInternalServerError, "payment succeeded but the order could not be recorded; support has been notified")
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
