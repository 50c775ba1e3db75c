package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	authsvc "storefront/internal/service/auth"
	"github.com/gin-gonic/gin"
)

func registerHandler(svc AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in authsvc.RegisterInput
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		u, err := svc.Register(c.Request.Context(), in)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				respondError(c, http.StatusConflict, "email already registered")
				return
			}
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondOK(c, http.StatusCreated, "user registered successfully", gin.H{"user": u})
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(svc AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in loginRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, http.StatusBadRequest, "email and password required")
			return
		}
		u, token, err := svc.Login(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			if errors.Is(err, authsvc.ErrInvalidCredentials) {
				respondError(c, http.StatusUnauthorized, "invalid email or password")
				return
			}
			respondError(c, http.StatusInternalServerError, "internal error")
			return
		}
		respondOK(c, http.StatusOK, "login successful", gin.H{
			"user":      u,
			"token":     token,
			"expiresIn": svc.AccessTTLSeconds(),
		})
	}
}

type forgotPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Answer      string `json:"answer" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func forgotPasswordHandler(svc AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in forgotPasswordRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, http.StatusBadRequest, "email, answer, and newPassword required")
			return
		}
		if err := svc.ResetPassword(c.Request.Context(), in.Email, in.Answer, in.NewPassword); err != nil {
			if errors.Is(err, authsvc.ErrInvalidAnswer) {
				respondError(c, http.StatusUnauthorized, "wrong email or answer")
				return
			}
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondOK(c, http.StatusOK, "password reset successfully", nil)
	}
}

// authPingHandler answers the protected-route probes used by the frontend.
func authPingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func updateProfileHandler(svc AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil {
			respondError(c, http.StatusUnauthorized, "authorization required")
			return
		}
		var in authsvc.ProfileInput
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		updated, err := svc.UpdateProfile(c.Request.Context(), u.ID, in)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondOK(c, http.StatusOK, "profile updated successfully", gin.H{"updatedUser": updated})
	}
}

func listOrdersHandler(orders OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil {
			respondError(c, http.StatusUnauthorized, "authorization required")
			return
		}
		list, err := orders.ListByBuyer(c.Request.Context(), u.ID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "error while getting orders")
			return
		}
		if list == nil {
			list = []domain.Order{}
		}
		c.JSON(http.StatusOK, list)
	}
}

func listAllOrdersHandler(orders OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.ListAll(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, "error while getting orders")
			return
		}
		if list == nil {
			list = []domain.Order{}
		}
		c.JSON(http.StatusOK, list)
	}
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func orderStatusHandler(orders OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in orderStatusRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, http.StatusBadRequest, "status required")
			return
		}
		status := domain.OrderStatus(in.Status)
		if !status.Valid() {
			respondError(c, http.StatusBadRequest, "unknown order status")
			return
		}
		updated, err := orders.UpdateStatus(c.Request.Context(), c.Param("orderId"), status)
		if err != nil {
			respondRepoError(c, err, "order not found", "conflict")
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}
