package handler

import (
	"net/http"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/internal/service"
)

// SubscriptionHandler handles plans, quota and checkout endpoints.
type SubscriptionHandler struct {
	subs     *service.SubscriptionService
	payments *service.PaymentService
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subs *service.SubscriptionService, payments *service.PaymentService) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs, payments: payments}
}

// Plans handles GET /api/subscription/plans.
func (h *SubscriptionHandler) Plans(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{"plans": h.subs.Plans()})
}

// PaymentWindow handles GET /api/subscription/payment-window.
func (h *SubscriptionHandler) PaymentWindow(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.payments.WindowStatus())
}

// Me handles GET /api/subscription/me.
func (h *SubscriptionHandler) Me(w http.ResponseWriter, r *http.Request) {
	view, err := h.subs.View(r.Context(), userID(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, view)
}

// Payments handles GET /api/subscription/payments.
func (h *SubscriptionHandler) Payments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.History(r.Context(), userID(r), queryInt(r, "limit", 0))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"payments": payments})
}

// CreateOrder handles POST /api/subscription/create-order.
func (h *SubscriptionHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.payments.CreateOrder(r.Context(), userID(r), req.PlanType)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// VerifyPayment handles POST /api/subscription/verify-payment.
func (h *SubscriptionHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyPaymentRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.payments.VerifyPayment(r.Context(), userID(r), &req)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}
