package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/api/middleware"
	"github.com/bennettabowman-ui/conkord/internal/billing"
	"github.com/bennettabowman-ui/conkord/internal/config"
	"github.com/bennettabowman-ui/conkord/internal/domain"
	"github.com/bennettabowman-ui/conkord/pkg/httputil"
)

// BillingHandler serves checkout and subscription status.
type BillingHandler struct {
	service *billing.Service
	cfg     config.StripeConfig
	logger  *zap.Logger
}

// NewBillingHandler creates a billing handler.
func NewBillingHandler(service *billing.Service, cfg config.StripeConfig, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{service: service, cfg: cfg, logger: logger}
}

// Checkout handles POST /api/v1/billing/checkout.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		httputil.JSONError(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "Identity token required", nil)
		return
	}

	url, err := h.service.CheckoutURL(r.Context(), user, h.cfg.SuccessURL, h.cfg.CancelURL)
	if err != nil {
		h.logger.Error("creating checkout failed", zap.Error(err), zap.String("user_id", user.ID.String()))
		httputil.JSONError(w, http.StatusBadGateway, domain.ErrCodeExternalAPI, "Could not start checkout", nil)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"checkout_url": url})
}

// Subscription handles GET /api/v1/billing/subscription.
func (h *BillingHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		httputil.JSONError(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "Identity token required", nil)
		return
	}

	status, err := h.service.Status(r.Context(), user)
	if err != nil {
		h.logger.Error("fetching subscription failed", zap.Error(err), zap.String("user_id", user.ID.String()))
		httputil.JSONError(w, http.StatusBadGateway, domain.ErrCodeExternalAPI, "Could not fetch subscription", nil)
		return
	}

	httputil.JSON(w, http.StatusOK, status)
}
