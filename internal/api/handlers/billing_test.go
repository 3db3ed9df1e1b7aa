package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/api/middleware"
	"github.com/bennettabowman-ui/conkord/internal/billing"
	"github.com/bennettabowman-ui/conkord/internal/config"
	"github.com/bennettabowman-ui/conkord/internal/domain"
)

func billingHandlerWithStripe(t *testing.T, stripeHandler http.HandlerFunc) *BillingHandler {
	t.Helper()
	srv := httptest.NewServer(stripeHandler)
	t.Cleanup(srv.Close)

	stripeCfg := billing.StripeConfig{
		SecretKey:      "sk_test_123",
		BaseURL:        srv.URL,
		PremiumPriceID: "price_premium",
	}
	svc := billing.NewService(billing.NewStripeClient(stripeCfg), stripeCfg, zap.NewNop())

	return NewBillingHandler(svc, config.StripeConfig{
		SuccessURL: "https://conkord.app/billing/success",
		CancelURL:  "https://conkord.app/billing/cancel",
	}, zap.NewNop())
}

func withUser(req *http.Request, user *domain.User) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyUser, user)
	return req.WithContext(ctx)
}

func TestCheckout(t *testing.T) {
	h := billingHandlerWithStripe(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		w.Write([]byte(`{"id": "cs_1", "url": "https://checkout.stripe.com/pay/cs_1"}`))
	})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout", nil), domain.NewUser("sub-1", "dev@example.com"))
	rec := httptest.NewRecorder()
	h.Checkout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_1", dataField(t, rec, "checkout_url"))
}

func TestCheckout_RequiresUser(t *testing.T) {
	h := billingHandlerWithStripe(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("stripe should not be called")
	})

	rec := httptest.NewRecorder()
	h.Checkout(rec, httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckout_StripeFailure(t *testing.T) {
	h := billingHandlerWithStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"message": "boom", "type": "api_error"}}`))
	})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout", nil), domain.NewUser("sub-1", "dev@example.com"))
	rec := httptest.NewRecorder()
	h.Checkout(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSubscription_FreeUserWithoutCustomer(t *testing.T) {
	h := billingHandlerWithStripe(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("stripe should not be called for users without a customer id")
	})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/billing/subscription", nil), domain.NewUser("sub-1", "dev@example.com"))
	rec := httptest.NewRecorder()
	h.Subscription(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data billing.SubscriptionStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.PlanFree, resp.Data.Plan)
	assert.False(t, resp.Data.Active)
}

func TestSubscription_ActiveFromStripe(t *testing.T) {
	h := billingHandlerWithStripe(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/subscriptions", r.URL.Path)
		w.Write([]byte(`{"data": [{"id": "sub_1", "status": "active", "current_period_end": 1767225600}]}`))
	})

	user := domain.NewUser("sub-1", "dev@example.com")
	user.Plan = domain.PlanPremium
	user.StripeCustomerID = "cus_123"

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/billing/subscription", nil), user)
	rec := httptest.NewRecorder()
	h.Subscription(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data billing.SubscriptionStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Active)
	assert.Equal(t, int64(1767225600), resp.Data.CurrentPeriodEnd)
}
