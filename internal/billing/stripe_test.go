package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bennettabowman-ui/conkord/internal/domain"
)

func TestCheckEligibility(t *testing.T) {
	freeAtLimit := domain.NewUser("sub-1", "a@b.com")
	freeAtLimit.ScanCount = 1

	premium := domain.NewUser("sub-2", "c@d.com")
	premium.Plan = domain.PlanPremium
	premium.ScanCount = 100

	tests := []struct {
		name    string
		user    *domain.User
		wantErr bool
	}{
		{"anonymous", nil, false},
		{"free with scans left", domain.NewUser("sub-0", "e@f.com"), false},
		{"free at limit", freeAtLimit, true},
		{"premium", premium, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckEligibility(tt.user)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)

			var appErr *domain.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, domain.ErrCodeScanLimit, appErr.Code)
			assert.Equal(t, http.StatusPaymentRequired, appErr.HTTPStatus)
		})
	}
}

func stripeTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *StripeClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewStripeClient(StripeConfig{
		SecretKey:      "sk_test_123",
		BaseURL:        srv.URL,
		PremiumPriceID: "price_premium",
	})
	return srv, client
}

func TestCreateCustomer(t *testing.T) {
	userID := uuid.New()

	_, client := stripeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/customers", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "sk_test_123", user)
		assert.Equal(t, "2023-10-16", r.Header.Get("Stripe-Version"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "dev@example.com", r.PostForm.Get("email"))
		assert.Equal(t, userID.String(), r.PostForm.Get("metadata[user_id]"))

		w.Write([]byte(`{"id": "cus_123", "email": "dev@example.com"}`))
	})

	customer, err := client.CreateCustomer(context.Background(), "dev@example.com", userID)
	require.NoError(t, err)
	assert.Equal(t, "cus_123", customer.ID)
}

func TestCreateCheckoutSession(t *testing.T) {
	_, client := stripeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "subscription", r.PostForm.Get("mode"))
		assert.Equal(t, "price_premium", r.PostForm.Get("line_items[0][price]"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "cus_123", r.PostForm.Get("customer"))
		assert.Equal(t, "u-1", r.PostForm.Get("metadata[user_id]"))

		w.Write([]byte(`{"id": "cs_123", "url": "https://checkout.stripe.com/pay/cs_123"}`))
	})

	url, err := client.CreateCheckoutSession(context.Background(), CheckoutOptions{
		PriceID:    "price_premium",
		SuccessURL: "https://conkord.app/success",
		CancelURL:  "https://conkord.app/cancel",
		CustomerID: "cus_123",
		Metadata:   map[string]string{"user_id": "u-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", url)
}

func TestListSubscriptions(t *testing.T) {
	_, client := stripeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/subscriptions", r.URL.Path)
		assert.Equal(t, "cus_123", r.URL.Query().Get("customer"))

		w.Write([]byte(`{"data": [
			{"id": "sub_1", "status": "active"},
			{"id": "sub_2", "status": "canceled"}
		]}`))
	})

	subs, err := client.ListSubscriptions(context.Background(), "cus_123")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.True(t, subs[0].IsActive())
	assert.False(t, subs[1].IsActive())
}

func TestStripeErrorEnvelope(t *testing.T) {
	_, client := stripeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error": {"message": "Your card was declined.", "type": "card_error", "code": "card_declined"}}`))
	})

	_, err := client.GetCustomer(context.Background(), "cus_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Your card was declined.")
	assert.Contains(t, err.Error(), "card_error")
}

func TestSubscriptionIsActive(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"active", true},
		{"trialing", true},
		{"canceled", false},
		{"past_due", false},
		{"incomplete", false},
	}

	for _, tt := range tests {
		sub := StripeSubscription{Status: tt.status}
		assert.Equal(t, tt.want, sub.IsActive(), tt.status)
	}
}

func TestServiceCheckoutURL_PremiumRejected(t *testing.T) {
	user := domain.NewUser("sub-1", "a@b.com")
	user.Plan = domain.PlanPremium

	svc := NewService(nil, StripeConfig{}, nil)
	_, err := svc.CheckoutURL(context.Background(), user, "https://x/s", "https://x/c")
	require.Error(t, err)
}

func TestServiceStatus_NoStripeCustomer(t *testing.T) {
	user := domain.NewUser("sub-1", "a@b.com")

	svc := NewService(nil, StripeConfig{}, nil)
	status, err := svc.Status(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, status.Plan)
	assert.False(t, status.Active)
}

func TestServicePortalURL_RequiresCustomer(t *testing.T) {
	user := domain.NewUser("sub-1", "a@b.com")

	svc := NewService(nil, StripeConfig{}, nil)
	_, err := svc.PortalURL(context.Background(), user, "https://x/return")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}
