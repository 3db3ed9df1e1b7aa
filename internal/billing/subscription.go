package billing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/domain"
)

// SubscriptionStatus is what the API reports about a user's billing state.
type SubscriptionStatus struct {
	Plan              domain.Plan `json:"plan"`
	Active            bool        `json:"active"`
	CancelAtPeriodEnd bool        `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64       `json:"current_period_end,omitempty"`
	PortalURL         string      `json:"portal_url,omitempty"`
}

// Service coordinates Stripe against local user records.
type Service struct {
	stripe *StripeClient
	config StripeConfig
	logger *zap.Logger
}

// NewService creates a billing service.
func NewService(stripe *StripeClient, config StripeConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{stripe: stripe, config: config, logger: logger}
}

// CheckoutURL creates a checkout session upgrading the user to premium.
func (s *Service) CheckoutURL(ctx context.Context, user *domain.User, successURL, cancelURL string) (string, error) {
	if user.Plan == domain.PlanPremium {
		return "", fmt.Errorf("user is already on the premium plan")
	}

	opts := CheckoutOptions{
		PriceID:    s.config.PremiumPriceID,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Metadata:   map[string]string{"user_id": user.ID.String()},
	}
	if user.StripeCustomerID != "" {
		opts.CustomerID = user.StripeCustomerID
	} else {
		opts.CustomerEmail = user.Email
	}

	url, err := s.stripe.CreateCheckoutSession(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("creating checkout session: %w", err)
	}

	s.logger.Info("checkout session created", zap.String("user_id", user.ID.String()))
	return url, nil
}

// Status reports the user's current subscription state. Users without a
// Stripe customer are free-plan by definition.
func (s *Service) Status(ctx context.Context, user *domain.User) (*SubscriptionStatus, error) {
	status := &SubscriptionStatus{Plan: user.Plan}

	if user.StripeCustomerID == "" {
		return status, nil
	}

	subs, err := s.stripe.ListSubscriptions(ctx, user.StripeCustomerID)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}

	for _, sub := range subs {
		if sub.IsActive() {
			status.Active = true
			status.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
			status.CurrentPeriodEnd = sub.CurrentPeriodEnd
			break
		}
	}

	return status, nil
}

// PortalURL creates a billing portal session for subscription management.
func (s *Service) PortalURL(ctx context.Context, user *domain.User, returnURL string) (string, error) {
	if user.StripeCustomerID == "" {
		return "", ErrCustomerNotFound
	}
	return s.stripe.CreateBillingPortalSession(ctx, user.StripeCustomerID, returnURL)
}

// CheckEligibility returns the error to surface when a user may not run
// another analysis. Anonymous callers and premium users always pass.
func CheckEligibility(user *domain.User) error {
	if user == nil {
		return nil
	}
	if user.CanScan() {
		return nil
	}
	return domain.ErrScanLimit()
}
