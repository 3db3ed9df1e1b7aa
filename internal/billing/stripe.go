// Package billing provides Stripe integration for the premium plan.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrCustomerNotFound is returned when a Stripe customer doesn't exist.
	ErrCustomerNotFound = errors.New("stripe customer not found")

	// ErrSubscriptionNotFound is returned when a subscription doesn't exist.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// StripeConfig holds Stripe configuration.
type StripeConfig struct {
	SecretKey      string
	WebhookSecret  string
	BaseURL        string // for testing, defaults to https://api.stripe.com
	PremiumPriceID string
}

// StripeClient provides access to the Stripe API.
type StripeClient struct {
	config     StripeConfig
	httpClient *http.Client
}

// NewStripeClient creates a new Stripe client.
func NewStripeClient(config StripeConfig) *StripeClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.stripe.com"
	}

	return &StripeClient{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Customer represents a Stripe customer.
type Customer struct {
	ID       string            `json:"id"`
	Email    string            `json:"email"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata"`
	Created  int64             `json:"created"`
}

// StripeSubscription represents a Stripe subscription API response.
type StripeSubscription struct {
	ID                 string            `json:"id"`
	Customer           string            `json:"customer"`
	Status             string            `json:"status"`
	CurrentPeriodStart int64             `json:"current_period_start"`
	CurrentPeriodEnd   int64             `json:"current_period_end"`
	CancelAtPeriodEnd  bool              `json:"cancel_at_period_end"`
	CanceledAt         *int64            `json:"canceled_at"`
	Metadata           map[string]string `json:"metadata"`
}

// IsActive reports whether the subscription currently grants premium access.
func (s *StripeSubscription) IsActive() bool {
	return s.Status == "active" || s.Status == "trialing"
}

// CreateCustomer creates a new Stripe customer tagged with our user ID.
func (c *StripeClient) CreateCustomer(ctx context.Context, email string, userID uuid.UUID) (*Customer, error) {
	data := url.Values{
		"email":             {email},
		"metadata[user_id]": {userID.String()},
	}

	var customer Customer
	if err := c.post(ctx, "/v1/customers", data, &customer); err != nil {
		return nil, err
	}

	return &customer, nil
}

// GetCustomer retrieves a Stripe customer.
func (c *StripeClient) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	var customer Customer
	if err := c.get(ctx, "/v1/customers/"+customerID, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListSubscriptions lists a customer's subscriptions, newest first.
func (c *StripeClient) ListSubscriptions(ctx context.Context, customerID string) ([]StripeSubscription, error) {
	var result struct {
		Data []StripeSubscription `json:"data"`
	}
	if err := c.get(ctx, "/v1/subscriptions?customer="+customerID, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// CancelSubscription cancels a subscription at the period end.
func (c *StripeClient) CancelSubscription(ctx context.Context, subscriptionID string) (*StripeSubscription, error) {
	var subscription StripeSubscription
	err := c.post(ctx, "/v1/subscriptions/"+subscriptionID, url.Values{
		"cancel_at_period_end": {"true"},
	}, &subscription)
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

// CheckoutOptions holds options for creating a checkout session.
type CheckoutOptions struct {
	PriceID       string
	SuccessURL    string
	CancelURL     string
	CustomerID    string
	CustomerEmail string
	Metadata      map[string]string
}

// CreateCheckoutSession creates a subscription checkout session and returns
// its hosted URL.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, opts CheckoutOptions) (string, error) {
	data := url.Values{
		"mode":                    {"subscription"},
		"success_url":             {opts.SuccessURL},
		"cancel_url":              {opts.CancelURL},
		"line_items[0][price]":    {opts.PriceID},
		"line_items[0][quantity]": {"1"},
	}

	if opts.CustomerID != "" {
		data.Set("customer", opts.CustomerID)
	}
	if opts.CustomerEmail != "" {
		data.Set("customer_email", opts.CustomerEmail)
	}
	for k, v := range opts.Metadata {
		data.Set("metadata["+k+"]", v)
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/v1/checkout/sessions", data, &result); err != nil {
		return "", err
	}
	return result.URL, nil
}

// CreateBillingPortalSession creates a Stripe billing portal session.
func (c *StripeClient) CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	data := url.Values{
		"customer":   {customerID},
		"return_url": {returnURL},
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/v1/billing_portal/sessions", data, &result); err != nil {
		return "", err
	}
	return result.URL, nil
}

// HTTP helpers

func (c *StripeClient) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.config.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, result)
}

func (c *StripeClient) post(ctx context.Context, path string, data url.Values, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+path, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, result)
}

func (c *StripeClient) do(req *http.Request, result interface{}) error {
	req.SetBasicAuth(c.config.SecretKey, "")
	req.Header.Set("Stripe-Version", "2023-10-16")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var stripeErr struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		json.Unmarshal(body, &stripeErr)
		return fmt.Errorf("stripe error: %s (%s)", stripeErr.Error.Message, stripeErr.Error.Type)
	}

	return json.Unmarshal(body, result)
}
