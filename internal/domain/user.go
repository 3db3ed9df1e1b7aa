package domain

import (
	"time"

	"github.com/google/uuid"
)

// Plan represents a user's subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// IsValid checks if the plan is a known value.
func (p Plan) IsValid() bool {
	return p == PlanFree || p == PlanPremium
}

// User is an account identified by an external identity token subject. The
// analysis core never gates on user state; eligibility is checked by the API
// layer before a run starts.
type User struct {
	ID               uuid.UUID `json:"id"`
	Identity         string    `json:"identity"` // external identity subject
	Email            string    `json:"email,omitempty"`
	Plan             Plan      `json:"plan"`
	ScanCount        int       `json:"scan_count"`
	StripeCustomerID string    `json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewUser creates a user on the free plan.
func NewUser(identity, email string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Identity:  identity,
		Email:     email,
		Plan:      PlanFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanScan reports scan eligibility: first scan free, unlimited for premium.
func (u *User) CanScan() bool {
	if u.Plan == PlanPremium {
		return true
	}
	return u.ScanCount < 1
}
