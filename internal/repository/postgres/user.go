package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bennettabowman-ui/conkord/internal/domain"
)

// UserRepository persists users keyed by external identity subject.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID               uuid.UUID `db:"id"`
	Identity         string    `db:"identity"`
	Email            string    `db:"email"`
	Plan             string    `db:"plan"`
	ScanCount        int       `db:"scan_count"`
	StripeCustomerID string    `db:"stripe_customer_id"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:               r.ID,
		Identity:         r.Identity,
		Email:            r.Email,
		Plan:             domain.Plan(r.Plan),
		ScanCount:        r.ScanCount,
		StripeCustomerID: r.StripeCustomerID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// GetOrCreate returns the user for an identity subject, creating a free-plan
// user on first sight. A concurrent create is resolved by re-reading.
func (r *UserRepository) GetOrCreate(ctx context.Context, identity, email string) (*domain.User, error) {
	user, err := r.GetByIdentity(ctx, identity)
	if err == nil {
		return user, nil
	}

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != domain.ErrCodeNotFound {
		return nil, err
	}

	created := domain.NewUser(identity, email)

	query := `
		INSERT INTO users (id, identity, email, plan, scan_count, stripe_customer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		created.ID,
		created.Identity,
		created.Email,
		string(created.Plan),
		created.ScanCount,
		created.StripeCustomerID,
		created.CreatedAt,
		created.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return r.GetByIdentity(ctx, identity)
		}
		return nil, err
	}

	return created, nil
}

// GetByIdentity retrieves a user by identity subject.
func (r *UserRepository) GetByIdentity(ctx context.Context, identity string) (*domain.User, error) {
	query := `
		SELECT id, identity, email, plan, scan_count, stripe_customer_id, created_at, updated_at
		FROM users
		WHERE identity = $1
	`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, identity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("user", identity)
		}
		return nil, err
	}

	return row.toDomain(), nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, identity, email, plan, scan_count, stripe_customer_id, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("user", id)
		}
		return nil, err
	}

	return row.toDomain(), nil
}

// IncrementScanCount bumps the scan counter atomically.
func (r *UserRepository) IncrementScanCount(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET scan_count = scan_count + 1, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.NotFoundError("user", id)
	}

	return nil
}

// UpdatePlan sets the user's plan and Stripe customer reference.
func (r *UserRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan domain.Plan, stripeCustomerID string) error {
	query := `
		UPDATE users
		SET plan = $2, stripe_customer_id = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, string(plan), stripeCustomerID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.NotFoundError("user", id)
	}

	return nil
}
