package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/domain/entity"
)

// RuleRepository defines the interface for rule persistence operations.
type RuleRepository interface {
	// Create creates a new rule.
	Create(ctx context.Context, rule *entity.Rule) error

	// FindByID retrieves a rule by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Rule, error)

	// FindByUser retrieves all rules of a user, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Rule, error)

	// FindActiveByUser retrieves the active rules of a user.
	FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Rule, error)

	// Update saves changes to a rule.
	Update(ctx context.Context, rule *entity.Rule) error

	// Delete removes a rule. Evaluations of the rule are kept.
	Delete(ctx context.Context, id uuid.UUID) error
}
