package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists the patient aggregate. All reads filter on
// deleted_at IS NULL; soft-deleted rows are invisible through this interface.
type Repository interface {
	// ListActive returns active patients ordered by creation time, each with
	// its communication preference eagerly attached, plus the total count.
	ListActive(ctx context.Context, limit, offset int) ([]*Patient, int, error)

	// GetActive returns the active patient with the given id, preference
	// attached, or apperr.ErrNotFound.
	GetActive(ctx context.Context, id uuid.UUID) (*Patient, error)

	// Create inserts the patient and, when pref is non-nil, its preference.
	// Callers wrap the two inserts in one transaction.
	Create(ctx context.Context, p *Patient, pref *CommunicationPreference) error

	// Update persists the patient's scalar fields and updated_at.
	Update(ctx context.Context, p *Patient) error

	// SavePreference inserts the preference or, when the patient already has
	// one, updates it in place (the patient_id unique constraint decides).
	SavePreference(ctx context.Context, pref *CommunicationPreference) error

	// SoftDelete stamps deleted_at on an active patient. Returns
	// apperr.ErrNotFound when no active row matched.
	SoftDelete(ctx context.Context, id uuid.UUID, when time.Time) error

	// ActiveEmailExists reports whether an active patient other than exclude
	// already uses the email.
	ActiveEmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
}
