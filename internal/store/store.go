package store

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Filter specifies criteria for listing leads.
type Filter struct {
	Status  model.LeadStatus `json:"status,omitempty"`
	Source  model.SourceTag  `json:"source,omitempty"`
	HotOnly bool             `json:"hot_only,omitempty"`
	Limit   int              `json:"limit,omitempty"`
	Offset  int              `json:"offset,omitempty"`
}

// LeadUpdate carries the workflow fields a caller may mutate on a persisted
// lead. Nil fields are left untouched.
type LeadUpdate struct {
	Status   *model.LeadStatus `json:"status,omitempty"`
	Priority *model.Priority   `json:"priority,omitempty"`
	Notes    *string           `json:"notes,omitempty"`
}

// Store defines the persistence interface for the acquisition pipeline and
// the lead workflow surface.
type Store interface {
	// Leads
	SaveLead(ctx context.Context, lead *model.Lead) error
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter Filter) ([]model.Lead, error)
	UpdateLead(ctx context.Context, id string, update LeadUpdate) (*model.Lead, error)
	DeleteLead(ctx context.Context, id string) error
	CountLeads(ctx context.Context) (int, error)

	// ExistsMatching reports whether any persisted lead matches the given
	// normalized phone (when non-empty) or normalized business name.
	ExistsMatching(ctx context.Context, phone, name string) (bool, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
