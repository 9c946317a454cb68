package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CellRef identifies a single cell by table, row and column index.
type CellRef struct {
	Table int `json:"table"`
	Row   int `json:"row"`
	Col   int `json:"col"`
}

// Binding associates a generation key with the blank cell its content
// is written to. Label keeps the unqualified label text so content can
// still be matched when the backend answers with the plain label.
type Binding struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Target     CellRef `json:"target"`
	Phase      string  `json:"phase,omitempty"`
	Sequential bool    `json:"sequential"`
}

// Structure is the ordered list of Bindings inferred from a template.
type Structure []Binding

// Keys returns the binding keys in structure order.
func (s Structure) Keys() []string {
	keys := make([]string, len(s))
	for i, b := range s {
		keys[i] = b.Key
	}
	return keys
}

// ContentMap holds generated text keyed by binding key.
type ContentMap map[string]string

// ContextKeyOutline is the one UserContext field generation cannot run
// without.
const ContextKeyOutline = "outline"

// UserContext carries the user-supplied fields that seed generation,
// including the required course outline and the identity fields used
// for deterministic overrides.
type UserContext map[string]string

// Outline returns the trimmed course outline, empty when absent.
func (u UserContext) Outline() string {
	return strings.TrimSpace(u[ContextKeyOutline])
}

// Run represents one asynchronous template fill run.
type Run struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	Status         RunStatus       `db:"status" json:"status"`
	TemplateName   string          `db:"template_name" json:"template_name"`
	ContentType    string          `db:"content_type" json:"content_type"`
	TemplateBucket string          `db:"template_bucket" json:"-"`
	TemplateKey    string          `db:"template_key" json:"-"`
	OutputBucket   string          `db:"output_bucket" json:"-"`
	OutputKey      string          `db:"output_key" json:"-"`
	UserContext    json.RawMessage `db:"user_context" json:"user_context"`
	BindingCount   int             `db:"binding_count" json:"binding_count"`
	FillCount      int             `db:"fill_count" json:"fill_count"`
	TotalBatches   int             `db:"total_batches" json:"total_batches"`
	FailedBatches  int             `db:"failed_batches" json:"failed_batches"`
	Attempts       int             `db:"attempts" json:"attempts"`
	ErrorText      string          `db:"error_text" json:"error_text,omitempty"`
	NotifyEmail    string          `db:"notify_email" json:"-"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	StartedAt      *time.Time      `db:"started_at" json:"started_at"`
	CompletedAt    *time.Time      `db:"completed_at" json:"completed_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}
