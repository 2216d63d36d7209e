package validation

import (
	"fmt"
	"strings"

	apperrors "github.com/julianstephens/storeduty/internal/errors"
	"github.com/julianstephens/storeduty/internal/models"
)

// Request is a new submission as collected from staff.
type Request struct {
	StoreID      string
	EmployeeName string
	TaskID       string
	Photo        []byte
	PhotoName    string
	Confirmed    bool
}

// WarningType classifies a non-fatal validation finding
type WarningType string

const (
	WarningUnverifiableEvidence WarningType = "unverifiable_evidence"
)

// Warning is a soft finding that still lets the submission through
type Warning struct {
	Type        WarningType
	Description string
}

// Result carries the warnings of an accepted submission.
type Result struct {
	Warnings []Warning
}

// HasWarnings returns true if there are any warnings
func (r Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// FormatReport returns a human-readable list of warnings
func (r Result) FormatReport() string {
	if !r.HasWarnings() {
		return "No warnings."
	}
	var b strings.Builder
	b.WriteString("Warnings:\n")
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "- %s\n", w.Description)
	}
	return b.String()
}

// Validator checks submissions against the store and task catalogs.
type Validator struct {
	stores models.StoreCatalog
	tasks  models.TaskCatalog
	strict bool
}

// New creates a new Validator. With strictEvidence set, photos whose capture
// time cannot be read are rejected instead of warned about.
func New(stores models.StoreCatalog, tasks models.TaskCatalog, strictEvidence bool) *Validator {
	return &Validator{stores: stores, tasks: tasks, strict: strictEvidence}
}

// Validate checks req. check is the evidence verdict for req.Photo and is
// ignored for tasks that do not require a photo. Every rejection is an
// *errors.ValidationError.
func (v *Validator) Validate(req Request, check models.EvidenceCheck) (Result, error) {
	result := Result{}

	storeID := strings.TrimSpace(req.StoreID)
	if storeID == "" {
		return result, apperrors.Invalid("store", "a store must be selected")
	}
	if store, ok := v.stores.Get(storeID); ok && store.Placeholder {
		return result, apperrors.Invalid("store", "a store must be selected")
	}
	if !v.stores.IsValid(storeID) {
		return result, apperrors.Invalid("store", "unknown store %q", storeID)
	}

	if strings.TrimSpace(req.EmployeeName) == "" {
		return result, apperrors.Invalid("employee", "employee name is required")
	}

	task, ok := v.tasks.Get(strings.TrimSpace(req.TaskID))
	if !ok {
		return result, apperrors.Invalid("task", "unknown task %q", req.TaskID)
	}

	if !task.RequiresPhoto {
		if len(req.Photo) > 0 {
			return result, apperrors.Invalid("photo", "task %q does not take a photo", task.Name)
		}
		if !req.Confirmed {
			return result, apperrors.Invalid("confirmed", "confirm that %q was completed", task.Name)
		}
		return result, nil
	}

	if len(req.Photo) == 0 {
		return result, apperrors.Invalid("photo", "task %q requires a live photo", task.Name)
	}

	switch check {
	case models.EvidenceVerifiedToday:
	case models.EvidenceVerifiedMismatch:
		return result, apperrors.Invalid("photo", "photo was not taken today")
	case models.EvidenceUnverifiable, models.EvidenceNotRequired:
		if v.strict {
			return result, apperrors.Invalid("photo", "photo has no capture time; take a new photo with the camera")
		}
		result.Warnings = append(result.Warnings, Warning{
			Type:        WarningUnverifiableEvidence,
			Description: "photo capture time could not be read; the submission is flagged for audit",
		})
	default:
		return result, apperrors.Invalid("photo", "unknown evidence check %q", check)
	}

	return result, nil
}
