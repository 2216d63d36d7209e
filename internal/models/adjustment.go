package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/storeduty/internal/constants"
)

// Action is a manager's audit decision on a submission.
type Action string

const (
	ActionApprove      Action = "approve"
	ActionMinorFault   Action = "minor_fault"
	ActionMajorFault   Action = "major_fault"
	ActionRevokeToZero Action = "revoke_to_zero"
)

// ActionRule describes how an Action changes a submission.
type ActionRule struct {
	Delta  int
	Status string
	Reset  bool // points become exactly 0 instead of adding Delta
	Label  string
}

var actionRules = map[Action]ActionRule{
	ActionApprove:      {Delta: 0, Status: constants.StatusApproved, Label: "Approved"},
	ActionMinorFault:   {Delta: -1, Status: constants.StatusMinorFault, Label: "Minor fault (-1)"},
	ActionMajorFault:   {Delta: -2, Status: constants.StatusMajorFault, Label: "Major fault (-2)"},
	ActionRevokeToZero: {Reset: true, Status: constants.StatusCorrected, Label: "Revoke deductions"},
}

// Actions returns every known action in display order.
func Actions() []Action {
	return []Action{ActionApprove, ActionMinorFault, ActionMajorFault, ActionRevokeToZero}
}

// Rule returns the rule for a, and false for unknown actions.
func (a Action) Rule() (ActionRule, bool) {
	r, ok := actionRules[a]
	return r, ok
}

// ParseAction maps user input (with "-" or "_" separators) to an Action.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := actionRules[a]; !ok {
		return "", fmt.Errorf("unknown audit action %q", s)
	}
	return a, nil
}

// Adjustment is one applied audit action. Adjustments form an append-only
// trail keyed by SubmissionID.
type Adjustment struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	Action       Action    `json:"action"`
	DeltaPoints  int       `json:"delta_points"`
	NewStatus    string    `json:"new_status"`
	Actor        string    `json:"actor,omitempty"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
