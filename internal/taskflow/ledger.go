package taskflow

import (
	"errors"
	"time"

	"interiorerp/internal/models"
)

var (
	ErrInvalidGate           = errors.New("invalid approval gate")
	ErrInvalidParty          = errors.New("invalid approval party")
	ErrInvalidApprovalStatus = errors.New("invalid approval status")
)

// SetApproval overwrites exactly one (gate, party) cell of t and stamps it.
// Other cells are never touched, rejections do not cascade.
func SetApproval(t *models.Task, gate models.Gate, party models.Party, status models.ApprovalStatus, approverID string, at time.Time) error {
	if !status.IsValid() {
		return ErrInvalidApprovalStatus
	}
	flow, err := flowFor(t, gate)
	if err != nil {
		return err
	}
	stamp := at
	cell := models.TaskApproval{Status: status, ApproverID: approverID, UpdatedAt: &stamp}
	switch party {
	case models.PartyClient:
		flow.Client = cell
	case models.PartyAdmin:
		flow.Admin = cell
	case models.PartyDesigner:
		flow.Designer = &cell
	default:
		return ErrInvalidParty
	}
	return nil
}

// ApprovalCell returns the (gate, party) cell, or nil when it does not exist
// (an absent designer slot, or an unknown gate/party).
func ApprovalCell(t *models.Task, gate models.Gate, party models.Party) *models.TaskApproval {
	if t == nil {
		return nil
	}
	flow, err := flowFor(t, gate)
	if err != nil {
		return nil
	}
	switch party {
	case models.PartyClient:
		return &flow.Client
	case models.PartyAdmin:
		return &flow.Admin
	case models.PartyDesigner:
		return flow.Designer
	}
	return nil
}

// GatesApproved reports whether the four approvals that gate DONE are all approved.
// The designer slot is tracked but never consulted.
func GatesApproved(t *models.Task) bool {
	a := t.Approvals
	return a.Start.Client.Status == models.ApprovalApproved &&
		a.Start.Admin.Status == models.ApprovalApproved &&
		a.Completion.Client.Status == models.ApprovalApproved &&
		a.Completion.Admin.Status == models.ApprovalApproved
}

// PartyForRole maps a user role to the approval party it signs for.
func PartyForRole(role models.Role) (models.Party, bool) {
	switch role {
	case models.RoleAdmin:
		return models.PartyAdmin, true
	case models.RoleClient:
		return models.PartyClient, true
	case models.RoleDesigner:
		return models.PartyDesigner, true
	}
	return "", false
}

func flowFor(t *models.Task, gate models.Gate) (*models.ApprovalFlow, error) {
	switch gate {
	case models.GateStart:
		return &t.Approvals.Start, nil
	case models.GateCompletion:
		return &t.Approvals.Completion, nil
	}
	return nil, ErrInvalidGate
}
