package authz

import (
	"fmt"

	"interiorerp/internal/models"
	"interiorerp/internal/taskflow"
)

type PendingType string

const (
	PendingTaskStart      PendingType = "task_start"
	PendingTaskCompletion PendingType = "task_completion"
	PendingDocument       PendingType = "document"
	PendingFinancial      PendingType = "financial"
)

// PendingAction is one item waiting for the user's decision.
type PendingAction struct {
	Label      string       `json:"label"`
	Type       PendingType  `json:"type"`
	ProjectID  string       `json:"project_id"`
	Task       *models.Task `json:"task,omitempty"`
	DocumentID string       `json:"document_id,omitempty"`
	RecordID   string       `json:"record_id,omitempty"`
}

// PendingActions scans every snapshot the user can view and lists the cells
// awaiting the user's role. Each (gate, party) cell, document or record yields
// at most one entry, so no dedup is applied. Output follows snapshot order.
func PendingActions(u *models.User, snapshots []models.ProjectSnapshot) []PendingAction {
	party, ok := taskflow.PartyForRole(roleOf(u))
	if !ok {
		return nil
	}
	var out []PendingAction
	for i := range snapshots {
		s := &snapshots[i]
		if !GetProjectAccess(u, &s.Project, s.Tasks).CanView {
			continue
		}
		out = append(out, pendingTasks(s, party)...)
		out = append(out, pendingDocuments(u, s)...)
		out = append(out, pendingFinancials(u, s)...)
	}
	return out
}

func pendingTasks(s *models.ProjectSnapshot, party models.Party) []PendingAction {
	var out []PendingAction
	gates := []struct {
		gate models.Gate
		typ  PendingType
		verb string
	}{
		{models.GateStart, PendingTaskStart, "Approve start"},
		{models.GateCompletion, PendingTaskCompletion, "Approve completion"},
	}
	for i := range s.Tasks {
		t := &s.Tasks[i]
		for _, g := range gates {
			cell := taskflow.ApprovalCell(t, g.gate, party)
			if cell == nil || cell.Status != models.ApprovalPending {
				continue
			}
			out = append(out, PendingAction{
				Label:     fmt.Sprintf("%s: %s", g.verb, t.Title),
				Type:      g.typ,
				ProjectID: s.Project.ID,
				Task:      t,
			})
		}
	}
	return out
}

func pendingDocuments(u *models.User, s *models.ProjectSnapshot) []PendingAction {
	var out []PendingAction
	for i := range s.Documents {
		d := &s.Documents[i]
		switch u.Role {
		case models.RoleAdmin:
			if d.AdminApproval != models.ApprovalPending {
				continue
			}
		case models.RoleClient:
			if d.AdminApproval != models.ApprovalApproved || d.ClientApproval != models.ApprovalPending ||
				!d.SharedWithRole(models.RoleClient) {
				continue
			}
		default:
			continue
		}
		out = append(out, PendingAction{
			Label:      "Review document: " + d.Name,
			Type:       PendingDocument,
			ProjectID:  s.Project.ID,
			DocumentID: d.ID,
		})
	}
	return out
}

func pendingFinancials(u *models.User, s *models.ProjectSnapshot) []PendingAction {
	var out []PendingAction
	for i := range s.Financials {
		r := &s.Financials[i]
		if !r.NeedsApprovalRound() {
			continue
		}
		switch u.Role {
		case models.RoleAdmin:
			if r.AdminApproved {
				continue
			}
		case models.RoleClient:
			if r.ClientApproved {
				continue
			}
		default:
			continue
		}
		out = append(out, PendingAction{
			Label:     fmt.Sprintf("%s: %s (%.2f)", financialVerb(r.Kind), r.Title, r.Amount),
			Type:      PendingFinancial,
			ProjectID: s.Project.ID,
			RecordID:  r.ID,
		})
	}
	return out
}

func financialVerb(k models.FinancialKind) string {
	if k == models.KindAdditionalBudget {
		return "Approve additional budget"
	}
	return "Confirm payment"
}
