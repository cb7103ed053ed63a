package models

import "time"

type FinancialType string

const (
	FinancialIncome         FinancialType = "income"
	FinancialExpense        FinancialType = "expense"
	FinancialDesignerCharge FinancialType = "designer_charge"
)

// FinancialKind marks records that need an explicit approval round.
type FinancialKind string

const (
	KindRegular          FinancialKind = ""
	KindAdditionalBudget FinancialKind = "additional_budget"
	KindClientPayment    FinancialKind = "client_payment"
)

type FinancialRecord struct {
	ID             string        `json:"id" bson:"_id"`
	ProjectID      string        `json:"project_id" bson:"projectId"`
	Title          string        `json:"title" bson:"title"`
	Amount         float64       `json:"amount" bson:"amount"`
	Type           FinancialType `json:"type" bson:"type"`
	Kind           FinancialKind `json:"kind,omitempty" bson:"kind,omitempty"`
	VendorID       string        `json:"vendor_id,omitempty" bson:"vendorId,omitempty"`
	PaidTo         string        `json:"paid_to,omitempty" bson:"paidTo,omitempty"`
	PaidBy         string        `json:"paid_by,omitempty" bson:"paidBy,omitempty"`
	AdminApproved  bool          `json:"admin_approved" bson:"adminApproved"`
	ClientApproved bool          `json:"client_approved" bson:"clientApproved"`
	CreatedAt      time.Time     `json:"created_at" bson:"createdAt"`
}

// FullyApproved reports whether both admin and client signed off.
func (r *FinancialRecord) FullyApproved() bool {
	return r.AdminApproved && r.ClientApproved
}

// NeedsApprovalRound reports whether the record goes through the pending-approval inbox.
func (r *FinancialRecord) NeedsApprovalRound() bool {
	return r.Kind == KindAdditionalBudget || r.Kind == KindClientPayment
}
