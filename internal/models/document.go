package models

import "time"

type Document struct {
	ID             string         `json:"id" bson:"_id"`
	ProjectID      string         `json:"project_id" bson:"projectId"`
	Name           string         `json:"name" bson:"name"`
	URL            string         `json:"url" bson:"url"`
	UploadedBy     string         `json:"uploaded_by" bson:"uploadedBy"`
	SharedWith     []Role         `json:"shared_with" bson:"sharedWith"`
	AdminApproval  ApprovalStatus `json:"admin_approval" bson:"adminApproval"`
	ClientApproval ApprovalStatus `json:"client_approval" bson:"clientApproval"`
	CreatedAt      time.Time      `json:"created_at" bson:"createdAt"`
}

// SharedWithRole reports whether the document is explicitly shared with role.
func (d *Document) SharedWithRole(role Role) bool {
	for _, r := range d.SharedWith {
		if r == role {
			return true
		}
	}
	return false
}

type Meeting struct {
	ID        string    `json:"id" bson:"_id"`
	ProjectID string    `json:"project_id" bson:"projectId"`
	Title     string    `json:"title" bson:"title"`
	StartsAt  time.Time `json:"starts_at" bson:"startsAt"`
	Attendees []string  `json:"attendees,omitempty" bson:"attendees,omitempty"`
	CreatedBy string    `json:"created_by" bson:"createdBy"`
}
