package domain

import "time"

type ApplicationStatus string

const (
	ApplicationStatusNew      ApplicationStatus = "new"
	ApplicationStatusInReview ApplicationStatus = "in_review"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusNew, ApplicationStatusInReview, ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}

// IsActive is true while the application awaits a decision
func (s ApplicationStatus) IsActive() bool {
	return s == ApplicationStatusNew || s == ApplicationStatusInReview
}

// OrganizerApplication is a user's request for the organizer role
type OrganizerApplication struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	OrganizationName string            `json:"organization_name"`
	About            string            `json:"about"`
	Phone            string            `json:"phone"`
	Status           ApplicationStatus `json:"status"`
	ReviewComment    string            `json:"review_comment,omitempty"`
	ReviewedBy       *string           `json:"reviewed_by,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Decide moves an active application to approved or rejected
func (a *OrganizerApplication) Decide(status ApplicationStatus, reviewer, comment string) error {
	if !a.Status.IsActive() {
		return ErrInvalidApplicationStatus
	}
	if status != ApplicationStatusApproved && status != ApplicationStatusRejected {
		return ErrInvalidApplicationStatus
	}
	a.Status = status
	a.ReviewedBy = &reviewer
	a.ReviewComment = comment
	return nil
}
