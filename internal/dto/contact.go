package dto

type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=150"`
	Email   string `json:"email" binding:"omitempty,email,max=255"`
	Phone   string `json:"phone" binding:"omitempty,phone"`
	Subject string `json:"subject" binding:"max=255"`
	Message string `json:"message" binding:"required,min=1,max=5000"`
}

type ContactListQuery struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,oneof=new in_progress closed"`
}

type UpdateContactStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new in_progress closed"`
}
