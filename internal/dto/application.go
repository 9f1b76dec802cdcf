package dto

type SubmitApplicationRequest struct {
	OrganizationName string `json:"organization_name" binding:"required,min=1,max=255"`
	About            string `json:"about" binding:"required,min=1,max=5000"`
	Phone            string `json:"phone" binding:"required,phone"`
}

type ApplicationListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=new in_review approved rejected"`
}

type RejectApplicationRequest struct {
	Comment string `json:"comment" binding:"max=2000"`
}
