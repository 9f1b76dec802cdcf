package dto

type ScanTicketRequest struct {
	// Code is either a bare ticket code or a full QR payload
	Code     string `json:"code" binding:"required,max=512"`
	MarkUsed bool   `json:"mark_used"`
}

type SetTicketUsedRequest struct {
	Used *bool `json:"used" binding:"required"`
}
