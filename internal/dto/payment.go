package dto

import "github.com/railxam2004/CulT/internal/domain"

// StartPaymentResponse tells the client how to complete the payment
type StartPaymentResponse struct {
	OrderID         string               `json:"order_id"`
	PaymentID       string               `json:"payment_id"`
	Status          domain.PaymentStatus `json:"status"`
	ClientSecret    string               `json:"client_secret,omitempty"`
	ConfirmationURL string               `json:"confirmation_url,omitempty"`
	// Paid is set when the order was settled without the provider
	Paid bool `json:"paid"`
}

// PaymentReturnResponse is the result of coming back from the provider
type PaymentReturnResponse struct {
	Order   *domain.Order `json:"order"`
	Paid    bool          `json:"paid"`
	Message string        `json:"message"`
}
