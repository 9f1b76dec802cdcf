package domain

import "errors"

// Domain errors
var (
	// Auth errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrForbidden          = errors.New("access denied")

	// Catalog errors
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrTariffNotFound   = errors.New("tariff not found")
	ErrTariffExists     = errors.New("tariff already exists")

	// Event errors
	ErrEventNotFound          = errors.New("event not found")
	ErrEventNotEditable       = errors.New("published event cannot be edited")
	ErrEventNotDeletable      = errors.New("only draft events can be deleted")
	ErrInvalidEventTransition = errors.New("invalid event status transition")
	ErrNoSellableTariff       = errors.New("event has no active tariff with remaining tickets")
	ErrEventNotOnSale         = errors.New("event is not on sale")

	// Event tariff errors
	ErrEventTariffNotFound = errors.New("event tariff not found")
	ErrEventTariffExists   = errors.New("tariff already attached to event")
	ErrQuantityBelowSales  = errors.New("quantity cannot be lower than tickets already sold")
	ErrEventTariffHasSales = errors.New("tariff with sold tickets cannot be removed")
	ErrInvalidPrice        = errors.New("price cannot be negative")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")

	// Cart and order errors
	ErrInsufficientQuota = errors.New("insufficient remaining quota")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrCartEmpty         = errors.New("cart is empty")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotPending   = errors.New("order is not pending")

	// Payment errors
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentFailed       = errors.New("payment failed")
	ErrPaymentNotCompleted = errors.New("payment is not completed yet")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
	ErrPaymentInProgress   = errors.New("order has a payment in progress")

	// Ticket errors
	ErrTicketNotFound = errors.New("ticket not found")
	ErrInvalidQRCode  = errors.New("invalid ticket code")

	// Organizer application errors
	ErrApplicationNotFound      = errors.New("organizer application not found")
	ErrApplicationActive        = errors.New("an active organizer application already exists")
	ErrInvalidApplicationStatus = errors.New("invalid organizer application status")
	ErrAlreadyOrganizer         = errors.New("user is already an organizer")

	// Favorite and contact errors
	ErrFavoriteNotFound     = errors.New("favorite not found")
	ErrContactNotFound      = errors.New("contact message not found")
	ErrContactMissing       = errors.New("email or phone is required")
	ErrInvalidContactStatus = errors.New("invalid contact message status")
)

// IsNotFoundError reports whether err maps to 404
func IsNotFoundError(err error) bool {
	for _, target := range []error{
		ErrUserNotFound, ErrCategoryNotFound, ErrTariffNotFound, ErrEventNotFound,
		ErrEventTariffNotFound, ErrCartItemNotFound, ErrOrderNotFound, ErrPaymentNotFound,
		ErrTicketNotFound, ErrApplicationNotFound, ErrFavoriteNotFound, ErrContactNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflictError reports whether err maps to 409
func IsConflictError(err error) bool {
	for _, target := range []error{
		ErrUserExists, ErrCategoryExists, ErrTariffExists, ErrEventTariffExists,
		ErrInsufficientQuota, ErrOrderNotPending, ErrApplicationActive, ErrAlreadyOrganizer,
		ErrEventTariffHasSales, ErrQuantityBelowSales, ErrPaymentInProgress,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidationError reports whether err maps to 400/422
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidPrice, ErrInvalidQuantity, ErrInvalidEventTransition, ErrNoSellableTariff,
		ErrEventNotEditable, ErrEventNotDeletable, ErrEventNotOnSale, ErrCartEmpty,
		ErrInvalidQRCode, ErrInvalidApplicationStatus, ErrContactMissing, ErrInvalidContactStatus,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
