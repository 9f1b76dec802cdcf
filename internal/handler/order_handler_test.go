package handler

import (
	"net/http"
	"testing"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestOrderHandler_Checkout(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		order          *domain.Order
		mockErr        error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "created",
			headers: asUser("user-123", domain.RoleUser),
			order: &domain.Order{
				ID:          "order-1",
				UserID:      "user-123",
				Status:      domain.OrderStatusPending,
				TotalAmount: decimal.NewFromInt(3000),
				Currency:    "RUB",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unauthorized",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:           "empty cart",
			headers:        asUser("user-123", domain.RoleUser),
			mockErr:        domain.ErrCartEmpty,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "sold out",
			headers:        asUser("user-123", domain.RoleUser),
			mockErr:        domain.ErrInsufficientQuota,
			expectedStatus: http.StatusConflict,
			expectedCode:   "INSUFFICIENT_QUOTA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			if tt.headers != nil {
				svc.On("Checkout", mock.Anything, "user-123").Return(tt.order, tt.mockErr)
			}
			h := NewOrderHandler(svc)
			router := newTestRouter()
			router.POST("/orders", h.Checkout)

			w := doRequest(router, http.MethodPost, "/orders", nil, tt.headers)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeResponse(t, w).Error.Code)
			} else {
				assert.Contains(t, w.Body.String(), `"status":"PENDING"`)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_GetAndCancel(t *testing.T) {
	svc := new(MockOrderService)
	buyer := domain.Actor{UserID: "user-123", Role: domain.RoleUser}
	svc.On("Get", mock.Anything, buyer, "order-1").Return(&domain.Order{ID: "order-1", Status: domain.OrderStatusPaid}, nil)
	svc.On("Get", mock.Anything, buyer, "order-2").Return(nil, domain.ErrOrderNotFound)
	svc.On("Cancel", mock.Anything, buyer, "order-1").Return(nil, domain.ErrOrderNotPending)
	svc.On("Cancel", mock.Anything, buyer, "order-3").Return(nil, domain.ErrPaymentInProgress)

	h := NewOrderHandler(svc)
	router := newTestRouter()
	router.GET("/orders/:id", h.Get)
	router.POST("/orders/:id/cancel", h.Cancel)
	headers := asUser("user-123", domain.RoleUser)

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/orders/order-1", nil, headers).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, "/orders/order-2", nil, headers).Code)

	w := doRequest(router, http.MethodPost, "/orders/order-1/cancel", nil, headers)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ORDER_NOT_PENDING", decodeResponse(t, w).Error.Code)

	w = doRequest(router, http.MethodPost, "/orders/order-3/cancel", nil, headers)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PAYMENT_IN_PROGRESS", decodeResponse(t, w).Error.Code)
}

func TestCartHandler_AddItem(t *testing.T) {
	svc := new(MockCartService)
	tariff := &domain.EventTariff{ID: "et-1", TariffName: "VIP", Price: decimal.NewFromInt(5000), AvailableQuantity: 10, SalesCount: 4}
	cart := &domain.Cart{Lines: []*domain.CartLine{{
		Item:       &domain.CartItem{ID: "item-1", EventTariffID: "et-1", Quantity: 2},
		Tariff:     tariff,
		EventID:    "event-1",
		EventTitle: "Spring Jazz Night",
	}}}
	req := &dto.AddCartItemRequest{EventTariffID: "6f1c1a3e-8d5b-4b53-9a0e-2b0e6f5e9c11", Quantity: 2}
	svc.On("AddItem", mock.Anything, "user-123", req).Return(cart, nil).Once()
	svc.On("AddItem", mock.Anything, "user-123", req).Return(nil, domain.ErrInsufficientQuota).Once()

	h := NewCartHandler(svc)
	router := newTestRouter()
	router.POST("/cart/items", h.AddItem)
	headers := asUser("user-123", domain.RoleUser)

	w := doRequest(router, http.MethodPost, "/cart/items", req, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":"10000"`)
	assert.Contains(t, w.Body.String(), `"remaining":6`)

	w = doRequest(router, http.MethodPost, "/cart/items", req, headers)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(router, http.MethodPost, "/cart/items", dto.AddCartItemRequest{EventTariffID: "not-a-uuid"}, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "AddItem", 2)
}
