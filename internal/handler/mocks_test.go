package handler

import (
	"context"
	"time"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/gateway"
	"github.com/stretchr/testify/mock"
)

// MockAuthService is a mock implementation of service.AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthResponse), args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claims), args.Error(1)
}

func (m *MockAuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockEventService is a mock implementation of service.EventService
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) event(args mock.Arguments) (*domain.Event, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventService) events(args mock.Arguments) ([]*domain.Event, int, error) {
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Event), args.Int(1), args.Error(2)
}

func (m *MockEventService) ListPublished(ctx context.Context, q *dto.PublicEventQuery) ([]*domain.Event, int, error) {
	return m.events(m.Called(ctx, q))
}

func (m *MockEventService) GetBySlug(ctx context.Context, slug string, actor domain.Actor) (*domain.Event, error) {
	return m.event(m.Called(ctx, slug, actor))
}

func (m *MockEventService) GetByID(ctx context.Context, id string, actor domain.Actor) (*domain.Event, error) {
	return m.event(m.Called(ctx, id, actor))
}

func (m *MockEventService) Create(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error) {
	return m.event(m.Called(ctx, actor, req))
}

func (m *MockEventService) Update(ctx context.Context, actor domain.Actor, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	return m.event(m.Called(ctx, actor, id, req))
}

func (m *MockEventService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockEventService) ListMine(ctx context.Context, actor domain.Actor, q *dto.PageQuery) ([]*domain.Event, int, error) {
	return m.events(m.Called(ctx, actor, q))
}

func (m *MockEventService) Submit(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
	return m.event(m.Called(ctx, actor, id))
}

func (m *MockEventService) AddTariff(ctx context.Context, actor domain.Actor, eventID string, req *dto.AddEventTariffRequest) (*domain.EventTariff, error) {
	args := m.Called(ctx, actor, eventID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventTariff), args.Error(1)
}

func (m *MockEventService) UpdateTariff(ctx context.Context, actor domain.Actor, eventTariffID string, req *dto.UpdateEventTariffRequest) (*domain.EventTariff, error) {
	args := m.Called(ctx, actor, eventTariffID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventTariff), args.Error(1)
}

func (m *MockEventService) RemoveTariff(ctx context.Context, actor domain.Actor, eventTariffID string) error {
	return m.Called(ctx, actor, eventTariffID).Error(0)
}

func (m *MockEventService) ListForModeration(ctx context.Context, q *dto.ModerationQuery) ([]*domain.Event, int, error) {
	return m.events(m.Called(ctx, q))
}

func (m *MockEventService) Publish(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
	return m.event(m.Called(ctx, actor, id))
}

func (m *MockEventService) Reject(ctx context.Context, actor domain.Actor, id, comment string) (*domain.Event, error) {
	return m.event(m.Called(ctx, actor, id, comment))
}

func (m *MockEventService) MarkDraft(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
	return m.event(m.Called(ctx, actor, id))
}

func (m *MockEventService) MarkPending(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
	return m.event(m.Called(ctx, actor, id))
}

// MockCartService is a mock implementation of service.CartService
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cart(args mock.Arguments) (*domain.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *MockCartService) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, userID))
}

func (m *MockCartService) AddItem(ctx context.Context, userID string, req *dto.AddCartItemRequest) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, userID, req))
}

func (m *MockCartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, userID, itemID, quantity))
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, userID, itemID))
}

func (m *MockCartService) Clear(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// MockOrderService is a mock implementation of service.OrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*domain.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderService) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	return m.order(m.Called(ctx, userID))
}

func (m *MockOrderService) Cancel(ctx context.Context, actor domain.Actor, orderID string) (*domain.Order, error) {
	return m.order(m.Called(ctx, actor, orderID))
}

func (m *MockOrderService) List(ctx context.Context, userID string) ([]*domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, actor domain.Actor, orderID string) (*domain.Order, error) {
	return m.order(m.Called(ctx, actor, orderID))
}

func (m *MockOrderService) FinalizePayment(ctx context.Context, orderID string, actor *domain.Actor) (*domain.Order, error) {
	return m.order(m.Called(ctx, orderID, actor))
}

func (m *MockOrderService) ExpirePending(ctx context.Context, before time.Time, limit int) (int, error) {
	args := m.Called(ctx, before, limit)
	return args.Int(0), args.Error(1)
}

// MockPaymentService is a mock implementation of service.PaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Start(ctx context.Context, actor domain.Actor, orderID string) (*dto.StartPaymentResponse, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.StartPaymentResponse), args.Error(1)
}

func (m *MockPaymentService) ConfirmReturn(ctx context.Context, actor domain.Actor, orderID string) (*dto.PaymentReturnResponse, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaymentReturnResponse), args.Error(1)
}

func (m *MockPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

func (m *MockPaymentService) Gateway() gateway.PaymentGateway {
	return m.Called().Get(0).(gateway.PaymentGateway)
}

// MockTicketService is a mock implementation of service.TicketService
type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) details(args mock.Arguments) (*domain.TicketDetails, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketDetails), args.Error(1)
}

func (m *MockTicketService) list(args mock.Arguments) ([]*domain.TicketDetails, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TicketDetails), args.Error(1)
}

func (m *MockTicketService) ListMine(ctx context.Context, userID string) ([]*domain.TicketDetails, error) {
	return m.list(m.Called(ctx, userID))
}

func (m *MockTicketService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.TicketDetails, error) {
	return m.details(m.Called(ctx, actor, id))
}

func (m *MockTicketService) QRCode(ctx context.Context, actor domain.Actor, id string) ([]byte, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockTicketService) PDF(ctx context.Context, actor domain.Actor, id string) ([]byte, string, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockTicketService) Scan(ctx context.Context, actor domain.Actor, input string, markUsed bool) (*domain.ScanResult, error) {
	args := m.Called(ctx, actor, input, markUsed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScanResult), args.Error(1)
}

func (m *MockTicketService) SetUsed(ctx context.Context, actor domain.Actor, id string, used bool) (*domain.TicketDetails, error) {
	return m.details(m.Called(ctx, actor, id, used))
}

func (m *MockTicketService) ToggleUsed(ctx context.Context, actor domain.Actor, id string) (*domain.TicketDetails, error) {
	return m.details(m.Called(ctx, actor, id))
}

func (m *MockTicketService) ListForEvent(ctx context.Context, actor domain.Actor, eventID string) ([]*domain.TicketDetails, error) {
	return m.list(m.Called(ctx, actor, eventID))
}

// MockContactService is a mock implementation of service.ContactService
type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Submit(ctx context.Context, req *dto.ContactRequest) (*domain.ContactMessage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContactMessage), args.Error(1)
}

func (m *MockContactService) List(ctx context.Context, q *dto.ContactListQuery) ([]*domain.ContactMessage, int, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.ContactMessage), args.Int(1), args.Error(2)
}

func (m *MockContactService) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) error {
	return m.Called(ctx, id, status).Error(0)
}
