package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEventTariff_Remaining(t *testing.T) {
	tests := []struct {
		name      string
		available int
		sold      int
		want      int
	}{
		{"fresh", 100, 0, 100},
		{"partially sold", 100, 40, 60},
		{"sold out", 10, 10, 0},
		{"oversold floors at zero", 5, 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			et := &EventTariff{AvailableQuantity: tt.available, SalesCount: tt.sold}
			if got := et.Remaining(); got != tt.want {
				t.Errorf("Remaining() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAvailableFromTariffs_SkipsInactive(t *testing.T) {
	tariffs := []*EventTariff{
		{AvailableQuantity: 10, SalesCount: 2, IsActive: true},
		{AvailableQuantity: 50, SalesCount: 0, IsActive: false},
		{AvailableQuantity: 5, SalesCount: 5, IsActive: true},
	}
	if got := AvailableFromTariffs(tariffs); got != 8 {
		t.Errorf("AvailableFromTariffs() = %d, want 8", got)
	}
}

func TestEvent_Transitions(t *testing.T) {
	e := &Event{Status: EventStatusDraft}
	if err := e.CanSubmit(); err != nil {
		t.Errorf("draft should be submittable: %v", err)
	}
	if err := e.CanReject(); !errors.Is(err, ErrInvalidEventTransition) {
		t.Errorf("draft should not be rejectable, got %v", err)
	}

	e.Status = EventStatusPending
	if err := e.CanSubmit(); !errors.Is(err, ErrInvalidEventTransition) {
		t.Errorf("pending should not be submittable again, got %v", err)
	}

	e.Status = EventStatusPublished
	if err := e.CanPublish(); !errors.Is(err, ErrInvalidEventTransition) {
		t.Errorf("published should not be publishable, got %v", err)
	}

	e.Status = EventStatusRejected
	if err := e.CanSubmit(); err != nil {
		t.Errorf("rejected should be resubmittable: %v", err)
	}
}

func TestEvent_CanEdit(t *testing.T) {
	e := &Event{OrganizerID: "org", Status: EventStatusDraft}

	if err := e.CanEdit(Actor{UserID: "org", Role: RoleOrganizer}); err != nil {
		t.Errorf("owner should edit draft: %v", err)
	}
	if err := e.CanEdit(Actor{UserID: "other", Role: RoleOrganizer}); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger should be forbidden, got %v", err)
	}
	if err := e.CanEdit(Actor{UserID: "mod", Role: RoleModerator}); err != nil {
		t.Errorf("staff should edit: %v", err)
	}

	e.Status = EventStatusPublished
	if err := e.CanEdit(Actor{UserID: "org", Role: RoleOrganizer}); !errors.Is(err, ErrEventNotEditable) {
		t.Errorf("published event should not be editable, got %v", err)
	}
}

func TestEvent_VisibleTo(t *testing.T) {
	draft := &Event{OrganizerID: "org", Status: EventStatusDraft, IsActive: true}
	if draft.VisibleTo(Actor{}) {
		t.Error("anonymous must not see drafts")
	}
	if !draft.VisibleTo(Actor{UserID: "org", Role: RoleOrganizer}) {
		t.Error("organizer must see own draft")
	}

	published := &Event{Status: EventStatusPublished, IsActive: true}
	if !published.VisibleTo(Actor{}) {
		t.Error("anonymous must see published events")
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Jazz Night 2025":      "jazz-night-2025",
		"  Hello,   World!  ":  "hello-world",
		"Концерт в парке":      "kontsert-v-parke",
		"Выставки":             "vystavki",
		"---":                  "",
		"Rock & Roll — Live!!": "rock-roll-live",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOrder_StateMachine(t *testing.T) {
	now := time.Now()
	o := &Order{Status: OrderStatusPending}

	if err := o.MarkPaid(now); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if o.PaidAt == nil || o.Status != OrderStatusPaid {
		t.Fatal("order should be PAID with paid_at")
	}
	if err := o.Cancel(now); !errors.Is(err, ErrOrderNotPending) {
		t.Errorf("paid order must not be canceled, got %v", err)
	}
	if err := o.MarkPaid(now); !errors.Is(err, ErrOrderNotPending) {
		t.Errorf("paid order must not be paid twice, got %v", err)
	}
}

func TestOrder_RecalculateTotal(t *testing.T) {
	o := &Order{Items: []*OrderItem{
		{Quantity: 2, UnitPrice: decimal.RequireFromString("1500.50")},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("0")},
		{Quantity: 3, UnitPrice: decimal.RequireFromString("99.99")},
	}}
	o.RecalculateTotal()

	if want := decimal.RequireFromString("3300.97"); !o.TotalAmount.Equal(want) {
		t.Errorf("TotalAmount = %s, want %s", o.TotalAmount, want)
	}
	if o.TicketCount() != 6 {
		t.Errorf("TicketCount = %d, want 6", o.TicketCount())
	}
}

func TestTicket_QRPayloadRoundTrip(t *testing.T) {
	ticket := &Ticket{ID: "t-1", EventID: "e-1", Code: NewTicketCode()}
	if len(ticket.Code) != 32 {
		t.Fatalf("code length = %d, want 32", len(ticket.Code))
	}

	ref, err := ParseScanInput(ticket.QRPayload())
	if err != nil {
		t.Fatalf("ParseScanInput: %v", err)
	}
	if !ref.Matches(ticket) {
		t.Errorf("ref %+v should match ticket", ref)
	}

	ref.EventID = "other"
	if ref.Matches(ticket) {
		t.Error("mismatched event must not match")
	}
}

func TestParseScanInput(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
		code    string
	}{
		{"ABCDEF0123", false, "abcdef0123"},
		{"TICKET:1|HASH:abc|EVENT:2", false, "abc"},
		{"TICKET:1|EVENT:2", true, ""},
		{"TICKET:1|HASH:|EVENT:2", true, ""},
		{"TICKET:1|HASH:abc|SEAT:4", true, ""},
		{"", true, ""},
		{"not a code", true, ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			ref, err := ParseScanInput(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQRCode) {
					t.Errorf("expected ErrInvalidQRCode, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ref.Code != tt.code {
				t.Errorf("Code = %q, want %q", ref.Code, tt.code)
			}
		})
	}
}

func TestOrganizerApplication_Decide(t *testing.T) {
	app := &OrganizerApplication{Status: ApplicationStatusInReview}
	if err := app.Decide(ApplicationStatusApproved, "admin", ""); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if err := app.Decide(ApplicationStatusRejected, "admin", "late"); !errors.Is(err, ErrInvalidApplicationStatus) {
		t.Errorf("decided application must not change, got %v", err)
	}
	if err := (&OrganizerApplication{Status: ApplicationStatusNew}).Decide(ApplicationStatusInReview, "a", ""); err == nil {
		t.Error("in_review is not a decision")
	}
}

func TestContactMessage_Validate(t *testing.T) {
	if err := (&ContactMessage{Phone: "+79990000000"}).Validate(); err != nil {
		t.Errorf("phone only should be valid: %v", err)
	}
	if err := (&ContactMessage{Email: " "}).Validate(); !errors.Is(err, ErrContactMissing) {
		t.Errorf("expected ErrContactMissing, got %v", err)
	}
}

func TestFillDays(t *testing.T) {
	from := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	rows := []DailySales{
		{Day: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), Revenue: decimal.NewFromInt(500), TicketsSold: 2},
	}

	days := FillDays(from, 3, rows)
	if len(days) != 3 {
		t.Fatalf("len = %d, want 3", len(days))
	}
	if days[1].TicketsSold != 2 || !days[1].Revenue.Equal(decimal.NewFromInt(500)) {
		t.Errorf("day 2 = %+v", days[1])
	}
	if days[0].TicketsSold != 0 || !days[0].Revenue.IsZero() {
		t.Errorf("day 1 should be zero-filled, got %+v", days[0])
	}
}

func TestErrorClassification(t *testing.T) {
	wrapped := fmt.Errorf("finalize: %w", ErrInsufficientQuota)
	if !IsConflictError(wrapped) {
		t.Error("insufficient quota is a conflict")
	}
	if !IsNotFoundError(ErrTicketNotFound) {
		t.Error("ticket not found is a not-found error")
	}
	if !IsValidationError(ErrCartEmpty) {
		t.Error("empty cart is a validation error")
	}
	if IsNotFoundError(errors.New("boom")) {
		t.Error("unknown errors are not classified")
	}
}

func TestRole(t *testing.T) {
	if !RoleAdmin.IsStaff() || !RoleModerator.IsStaff() || RoleOrganizer.IsStaff() {
		t.Error("staff is moderator or admin")
	}
	if !RoleOrganizer.CanOrganize() || RoleUser.CanOrganize() {
		t.Error("organizers and staff can organize")
	}
	if Role("root").IsValid() {
		t.Error("unknown role must be invalid")
	}
}

func TestPaymentStatus_HoldsOrder(t *testing.T) {
	tests := map[PaymentStatus]bool{
		PaymentStatusPending:   true,
		PaymentStatusSucceeded: true,
		PaymentStatusCanceled:  false,
		PaymentStatusFailed:    false,
	}
	for status, want := range tests {
		if got := status.HoldsOrder(); got != want {
			t.Errorf("%s.HoldsOrder() = %v, want %v", status, got, want)
		}
	}
}
