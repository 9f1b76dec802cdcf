package service

import (
	"context"
	"errors"
	"testing"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactService_Submit(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	sender := &recordingSender{}
	svc := NewContactService(memContacts{store}, sender, "staff@cult.example")

	msg, err := svc.Submit(ctx, &dto.ContactRequest{
		Name:    "Olga",
		Email:   "olga@example.com",
		Subject: "Group tickets",
		Message: "Do you sell tickets for school classes?",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ContactStatusNew, msg.Status)
	assert.Len(t, store.contacts, 1)

	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"staff@cult.example"}, sent[0].To)
	assert.Equal(t, "olga@example.com", sent[0].ReplyTo)
	assert.Contains(t, sent[0].Subject, "Group tickets")
}

func TestContactService_SubmitRequiresReplyChannel(t *testing.T) {
	store := newMemStore()
	svc := NewContactService(memContacts{store}, &recordingSender{}, "staff@cult.example")

	_, err := svc.Submit(context.Background(), &dto.ContactRequest{Name: "Anon", Message: "hi", Email: "  "})
	assert.ErrorIs(t, err, domain.ErrContactMissing)
	assert.Empty(t, store.contacts)
}

func TestContactService_MailFailureIsSwallowed(t *testing.T) {
	store := newMemStore()
	svc := NewContactService(memContacts{store}, &recordingSender{err: errors.New("dial tcp: timeout")}, "staff@cult.example")

	msg, err := svc.Submit(context.Background(), &dto.ContactRequest{Name: "Petr", Phone: "+79001112233", Message: "Call me"})
	require.NoError(t, err)
	assert.Contains(t, store.contacts, msg.ID)
}

func TestContactService_ListAndUpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewContactService(memContacts{store}, nil, "")

	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.Submit(ctx, &dto.ContactRequest{Name: name, Email: name + "@example.com", Message: "m"})
		require.NoError(t, err)
	}

	list, total, err := svc.List(ctx, &dto.ContactListQuery{PageQuery: dto.PageQuery{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, list, 2)

	require.NoError(t, svc.UpdateStatus(ctx, list[0].ID, domain.ContactStatusClosed))
	assert.ErrorIs(t, svc.UpdateStatus(ctx, list[0].ID, "archived"), domain.ErrInvalidContactStatus)
	assert.ErrorIs(t, svc.UpdateStatus(ctx, "missing", domain.ContactStatusClosed), domain.ErrContactNotFound)

	closed, total, err := svc.List(ctx, &dto.ContactListQuery{Status: "closed"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, closed, 1)
}
