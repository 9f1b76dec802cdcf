package service

import (
	"context"
	"testing"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitRequest() *dto.SubmitApplicationRequest {
	return &dto.SubmitApplicationRequest{
		OrganizationName: " Jazz Club ",
		About:            "We run weekly jam sessions",
		Phone:            "+79001234567",
	}
}

func TestApplicationService_Submit(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	svc := NewApplicationService(w.tx, memApps{w.store}, memUsers{w.store})

	app, err := svc.Submit(ctx, w.buyer.ID, submitRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusNew, app.Status)
	assert.Equal(t, "Jazz Club", app.OrganizationName)

	_, err = svc.Submit(ctx, w.buyer.ID, submitRequest())
	assert.ErrorIs(t, err, domain.ErrApplicationActive)

	_, err = svc.Submit(ctx, w.organizer.ID, submitRequest())
	assert.ErrorIs(t, err, domain.ErrAlreadyOrganizer)

	mine, err := svc.ListMine(ctx, w.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestApplicationService_ApproveGrantsRole(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	svc := NewApplicationService(w.tx, memApps{w.store}, memUsers{w.store})
	mod := actorOf(w.moderator)

	app, err := svc.Submit(ctx, w.buyer.ID, submitRequest())
	require.NoError(t, err)

	reviewing, err := svc.MarkInReview(ctx, mod, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusInReview, reviewing.Status)

	_, err = svc.MarkInReview(ctx, mod, app.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidApplicationStatus)

	approved, err := svc.Approve(ctx, mod, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusApproved, approved.Status)
	assert.Equal(t, w.moderator.ID, *approved.ReviewedBy)
	assert.Equal(t, domain.RoleOrganizer, w.store.users[w.buyer.ID].Role)

	_, err = svc.Reject(ctx, mod, app.ID, "too late")
	assert.ErrorIs(t, err, domain.ErrInvalidApplicationStatus)
}

func TestApplicationService_Reject(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	svc := NewApplicationService(w.tx, memApps{w.store}, memUsers{w.store})

	app, err := svc.Submit(ctx, w.buyer.ID, submitRequest())
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, actorOf(w.moderator), app.ID, " no documents ")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusRejected, rejected.Status)
	assert.Equal(t, "no documents", rejected.ReviewComment)
	assert.Equal(t, domain.RoleUser, w.store.users[w.buyer.ID].Role)

	// a rejected application no longer blocks a new one
	_, err = svc.Submit(ctx, w.buyer.ID, submitRequest())
	assert.NoError(t, err)

	pending, err := svc.List(ctx, domain.ApplicationStatusNew)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = svc.List(ctx, "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidApplicationStatus)
}

func TestFavoriteService(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	svc := NewFavoriteService(memFavorites{w.store}, memEvents{w.store})
	draft := w.addEvent("Chamber Evening", domain.EventStatusDraft)

	require.NoError(t, svc.Add(ctx, w.buyer.ID, w.event.ID))
	require.NoError(t, svc.Add(ctx, w.buyer.ID, w.event.ID))
	assert.ErrorIs(t, svc.Add(ctx, w.buyer.ID, draft.ID), domain.ErrEventNotFound)
	assert.ErrorIs(t, svc.Add(ctx, w.buyer.ID, "missing"), domain.ErrEventNotFound)

	favs, err := svc.List(ctx, w.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, favs, 1)

	require.NoError(t, svc.Remove(ctx, w.buyer.ID, w.event.ID))
	assert.ErrorIs(t, svc.Remove(ctx, w.buyer.ID, w.event.ID), domain.ErrFavoriteNotFound)
}
