package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminCreateOffer_BypassesModeration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.merchant(t, domain.PlanSilver, false)

	o, err := f.admin.AdminCreateOffer(ctx, f.superAdmin(t), m.UserID, offerInput("Onam Sadya"))
	require.NoError(t, err)
	assert.Equal(t, domain.OfferApproved, o.Status)
	assert.True(t, o.IsActive)
	assert.Equal(t, m.UserID, o.MerchantID)

	visible, err := f.catalog.ListVisibleOffers(ctx, domain.OfferFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, o.ID, visible[0].ID)
}

func TestAdminCreateOffer_Checks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.superAdmin(t)
	m := f.merchant(t, domain.PlanSilver, false)

	_, err := f.admin.AdminCreateOffer(ctx, m, m.UserID, offerInput("Self Approved"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	in := offerInput("Hot Pick")
	in.ListingType = domain.ListingHotOffers
	_, err = f.admin.AdminCreateOffer(ctx, admin, m.UserID, in)
	assert.ErrorIs(t, err, domain.ErrListingTypeNotAllowed)

	_, err = f.admin.AdminCreateOffer(ctx, admin, f.customer(t).UserID, offerInput("Not A Shop"))
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)

	_, err = f.admin.AdminCreateOffer(ctx, admin, uuid.New(), offerInput("Ghost"))
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestAdminUpdateOfferStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.superAdmin(t)
	m := f.merchant(t, domain.PlanGold, false)

	approveMe, err := f.catalog.CreateOffer(ctx, m, offerInput("Approve Me"))
	require.NoError(t, err)
	rejectMe, err := f.catalog.CreateOffer(ctx, m, offerInput("Reject Me"))
	require.NoError(t, err)

	queue, err := f.catalog.ReviewQueue(ctx, admin, 0)
	require.NoError(t, err)
	assert.Len(t, queue, 2)

	_, err = f.admin.AdminUpdateOfferStatus(ctx, m, approveMe.ID, domain.OfferApproved)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	o, err := f.admin.AdminUpdateOfferStatus(ctx, admin, approveMe.ID, domain.OfferApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferApproved, o.Status)

	o, err = f.admin.AdminUpdateOfferStatus(ctx, admin, rejectMe.ID, domain.OfferRejected)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferRejected, o.Status)

	tests := []struct {
		name string
		id   uuid.UUID
		to   domain.OfferStatus
	}{
		{"approved is terminal", approveMe.ID, domain.OfferRejected},
		{"rejected is terminal", rejectMe.ID, domain.OfferApproved},
		{"back to review", approveMe.ID, domain.OfferInReview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.admin.AdminUpdateOfferStatus(ctx, admin, tt.id, tt.to)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		})
	}

	queue, err = f.catalog.ReviewQueue(ctx, admin, 0)
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestAdminEditOffer_GatesOnOwnerPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.superAdmin(t)
	m := f.merchant(t, domain.PlanSilver, false)

	o, err := f.catalog.CreateOffer(ctx, m, offerInput("Plain Deal"))
	require.NoError(t, err)

	in := offerInput("Plain Deal Updated")
	edited, err := f.admin.AdminEditOffer(ctx, admin, o.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Plain Deal Updated", edited.Title)
	assert.Equal(t, domain.OfferInReview, edited.Status)

	in.ListingType = domain.ListingTrending
	_, err = f.admin.AdminEditOffer(ctx, admin, o.ID, in)
	assert.ErrorIs(t, err, domain.ErrListingTypeNotAllowed)

	_, err = f.profiles.SetPlan(ctx, admin, m.UserID, domain.PlanGold, false)
	require.NoError(t, err)
	edited, err = f.admin.AdminEditOffer(ctx, admin, o.ID, in)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingTrending, edited.ListingType)
}
