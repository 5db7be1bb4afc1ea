package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fidelipromo/loyalty-service/internal/domain"
	"github.com/fidelipromo/loyalty-service/internal/session"
	apperrors "github.com/fidelipromo/loyalty-service/pkg/util/errorutil"
)

type contextFixture struct {
	businesses  *fakeBusinessRepo
	memberships *fakeMembershipRepo
	customers   *fakeCustomerRepo
	sessions    session.Store
	svc         *ContextService
}

func newContextFixture() *contextFixture {
	businesses := newFakeBusinessRepo()
	memberships := newFakeMembershipRepo(businesses)
	customers := newFakeCustomerRepo()
	sessions := session.NewMemoryStore()
	return &contextFixture{
		businesses:  businesses,
		memberships: memberships,
		customers:   customers,
		sessions:    sessions,
		svc:         NewContextService(memberships, customers, sessions, zap.NewNop()),
	}
}

func (f *contextFixture) addBusiness(t *testing.T, name, userID string, role domain.BusinessRole) string {
	t.Helper()
	business := &domain.Business{OwnerUserID: userID, Name: name}
	require.NoError(t, f.businesses.Create(context.Background(), business))
	require.NoError(t, f.memberships.Create(context.Background(), &domain.Membership{
		BusinessID: business.ID,
		UserID:     userID,
		Role:       role,
	}))
	return business.ID
}

func (f *contextFixture) addCustomer(t *testing.T, userID, code string) string {
	t.Helper()
	customer := &domain.Customer{UserID: userID, ReferralCode: code}
	require.NoError(t, f.customers.Create(context.Background(), customer))
	return customer.ID
}

func freshSession(identityID string) *session.Session {
	now := time.Now()
	return &session.Session{
		IdentityID: identityID,
		Email:      identityID + "@example.com",
		UserType:   domain.UserTypeCustomer,
		Generation: 1,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Hour),
	}
}

func TestContextService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("zero contexts leaves nothing selected", func(t *testing.T) {
		f := newContextFixture()
		sess := freshSession("id-0")

		require.NoError(t, f.svc.Refresh(ctx, sess))

		assert.Empty(t, sess.Contexts)
		assert.Nil(t, sess.SelectedContext)
		assert.Equal(t, NextLogin, Next(sess))
	})

	t.Run("single business context is selected automatically", func(t *testing.T) {
		f := newContextFixture()
		bizID := f.addBusiness(t, "Cafe Aroma", "id-1", domain.BusinessRoleAdmin)
		sess := freshSession("id-1")

		require.NoError(t, f.svc.Refresh(ctx, sess))

		require.NotNil(t, sess.SelectedContext)
		assert.Equal(t, bizID, sess.SelectedContext.ID)
		assert.Equal(t, domain.ContextTypeBusiness, sess.SelectedContext.Type)
		assert.Equal(t, domain.BusinessRoleAdmin, sess.SelectedContext.Role)
		assert.Equal(t, "Cafe Aroma", sess.SelectedContext.Name)
		assert.Equal(t, NextDashboard, Next(sess))
	})

	t.Run("single customer context is selected automatically", func(t *testing.T) {
		f := newContextFixture()
		custID := f.addCustomer(t, "id-2", "CODE1234")
		sess := freshSession("id-2")

		require.NoError(t, f.svc.Refresh(ctx, sess))

		require.NotNil(t, sess.SelectedContext)
		assert.Equal(t, custID, sess.SelectedContext.ID)
		assert.Equal(t, domain.ContextTypeCustomer, sess.SelectedContext.Type)
		assert.Equal(t, NextCustomerApp, Next(sess))
	})

	t.Run("multiple contexts require an explicit choice", func(t *testing.T) {
		f := newContextFixture()
		f.addBusiness(t, "Cafe Aroma", "id-3", domain.BusinessRoleAdmin)
		f.addCustomer(t, "id-3", "CODE9999")
		sess := freshSession("id-3")

		require.NoError(t, f.svc.Refresh(ctx, sess))

		assert.Len(t, sess.Contexts, 2)
		assert.Nil(t, sess.SelectedContext)
		assert.Equal(t, NextSelectContext, Next(sess))
	})

	t.Run("previous selection survives while still resolved", func(t *testing.T) {
		f := newContextFixture()
		bizID := f.addBusiness(t, "Cafe Aroma", "id-4", domain.BusinessRoleAdmin)
		f.addCustomer(t, "id-4", "CODE7777")

		sess := freshSession("id-4")
		require.NoError(t, f.svc.Refresh(ctx, sess))
		_, err := f.svc.Select(ctx, "id-4", domain.AppContext{Type: domain.ContextTypeBusiness, ID: bizID})
		require.NoError(t, err)

		stored, err := f.sessions.Get(ctx, "id-4")
		require.NoError(t, err)
		require.NoError(t, f.svc.Refresh(ctx, stored))

		require.NotNil(t, stored.SelectedContext)
		assert.Equal(t, bizID, stored.SelectedContext.ID)
	})

	t.Run("selection is dropped when the context disappears", func(t *testing.T) {
		f := newContextFixture()
		bizID := f.addBusiness(t, "Cafe Aroma", "id-5", domain.BusinessRoleOperator)
		f.addCustomer(t, "id-5", "CODE5555")

		sess := freshSession("id-5")
		require.NoError(t, f.svc.Refresh(ctx, sess))
		_, err := f.svc.Select(ctx, "id-5", domain.AppContext{Type: domain.ContextTypeBusiness, ID: bizID})
		require.NoError(t, err)

		require.NoError(t, f.memberships.Delete(ctx, bizID, "id-5"))

		stored, err := f.sessions.Get(ctx, "id-5")
		require.NoError(t, err)
		require.NoError(t, f.svc.Refresh(ctx, stored))

		// only the customer context remains, so it gets selected
		require.NotNil(t, stored.SelectedContext)
		assert.Equal(t, domain.ContextTypeCustomer, stored.SelectedContext.Type)
	})

	t.Run("superseded refresh is discarded silently", func(t *testing.T) {
		f := newContextFixture()
		f.addCustomer(t, "id-6", "CODE6666")

		current := freshSession("id-6")
		current.Generation = 7
		require.NoError(t, f.sessions.Put(ctx, current))

		stale := freshSession("id-6")
		stale.Generation = 2
		require.NoError(t, f.svc.Refresh(ctx, stale))

		stored, err := f.sessions.Get(ctx, "id-6")
		require.NoError(t, err)
		assert.Equal(t, uint64(7), stored.Generation)
	})
}

func TestContextService_Select(t *testing.T) {
	ctx := context.Background()

	t.Run("selects a resolved context and keeps stored attributes", func(t *testing.T) {
		f := newContextFixture()
		bizID := f.addBusiness(t, "Cafe Aroma", "id-1", domain.BusinessRoleOperator)
		f.addCustomer(t, "id-1", "CODE1111")

		sess := freshSession("id-1")
		require.NoError(t, f.svc.Refresh(ctx, sess))

		// the client only sends type and id; role and name come from storage
		updated, err := f.svc.Select(ctx, "id-1", domain.AppContext{
			Type: domain.ContextTypeBusiness,
			ID:   bizID,
			Role: domain.BusinessRoleAdmin,
		})
		require.NoError(t, err)
		require.NotNil(t, updated.SelectedContext)
		assert.Equal(t, domain.BusinessRoleOperator, updated.SelectedContext.Role)
		assert.Equal(t, "Cafe Aroma", updated.SelectedContext.Name)
	})

	t.Run("rejects a context the identity does not hold", func(t *testing.T) {
		f := newContextFixture()
		f.addCustomer(t, "id-2", "CODE2222")

		sess := freshSession("id-2")
		require.NoError(t, f.svc.Refresh(ctx, sess))

		_, err := f.svc.Select(ctx, "id-2", domain.AppContext{
			Type: domain.ContextTypeBusiness,
			ID:   "someone-elses-business",
		})
		require.Error(t, err)
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
	})

	t.Run("fails without an active session", func(t *testing.T) {
		f := newContextFixture()

		_, err := f.svc.Select(ctx, "nobody", domain.AppContext{
			Type: domain.ContextTypeCustomer,
			ID:   "cust-1",
		})
		assert.ErrorIs(t, err, session.ErrNotFound)
	})
}
