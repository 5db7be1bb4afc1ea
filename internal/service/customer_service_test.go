package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fidelipromo/loyalty-service/internal/domain"
	apperrors "github.com/fidelipromo/loyalty-service/pkg/util/errorutil"
)

func TestCustomerService_Profile(t *testing.T) {
	ctx := context.Background()
	customers := newFakeCustomerRepo()
	ledger := newFakeLedgerRepo()
	svc := NewCustomerService(customers, ledger)

	customer := &domain.Customer{UserID: "user-1", FirstName: "Alice", ReferralCode: "ABCD1234"}
	require.NoError(t, customers.Create(ctx, customer))

	got, err := svc.Profile(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FirstName)

	_, err = svc.Profile(ctx, "missing")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestCustomerService_Balances(t *testing.T) {
	ctx := context.Background()
	customers := newFakeCustomerRepo()
	ledger := newFakeLedgerRepo()
	svc := NewCustomerService(customers, ledger)

	require.NoError(t, ledger.CreditBalance(ctx, "cust-1", "biz-1", 4.50))
	require.NoError(t, ledger.CreditBalance(ctx, "cust-1", "biz-2", 2.25))
	require.NoError(t, ledger.CreditBalance(ctx, "cust-2", "biz-1", 99))

	balances, totals, err := svc.Balances(ctx, "cust-1")
	require.NoError(t, err)
	assert.Len(t, balances, 2)
	assert.InDelta(t, 6.75, totals.TotalAvailable, 1e-9)
	assert.InDelta(t, 6.75, totals.TotalEarned, 1e-9)
}

func TestCustomerService_Referrals(t *testing.T) {
	ctx := context.Background()
	customers := newFakeCustomerRepo()
	ledger := newFakeLedgerRepo()
	svc := NewCustomerService(customers, ledger)

	referrer := &domain.Customer{UserID: "user-1", ReferralCode: "REF00001"}
	require.NoError(t, customers.Create(ctx, referrer))

	for i := 0; i < 3; i++ {
		referred := &domain.Customer{
			UserID:               "user-referred",
			ReferralCode:         "X",
			ReferredByCustomerID: &referrer.ID,
		}
		require.NoError(t, customers.Create(ctx, referred))
	}
	ledger.earnings[referrer.ID] = 12.40

	stats, err := svc.Referrals(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.DirectReferrals)
	assert.Equal(t, 12.40, stats.TotalEarnings)
}
