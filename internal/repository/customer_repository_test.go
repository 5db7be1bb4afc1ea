package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fidelipromo/loyalty-service/internal/domain"
)

func newCustomerRepoMock(t *testing.T) (CustomerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewCustomerRepository(mock), mock
}

func TestCustomerRepository_Create(t *testing.T) {
	repo, mock := newCustomerRepoMock(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO customers`).
		WithArgs("user-1", "Alice", "Doe", "555-0100", "ABCD1234", (*string)(nil), (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("cust-1", now, now))

	customer := &domain.Customer{
		UserID:       "user-1",
		FirstName:    "Alice",
		LastName:     "Doe",
		Phone:        "555-0100",
		ReferralCode: "ABCD1234",
	}
	require.NoError(t, repo.Create(context.Background(), customer))
	assert.Equal(t, "cust-1", customer.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_GetByReferralCode(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newCustomerRepoMock(t)
		now := time.Now()

		mock.ExpectQuery(`SELECT(.|\s)+FROM customers WHERE referral_code=\$1`).
			WithArgs("ABCD1234").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "user_id", "first_name", "last_name", "phone", "referral_code",
				"referred_by_code", "referred_by_customer_id", "created_at", "updated_at",
			}).AddRow("cust-1", "user-1", "Alice", "Doe", "", "ABCD1234", (*string)(nil), (*string)(nil), now, now))

		customer, err := repo.GetByReferralCode(context.Background(), "ABCD1234")
		require.NoError(t, err)
		assert.Equal(t, "cust-1", customer.ID)
		assert.Nil(t, customer.ReferredByCustomerID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newCustomerRepoMock(t)

		mock.ExpectQuery(`SELECT(.|\s)+FROM customers WHERE referral_code=\$1`).
			WithArgs("NOSUCH00").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByReferralCode(context.Background(), "NOSUCH00")
		assert.ErrorIs(t, err, pgx.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCustomerRepository_Update(t *testing.T) {
	t.Run("updates the row", func(t *testing.T) {
		repo, mock := newCustomerRepoMock(t)

		mock.ExpectExec(`UPDATE customers SET`).
			WithArgs("Alice", "Doe", "555-0100", "cust-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.Update(context.Background(), &domain.Customer{
			ID:        "cust-1",
			FirstName: "Alice",
			LastName:  "Doe",
			Phone:     "555-0100",
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row maps to ErrNoRows", func(t *testing.T) {
		repo, mock := newCustomerRepoMock(t)

		mock.ExpectExec(`UPDATE customers SET`).
			WithArgs("Alice", "Doe", "", "ghost").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(context.Background(), &domain.Customer{
			ID:        "ghost",
			FirstName: "Alice",
			LastName:  "Doe",
		})
		assert.ErrorIs(t, err, pgx.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCustomerRepository_CountReferredBy(t *testing.T) {
	repo, mock := newCustomerRepoMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM customers WHERE referred_by_customer_id=\$1`).
		WithArgs("cust-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.CountReferredBy(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
