package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/procure_api/internal/repository"
	"github.com/GTDGit/procure_api/internal/utils"
)

func newVendorServiceWithMock(t *testing.T) (*VendorService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewVendorService(repository.NewVendorRepository(sqlx.NewDb(db, "sqlmock"))), mock
}

var vendorRowCols = []string{"id", "name", "email", "phone", "location", "specialization", "rating", "is_active", "created_at", "updated_at"}

func TestVendorService_CreateDefaultsActive(t *testing.T) {
	svc, mock := newVendorServiceWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO vendors`).
		WithArgs(sqlmock.AnyArg(), "Shree Cement", "sales@shree.in", "9876543210", "Pune", "Cement", 4.5, true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	v, err := svc.Create(context.Background(), &CreateVendorRequest{
		Name:           "Shree Cement",
		Email:          "sales@shree.in",
		Phone:          "9876543210",
		Location:       "Pune",
		Specialization: "Cement",
		Rating:         4.5,
	})
	require.NoError(t, err)
	assert.True(t, v.IsActive)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, now, v.CreatedAt)
}

func TestVendorService_UpdatePartial(t *testing.T) {
	svc, mock := newVendorServiceWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM vendors WHERE id = \$1`).
		WithArgs("v1").
		WillReturnRows(sqlmock.NewRows(vendorRowCols).
			AddRow("v1", "Shree", "s@shree.in", "", "Pune", "Cement", 4.0, true, now, now))
	mock.ExpectQuery(`UPDATE vendors SET`).
		WithArgs("v1", "Shree", "s@shree.in", "", "Mumbai", "Cement", 4.8, true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	loc, rating := "Mumbai", 4.8
	v, err := svc.Update(context.Background(), "v1", &UpdateVendorRequest{Location: &loc, Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", v.Location)
	assert.Equal(t, 4.8, v.Rating)
}

func TestVendorService_NotFound(t *testing.T) {
	svc, mock := newVendorServiceWithMock(t)

	mock.ExpectQuery(`SELECT .* FROM vendors WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`UPDATE vendors SET is_active = false`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, utils.ErrVendorNotFound)

	err = svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, utils.ErrVendorNotFound)
}
