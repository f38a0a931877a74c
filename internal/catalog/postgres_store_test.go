package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceColumns = []string{"id", "name", "description", "duration_minutes", "price", "is_active"}

func TestPostgresStoreList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, name, description, duration_minutes, price, is_active").
		WillReturnRows(pgxmock.NewRows(serviceColumns).
			AddRow("s1", "Intro Class", "", 30, 39.0, true).
			AddRow("s2", "Personal Training", "", 60, 89.0, false))

	store := NewPostgresStore(mock)
	services, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "s1", services[0].ID)
	assert.False(t, services[1].IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM services").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgresStore(mock).Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreReplaceAllIsTransactional(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	services := []Service{
		{ID: "s1", Name: "Intro Class", DurationMinutes: 30, Price: 39, IsActive: true},
		{ID: "s2", Name: "Personal Training", DurationMinutes: 60, Price: 89, IsActive: true},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM services").WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec("INSERT INTO services").
		WithArgs("s1", 0, "Intro Class", "", 30, 39.0, true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO services").
		WithArgs("s2", 1, "Personal Training", "", 60, 89.0, true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresStore(mock).ReplaceAll(context.Background(), services))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreReplaceAllRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM services").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO services").WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err = NewPostgresStore(mock).ReplaceAll(context.Background(), []Service{{ID: "s1", Name: "X", DurationMinutes: 30}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constraint violation")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE services").
		WithArgs("s9", "X", "", 30, 0.0, false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = NewPostgresStore(mock).Save(context.Background(), Service{ID: "s9", Name: "X", DurationMinutes: 30})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRejectsMalformedIDsBeforeQuerying(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := New(NewPostgresStore(mock), nil)
	_, err = c.Get(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = c.SetActive(context.Background(), "not-a-uuid", false)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
