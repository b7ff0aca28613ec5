package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"eventbooking/internal/domain"
)

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	t.Run("applies embedded schema", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS events`).WillReturnResult(sqlmock.NewResult(0, 0))

		applied, err := Migrate(ctx, NewStaticConnector(db))
		require.NoError(t, err)
		require.Equal(t, []string{"migrations/0001_init.sql"}, applied)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`CREATE TABLE`).WillReturnError(sql.ErrConnDone)

		applied, err := Migrate(ctx, NewStaticConnector(db))
		require.ErrorIs(t, err, domain.ErrStorage)
		require.Empty(t, applied)
	})
}
