package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"c79sniper/src/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestExceptionCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExceptionRepositoryWithDB(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "exceptions"`)).
		WithArgs("bot", "orchestrator", "Cycle", "bridge unreachable", "error", "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	exc := &model.Exception{
		Process: "bot",
		Module:  "orchestrator",
		Method:  "Cycle",
		Message: "bridge unreachable",
		Level:   "error",
	}
	err := repo.Create(context.Background(), exc)
	require.NoError(t, err)
	require.Equal(t, uint(7), exc.ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExceptionCreatePropagatesError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExceptionRepositoryWithDB(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "exceptions"`)).
		WillReturnError(gorm.ErrInvalidTransaction)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Exception{Process: "bot"})
	require.Error(t, err)
}
