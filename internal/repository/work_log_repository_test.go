package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockRepo(t *testing.T) (WorkLogRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewWorkLogRepository(db), mock
}

func TestCountOwnedByIDs_SingleQuery(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT count(*) FROM "work_logs" WHERE id IN ($1,$2,$3) AND user_id = $4`)).
		WithArgs(int64(10), int64(11), int64(12), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountOwnedByIDs([]uint64{10, 11, 12}, 7)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_IssuesHardDelete(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM "work_logs" WHERE "work_logs"."id" = $1`)).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(42))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `50\%`, escapeLike("50%"))
	require.Equal(t, `a\_b`, escapeLike("a_b"))
	require.Equal(t, `back\\slash`, escapeLike(`back\slash`))
	require.Equal(t, "plain", escapeLike("plain"))
}
