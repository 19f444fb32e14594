package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/roguepikachu/roster/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var studentColumns = []string{"id", "first_name", "last_name", "email", "active", "address", "languages"}

func newMockRepo(t *testing.T) (*StudentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStudentRepository(db), mock
}

// newTestRepo creates an in-memory SQLite repository for testing.
func newTestRepo(t *testing.T) *StudentRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	repo := NewStudentRepository(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestSQLiteRepo_GetByID_Mock(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(studentColumns).
			AddRow(1, "Mario", "Rossi", "", true, `{"street":"Via Roma","city":"Rome"}`, `["Italian"]`)
		mock.ExpectQuery("SELECT (.+) FROM students WHERE id = ?").WithArgs(1).WillReturnRows(rows)

		l, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		s, ok := l.Student()
		require.True(t, ok)
		assert.Equal(t, "Rossi", s.LastName)
		assert.True(t, s.Active)
		require.NotNil(t, s.Address)
		assert.Equal(t, "Rome", s.Address.City)
		assert.Equal(t, []string{"Italian"}, s.Languages)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM students WHERE id = ?").WithArgs(5).WillReturnError(sql.ErrNoRows)

		l, err := repo.GetByID(ctx, 5)
		require.NoError(t, err)
		assert.False(t, l.IsFound())
		assert.Equal(t, 5, l.ID())
	})

	t.Run("backend failure", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM students WHERE id = ?").WithArgs(2).WillReturnError(errors.New("disk I/O error"))

		_, err := repo.GetByID(ctx, 2)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepo_SaveNew_Mock(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE id_sequences SET next_id = next_id \\+ 1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(0))
	mock.ExpectExec("INSERT INTO students").
		WithArgs(0, "Poornima", "Patel", "", false, nil, "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE id_sequences SET next_id = MAX").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s, err := repo.Save(context.Background(), domain.NewStudent("Poornima", "Patel"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepo_SaveRollsBackOnFailure_Mock(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	_, err := repo.Save(context.Background(), domain.Student{ID: 3, FirstName: "Mary", LastName: "Smith"})
	assert.ErrorContains(t, err, "save student")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepo_DeleteByID_Mock(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("DELETE FROM students WHERE id = ?").WithArgs(9).WillReturnError(sql.ErrNoRows)

	l, err := repo.DeleteByID(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, l.IsFound())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepo_CRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := domain.NewStudent("Poornima", "Patel")
	first.Languages = []string{"Hindi"}
	a, err := repo.Save(ctx, first)
	require.NoError(t, err)
	b, err := repo.Save(ctx, domain.NewStudent("Mario", "Rossi"))
	require.NoError(t, err)
	assert.Equal(t, 0, a.ID)
	assert.Equal(t, 1, b.ID)

	b.Address = &domain.Address{Street: "Via Roma", City: "Rome"}
	_, err = repo.Save(ctx, b)
	require.NoError(t, err)

	l, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	got, ok := l.Student()
	require.True(t, ok)
	require.NotNil(t, got.Address)
	assert.Equal(t, "Rome", got.Address.City)

	del, err := repo.DeleteByID(ctx, 0)
	require.NoError(t, err)
	assert.True(t, del.IsFound())
	del, err = repo.DeleteByID(ctx, 0)
	require.NoError(t, err)
	assert.False(t, del.IsFound())

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 1, all[0].ID)

	c, err := repo.Save(ctx, domain.NewStudent("Mary", "Smith"))
	require.NoError(t, err)
	assert.Equal(t, 2, c.ID, "ids are not reused")
}
