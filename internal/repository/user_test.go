package repository_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/deppfellow/users-api/internal/model"
	repo "github.com/deppfellow/users-api/internal/repository"
	"github.com/deppfellow/users-api/internal/sqlerr"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "email", "name"}

func newMockRepo(t *testing.T) (*repo.UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return repo.NewUserRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func strPtr(s string) *string { return &s }

func TestUserRepository_FindAll(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, name FROM users`)).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "a@x.io", "Alice").
			AddRow(2, "b@x.io", "Bob"))

	users, err := r.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.User{
		{ID: 1, Email: "a@x.io", Name: "Alice"},
		{ID: 2, Email: "b@x.io", Name: "Bob"},
	}, users)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindAll_EmptyIsNotNil(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, name FROM users`)).
		WillReturnRows(sqlmock.NewRows(userCols))

	users, err := r.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserRepository_FindByID(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, name FROM users WHERE id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(7, "g@x.io", "Gail"))

	user, err := r.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, model.User{ID: 7, Email: "g@x.io", Name: "Gail"}, user)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, name FROM users WHERE id = $1`)).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := r.FindByID(context.Background(), 999)
	require.ErrorIs(t, err, repo.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (email, name) VALUES ($1, $2) RETURNING id, email, name`)).
		WithArgs("a@x.io", "Alice").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "a@x.io", "Alice"))

	user, err := r.Create(context.Background(), &model.CreateUserRequest{Email: "a@x.io", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DatabaseErrorIsNormalized(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pgconn.PgError{Code: "23502", TableName: "users", ColumnName: "name"})

	_, err := r.Create(context.Background(), &model.CreateUserRequest{Email: "a@x.io", Name: "Alice"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, repo.ErrUserNotFound))

	var sqlErr *sqlerr.Error
	require.ErrorAs(t, err, &sqlErr)
	assert.Equal(t, sqlerr.NotNullViolation, sqlErr.Code)
	assert.Equal(t, "name", sqlErr.ColumnName)
}

func TestUserRepository_Update(t *testing.T) {
	tests := []struct {
		name  string
		req   *model.UpdateUserRequest
		query string
		args  []driver.Value
	}{
		{
			name:  "name only",
			req:   &model.UpdateUserRequest{ID: 1, Name: strPtr("Alicia")},
			query: `UPDATE users SET name = $1 WHERE id = $2 RETURNING id, email, name`,
			args:  []driver.Value{"Alicia", int64(1)},
		},
		{
			name:  "email only",
			req:   &model.UpdateUserRequest{ID: 1, Email: strPtr("new@x.io")},
			query: `UPDATE users SET email = $1 WHERE id = $2 RETURNING id, email, name`,
			args:  []driver.Value{"new@x.io", int64(1)},
		},
		{
			name:  "both",
			req:   &model.UpdateUserRequest{ID: 1, Email: strPtr("new@x.io"), Name: strPtr("Alicia")},
			query: `UPDATE users SET email = $1, name = $2 WHERE id = $3 RETURNING id, email, name`,
			args:  []driver.Value{"new@x.io", "Alicia", int64(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mock := newMockRepo(t)

			mock.ExpectQuery("^" + regexp.QuoteMeta(tt.query) + "$").
				WithArgs(tt.args...).
				WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "new@x.io", "Alicia"))

			_, err := r.Update(context.Background(), tt.req)
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Update_NoFieldsReadsCurrentRow(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, name FROM users WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(3, "c@x.io", "Cy"))

	user, err := r.Update(context.Background(), &model.UpdateUserRequest{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, "Cy", user.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_NotFound(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET name = $1 WHERE id = $2`)).
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := r.Update(context.Background(), &model.UpdateUserRequest{ID: 42, Name: strPtr("X")})
	require.ErrorIs(t, err, repo.ErrUserNotFound)
}

func TestUserRepository_Delete(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1 RETURNING id, email, name`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "a@x.io", "Alice"))

	user, err := r.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.User{ID: 1, Email: "a@x.io", Name: "Alice"}, user)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete_NotFound(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := r.Delete(context.Background(), 5)
	require.ErrorIs(t, err, repo.ErrUserNotFound)
}
