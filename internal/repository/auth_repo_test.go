package repository

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newUserRepoMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet mock expectations: %v", err)
		}
		_ = db.Close()
	})
	return NewUserRepository(db), mock
}

func TestUserRepository_CreateReturnsInsertID(t *testing.T) {
	t.Parallel()
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
		WithArgs("operator1", "$2a$10$hash").
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := repo.Create("operator1", "$2a$10$hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 42 {
		t.Fatalf("want id 42, got %d", id)
	}
}

func TestUserRepository_CreateExecErrorWrapped(t *testing.T) {
	t.Parallel()
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
		WithArgs("operator2", "h456").
		WillReturnError(errors.New("constraint failed"))

	id, err := repo.Create("operator2", "h456")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), `insert user "operator2"`) {
		t.Fatalf("error should name the operation and user, got %q", err)
	}
	if id != 0 {
		t.Fatalf("want id 0 on error, got %d", id)
	}
}

func TestUserRepository_CreateLastInsertIDError(t *testing.T) {
	t.Parallel()
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
		WithArgs("operator3", "h789").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("not supported")))

	if _, err := repo.Create("operator3", "h789"); err == nil || !strings.Contains(err.Error(), "get last insert id") {
		t.Fatalf("expected last-insert-id error, got %v", err)
	}
}

func TestUserRepository_GetByUsernameFound(t *testing.T) {
	t.Parallel()
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
		WithArgs("operator1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash"}).
			AddRow(7, "operator1", "$2a$10$hash"))

	u, err := repo.GetByUsername("operator1")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u == nil {
		t.Fatalf("expected user, got nil")
	}
	if u.ID != 7 || u.Username != "operator1" || u.PasswordHash != "$2a$10$hash" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserRepository_GetByUsernameMissingIsNotAnError(t *testing.T) {
	t.Parallel()
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetByUsername("ghost")
	if err != nil {
		t.Fatalf("missing user must not error, got %v", err)
	}
	if u != nil {
		t.Fatalf("want nil user for missing row, got %+v", u)
	}
}

func TestUserRepository_GetByUsernameQueryErrorWrapped(t *testing.T) {
	t.Parallel()
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
		WithArgs("operator2").
		WillReturnError(errors.New("disk I/O error"))

	u, err := repo.GetByUsername("operator2")
	if err == nil || !strings.Contains(err.Error(), `select user "operator2"`) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
	if u != nil {
		t.Fatalf("want nil user on error, got %+v", u)
	}
}
