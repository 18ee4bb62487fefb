package controllers

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	gdb, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	return gdb, mock, func() { db.Close() }
}

func TestDeletePointReasonFreesUniqueName(t *testing.T) {
	gdb, mock, cleanup := newMockGorm(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `point_reasons`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Homework done"))
	// Hard delete, not a deleted_at update: the name must leave the unique
	// index so the preset can be recreated.
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `point_reasons`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	reason, err := deletePointReason(gdb, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason.Name != "Homework done" {
		t.Fatalf("unexpected reason: %+v", reason)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeletePointReasonNotFound(t *testing.T) {
	gdb, mock, cleanup := newMockGorm(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `point_reasons`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := deletePointReason(gdb, 99); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestDeleteUserFreesUniqueUsername(t *testing.T) {
	gdb, mock, cleanup := newMockGorm(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(5, "alice01"))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `users`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, err := deleteUser(gdb, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "alice01" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
