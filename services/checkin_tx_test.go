package services

import (
	"errors"
	"testing"

	"classquest_go/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB swaps the global DB for a sqlmock-backed GORM handle configured
// like production (TranslateError on, so MySQL 1062 surfaces as
// gorm.ErrDuplicatedKey).
func newMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
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

	prev := database.DB
	database.DB = gdb
	return mock, func() {
		database.DB = prev
		db.Close()
	}
}

func expectSessionLookup(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT .* FROM `attendance_sessions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(1, "Friday class"))
}

func TestCheckInCommitsRecordAndAwardTogether(t *testing.T) {
	mock, restore := newMockDB(t)
	defer restore()

	expectSessionLookup(mock)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `attendance_records`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role"}).AddRow(4, "student"))
	mock.ExpectExec("INSERT INTO `points_transactions`").
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectCommit()

	record, err := NewCheckinService().CheckIn(1, 4, "manual")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.SessionID != 1 || record.StudentID != 4 || record.CheckInMethod != "manual" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCheckInRollsBackWhenAwardFails(t *testing.T) {
	mock, restore := newMockDB(t)
	defer restore()

	expectSessionLookup(mock)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `attendance_records`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	if _, err := NewCheckinService().CheckIn(1, 4, "manual"); err == nil {
		t.Fatalf("expected error when the ledger append fails")
	}
	// Rollback being the next expected call proves the record insert never
	// commits without its award row.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCheckInDuplicateSurfacesAsAlreadyCheckedIn(t *testing.T) {
	mock, restore := newMockDB(t)
	defer restore()

	expectSessionLookup(mock)
	mock.ExpectBegin()
	// The unique (session_id, student_id) index rejects the loser of a
	// concurrent pair with MySQL error 1062.
	mock.ExpectExec("INSERT INTO `attendance_records`").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-4'"})
	mock.ExpectRollback()

	_, err := NewCheckinService().CheckIn(1, 4, "qr")
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUndoCheckInDeletesRecordAndAward(t *testing.T) {
	mock, restore := newMockDB(t)
	defer restore()

	expectSessionLookup(mock)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `attendance_records`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `points_transactions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := NewCheckinService().UndoCheckIn(1, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUndoCheckInWithoutRecord(t *testing.T) {
	mock, restore := newMockDB(t)
	defer restore()

	expectSessionLookup(mock)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `attendance_records`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewCheckinService().UndoCheckIn(1, 4)
	if !errors.Is(err, ErrNotCheckedIn) {
		t.Fatalf("expected ErrNotCheckedIn, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
