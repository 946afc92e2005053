package store

import (
	"database/sql/driver"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// passthroughConverter lets slice arguments such as the ANY($1) id list
// reach the mock unchanged, the way the pgx driver accepts them.
type passthroughConverter struct{}

func (passthroughConverter) ConvertValue(v any) (driver.Value, error) { return v, nil }

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(passthroughConverter{}))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		mock.ExpectClose()
		if err := db.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
	})
	return New(db), mock
}

func expectReadTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SET LOCAL search_path TO "ns", public`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func expectSavepoint(mock sqlmock.Sqlmock, name string) {
	mock.ExpectExec("^" + regexp.QuoteMeta(`SAVEPOINT "`+name+`"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func expectRelease(mock sqlmock.Sqlmock, name string) {
	mock.ExpectExec(regexp.QuoteMeta(`RELEASE SAVEPOINT "` + name + `"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func expectRollbackTo(mock sqlmock.Sqlmock, name string) {
	mock.ExpectExec(regexp.QuoteMeta(`ROLLBACK TO SAVEPOINT "` + name + `"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
}
