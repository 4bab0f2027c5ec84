package persist

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Transaction is the subset of gorp.Transaction the exporters need
type Transaction interface {
	Insert(list ...interface{}) error
}

type InsertFunc func(...interface{}) error

func (f InsertFunc) Insert(list ...interface{}) error {
	return f(list...)
}

// InsertIgnoringDupes wraps t so rows that violate a unique constraint are
// skipped instead of failing the transaction. Ignored counts them.
func InsertIgnoringDupes(t Transaction, ignored *int) Transaction {
	return InsertFunc(func(list ...interface{}) error {
		err := t.Insert(list...)
		if IsUniqueViolation(err) {
			if ignored != nil {
				*ignored++
			}
			logrus.WithField("row", list).Debug("Ignoring duplicate row")
			return nil
		}
		return err
	})
}

func IsUniqueViolation(err error) bool {
	var sqliteError sqlite3.Error
	if errors.As(err, &sqliteError) {
		return sqliteError.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
