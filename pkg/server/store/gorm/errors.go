package gorm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/vincentyu/portfolio-backend/pkg/server/store"
)

// uniqueTarget returns the "table.column" a UNIQUE constraint failure refers
// to, e.g. "user.email".
func uniqueTarget(err error) (string, bool) {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.ExtendedCode != sqlite3.ErrConstraintUnique {
		return "", false
	}
	msg := se.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:], true
	}
	return "", true
}

// translate maps driver errors onto store sentinels. unique maps a
// "table.column" to the sentinel for that column.
func translate(err error, unique map[string]error) error {
	if err == nil {
		return nil
	}
	if target, ok := uniqueTarget(err); ok {
		if sentinel, found := unique[target]; found {
			return fmt.Errorf("%w: %v", sentinel, err)
		}
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %v", store.ErrConstraint, err)
	}
	return err
}

// notFound maps gorm.ErrRecordNotFound to sentinel.
func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
