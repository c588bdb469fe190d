package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/hints"
)

// ErrNotFound marks lookups that matched no row
var ErrNotFound = errors.New("not found")

type notFoundError struct {
	msg string
}

func (e *notFoundError) Error() string {
	return e.msg
}

func (e *notFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// notFound returns an error that matches ErrNotFound and reads as the formatted message
func notFound(format string, args ...interface{}) error {
	return &notFoundError{msg: fmt.Sprintf(format, args...)}
}

// firstOr loads the first row into dest, mapping a missing row to a not found error
func firstOr(query *gorm.DB, dest interface{}, format string, args ...interface{}) error {
	err := query.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(format, args...)
	}
	return err
}

// tagged marks a query with an SQL comment naming the operation, visible in database logs
func tagged(tx *gorm.DB, operation string) *gorm.DB {
	return tx.Clauses(hints.Comment("select", "shopdb:"+operation))
}

// Page is an offset/limit window over a list
type Page struct {
	Skip  int
	Limit int
}

func (p Page) apply(tx *gorm.DB) *gorm.DB {
	return tx.Offset(p.Skip).Limit(p.Limit)
}
