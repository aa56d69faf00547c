package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/sony/gobreaker"
	"gorm.io/gorm"

	svcErr "github.com/oggyb/muzz-chat/internal/errors"
)

// MySQL server error numbers that mean the account lacks a privilege.
var permissionErrors = map[uint16]bool{
	1044: true, // ER_DBACCESS_DENIED_ERROR
	1045: true, // ER_ACCESS_DENIED_ERROR
	1142: true, // ER_TABLEACCESS_DENIED_ERROR
	1143: true, // ER_COLUMNACCESS_DENIED_ERROR
	1227: true, // ER_SPECIFIC_ACCESS_DENIED_ERROR
}

// classify wraps a raw gorm/driver/breaker error into a StoreError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *svcErr.StoreError
	if errors.As(err, &se) {
		return err
	}
	return svcErr.Store(kindOf(err), op, err)
}

func kindOf(err error) svcErr.Kind {
	var se *svcErr.StoreError
	var myErr *mysql.MySQLError
	switch {
	case errors.As(err, &se):
		return se.Kind
	case errors.Is(err, gorm.ErrRecordNotFound):
		return svcErr.KindNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated):
		return svcErr.KindConstraint
	case errors.As(err, &myErr):
		if permissionErrors[myErr.Number] {
			return svcErr.KindPermission
		}
		if myErr.Number == 1062 {
			return svcErr.KindConstraint
		}
		return svcErr.KindTransport
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		// sqlite without error translation
		return svcErr.KindConstraint
	case errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return svcErr.KindTransport
	default:
		return svcErr.KindTransport
	}
}

// tripsBreaker reports whether err says something about store health.
// Missing rows and constraint violations are answers, not outages.
func tripsBreaker(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return kindOf(err) == svcErr.KindTransport
}
