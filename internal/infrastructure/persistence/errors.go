package persistence

import (
	"errors"
	"strings"

	"github.com/erp/orderdesk/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps GORM errors to domain errors. Requires
// gorm.Config.TranslateError for duplicate-key detection.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}

// whereSearch adds a case-insensitive substring match over the columns
func whereSearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	if strings.TrimSpace(search) == "" || len(columns) == 0 {
		return query
	}
	pattern := searchPattern(search)
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}
