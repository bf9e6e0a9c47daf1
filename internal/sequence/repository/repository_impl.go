package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/smallbiznis/netbill/internal/sequence/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Increment(ctx context.Context, db *gorm.DB, scope string) (int64, bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE sequences SET value = value + 1 WHERE scope = ?`,
		scope,
	)
	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}

	var value int64
	err := db.WithContext(ctx).Raw(
		`SELECT value FROM sequences WHERE scope = ?`,
		scope,
	).Scan(&value).Error
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, seq *domain.Sequence) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sequences (scope, value) VALUES (?, ?)`,
		seq.Scope,
		seq.Value,
	).Error
}

func (r *repo) MaxNumericSuffix(ctx context.Context, db *gorm.DB, table, column, prefix string) (int64, error) {
	var codes []string
	err := db.WithContext(ctx).Raw(
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s LIKE ?`, column, table, column),
		prefix+"%",
	).Scan(&codes).Error
	if err != nil {
		return 0, err
	}

	var max int64
	for _, code := range codes {
		suffix := strings.TrimPrefix(code, prefix)
		n, err := strconv.ParseInt(suffix, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}
