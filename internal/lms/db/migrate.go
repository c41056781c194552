package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"

	"github.com/nao1215/campus/pkg/migration"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// migrations はスキーマ定義のSQLファイル。
//
//go:embed migrations/*.sql
var migrations embed.FS

// Migrate は未適用のマイグレーションをデータベースに適用する。
func Migrate(ctx context.Context, sqlDB *sql.DB) error {
	return migration.Run(ctx, sqlDB, migrations, "migrations")
}

// IsUniqueViolation は一意制約違反のエラーかどうかを返す。
func IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
