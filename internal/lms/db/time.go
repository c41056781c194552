package db

import (
	"database/sql"
	"fmt"
	"time"
)

// timeLayout はDATETIME列に書き込む際の書式。
const timeLayout = time.RFC3339Nano

// formatTime は時刻をUTCの文字列に変換する。
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// nullTimeArg はsql.NullTimeを書き込み用の値に変換する。
func nullTimeArg(t sql.NullTime) any {
	if !t.Valid {
		return nil
	}
	return formatTime(t.Time)
}

// parseNullTime はDATETIME列から読み出した文字列を時刻に変換する。
// ドライバが time.Time を返した場合も database/sql がRFC3339Nanoの文字列に変換する。
func parseNullTime(s sql.NullString) (sql.NullTime, error) {
	if !s.Valid {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return sql.NullTime{}, fmt.Errorf("日時 %q の解析に失敗: %w", s.String, err)
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}, nil
}
