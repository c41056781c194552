package lms

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	lmsdb "github.com/nao1215/campus/internal/lms/db"
)

// 一覧取得の件数の既定値と上限。
const (
	defaultListLimit = 100
	maxListLimit     = 100
)

// parseID はパスパラメータ :id を整数として取得する。
// 不正な値の場合は400を返してfalseを返す。
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "IDは正の整数で指定してください"})
		return 0, false
	}
	return id, true
}

// parseListParams はクエリパラメータ skip と limit を取得する。
// limitは上限を超えた場合に上限へ切り詰める。
func parseListParams(c *gin.Context) (lmsdb.ListParams, bool) {
	skip, err := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	if err != nil || skip < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "skipは0以上の整数で指定してください"})
		return lmsdb.ListParams{}, false
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)), 10, 64)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limitは1以上の整数で指定してください"})
		return lmsdb.ListParams{}, false
	}
	return lmsdb.ListParams{Offset: skip, Limit: min(limit, maxListLimit)}, true
}

// respondLookupError は単一行の取得エラーをレスポンスに変換する。
func respondLookupError(c *gin.Context, resource string, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": resource + "が見つかりません"})
		return
	}
	log.Printf("%s取得エラー: %v", resource, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": resource + "の取得に失敗しました"})
}

// respondStoreError はデータベースへの書き込みや一覧取得のエラーをレスポンスに変換する。
func respondStoreError(c *gin.Context, action string, err error) {
	log.Printf("%sエラー: %v", action, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": action + "に失敗しました"})
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
