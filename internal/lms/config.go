package lms

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/campus/pkg/middleware"
	"github.com/nao1215/campus/pkg/ratelimit"
	"github.com/nao1215/campus/pkg/upload"
)

// Config はLMSサービスの設定。環境変数から読み込む。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// DatabaseURL はSQLiteの接続文字列。
	DatabaseURL string
	// JWTSecret はログイントークンの署名鍵。
	JWTSecret string
	// AllowedOrigins はCORSで許可するオリジン。"*" ですべて許可する。
	AllowedOrigins []string
	// RedisURL はレート制限のカウンタを共有するRedisのURL。空ならプロセス内で数える。
	RedisURL string
	// UploadDir はアップロードファイルの保存先。
	UploadDir string
	// UploadAllowedExtensions はアップロードを受け付ける拡張子。
	UploadAllowedExtensions []string
	// UploadMaxBytes はアップロード1件の最大サイズ。
	UploadMaxBytes int64
	// UploadRateLimit はアップロードのレート制限。
	UploadRateLimit ratelimit.Rule
	// LoginRateLimit はログインのレート制限。
	LoginRateLimit ratelimit.Rule
	// ScriptsDir は /safe-script/ で読み出すファイルのディレクトリ。
	ScriptsDir string
}

// defaultDatabaseURL はDATABASE_URL未設定時のSQLite接続文字列。
const defaultDatabaseURL = "file:campus.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// LoadConfig は環境変数から設定を読み込む。
// 未設定の項目には既定値を使用し、値の形式が不正な場合はエラーを返す。
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                    getEnvOr("PORT", "8000"),
		DatabaseURL:             getEnvOr("DATABASE_URL", defaultDatabaseURL),
		JWTSecret:               getEnvOr("JWT_SECRET", "dev-secret-key"),
		AllowedOrigins:          splitList(getEnvOr("FRONTEND_URL", middleware.AllowAllOrigins)),
		RedisURL:                os.Getenv("REDIS_URL"),
		UploadDir:               getEnvOr("UPLOAD_DIR", "uploads"),
		UploadAllowedExtensions: splitList(getEnvOr("UPLOAD_ALLOWED_EXTENSIONS", strings.Join(upload.DefaultAllowedExtensions, ","))),
		ScriptsDir:              getEnvOr("SCRIPTS_DIR", "scripts"),
	}

	var err error
	if cfg.UploadMaxBytes, err = getEnvInt64("UPLOAD_MAX_BYTES", 10<<20); err != nil {
		return Config{}, err
	}
	if cfg.UploadRateLimit, err = getEnvRule("UPLOAD_RATE_LIMIT", "UPLOAD_RATE_WINDOW", ratelimit.Rule{Limit: 3, Window: time.Minute}); err != nil {
		return Config{}, err
	}
	if cfg.LoginRateLimit, err = getEnvRule("LOGIN_RATE_LIMIT", "LOGIN_RATE_WINDOW", ratelimit.Rule{Limit: 10, Window: time.Minute}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// getEnvInt64 は環境変数を整数として取得する。
func getEnvInt64(key string, defaultValue int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("環境変数 %s の値が不正です: %w", key, err)
	}
	return n, nil
}

// getEnvRule は回数と期間の環境変数の組をレート制限ルールとして取得する。
func getEnvRule(limitKey, windowKey string, defaultRule ratelimit.Rule) (ratelimit.Rule, error) {
	limit, err := getEnvInt64(limitKey, int64(defaultRule.Limit))
	if err != nil {
		return ratelimit.Rule{}, err
	}
	if limit <= 0 {
		return ratelimit.Rule{}, fmt.Errorf("環境変数 %s は1以上を指定してください: %d", limitKey, limit)
	}

	window := defaultRule.Window
	if v := os.Getenv(windowKey); v != "" {
		window, err = time.ParseDuration(v)
		if err != nil {
			return ratelimit.Rule{}, fmt.Errorf("環境変数 %s の値が不正です: %w", windowKey, err)
		}
		if window <= 0 {
			return ratelimit.Rule{}, fmt.Errorf("環境変数 %s は正の期間を指定してください: %s", windowKey, v)
		}
	}
	return ratelimit.Rule{Limit: int(limit), Window: window}, nil
}

// splitList はカンマ区切りの値を空要素を除いて分割する。
func splitList(v string) []string {
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
