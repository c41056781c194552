package lms

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	lmsdb "github.com/nao1215/campus/internal/lms/db"
	"github.com/nao1215/campus/pkg/credential"
	"github.com/nao1215/campus/pkg/metrics"
	"github.com/nao1215/campus/pkg/middleware"
	"github.com/nao1215/campus/pkg/ratelimit"
	"github.com/nao1215/campus/pkg/staticres"
	"github.com/nao1215/campus/pkg/upload"
)

// レート制限のルートキー。
const (
	routeKeyUpload = "upload"
	routeKeyLogin  = "login"
)

// Server はLMSサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// queries はエンティティごとのクエリ実行オブジェクト。
	queries *lmsdb.Queries
	// redis はレート制限のカウンタを共有するRedisクライアント。未設定ならnil。
	redis *redis.Client
	// jwtSecret はJWT署名用の秘密鍵。
	jwtSecret string
	// verifier はログイン時の資格情報を照合する。
	verifier *credential.Verifier
	// uploads はアップロードファイルを検証して保存する。
	uploads *upload.Gatekeeper
	// uploadMaxBytes はアップロード1件の最大サイズ。
	uploadMaxBytes int64
	// scripts は許可リストにあるスクリプトファイルを読み出す。
	scripts *staticres.Reader
	// uploadLimiter はアップロードのレート制限。
	uploadLimiter ratelimit.Limiter
	// loginLimiter はログインのレート制限。
	loginLimiter ratelimit.Limiter
	// metrics はPrometheusメトリクス。
	metrics *metrics.Metrics
	// now は現在時刻を返す。テストで差し替える。
	now func() time.Time
}

// NewServer は設定に従って新しいLMSサーバーを生成する。
// データベースのマイグレーションはここで適用する。
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := lmsdb.Migrate(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("マイグレーションに失敗: %w", err)
	}

	var redisClient *redis.Client
	uploadLimiter := ratelimit.Limiter(ratelimit.NewInMemory(cfg.UploadRateLimit))
	loginLimiter := ratelimit.Limiter(ratelimit.NewInMemory(cfg.LoginRateLimit))
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("REDIS_URLの解析に失敗: %w", err)
		}
		redisClient = redis.NewClient(opt)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// 起動後に復旧する場合があるため、接続できなくてもプロセス内の制限で続行する
			log.Printf("[ratelimit] Redisに接続できません。プロセス内で制限します: %v", err)
		}
		uploadLimiter = ratelimit.NewRedis(redisClient, cfg.UploadRateLimit)
		loginLimiter = ratelimit.NewRedis(redisClient, cfg.LoginRateLimit)
	}

	m := metrics.New()

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(m.Middleware())

	queries := lmsdb.New(sqlDB)
	s := &Server{
		router:    router,
		port:      cfg.Port,
		db:        sqlDB,
		queries:   queries,
		redis:     redisClient,
		jwtSecret: cfg.JWTSecret,
		verifier:  credential.NewVerifier(userFinder{queries: queries}),
		uploads: upload.New(upload.Config{
			Dir:               cfg.UploadDir,
			AllowedExtensions: cfg.UploadAllowedExtensions,
			MaxBytes:          cfg.UploadMaxBytes,
		}),
		uploadMaxBytes: cfg.UploadMaxBytes,
		scripts:        staticres.NewReader(os.DirFS(cfg.ScriptsDir)),
		uploadLimiter:  uploadLimiter,
		loginLimiter:   loginLimiter,
		metrics:        m,
		now:            time.Now,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Close はデータベースとRedisの接続を閉じる。
func (s *Server) Close() error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("[lms] Redis切断エラー: %v", err)
		}
	}
	return s.db.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	users := s.router.Group("/users")
	{
		users.POST("/", s.handleCreateUser())
		users.GET("/", s.handleListUsers())
		users.GET("/:id", s.handleGetUser())
	}

	courses := s.router.Group("/courses")
	{
		courses.POST("/", s.handleCreateCourse())
		courses.GET("/", s.handleListCourses())
		courses.GET("/:id", s.handleGetCourse())
	}

	enrollments := s.router.Group("/enrollments")
	{
		enrollments.POST("/", s.handleCreateEnrollment())
		enrollments.GET("/", s.handleListEnrollments())
	}

	assignments := s.router.Group("/assignments")
	{
		assignments.POST("/", s.handleCreateAssignment())
		assignments.GET("/", s.handleListAssignments())
		assignments.GET("/:id", s.handleGetAssignment())
	}

	// 提出物と投稿の本文は保存前にサニタイズする
	submissions := s.router.Group("/submissions")
	{
		submissions.POST("/", s.handleCreateSubmission())
		submissions.GET("/", s.handleListSubmissions())
		submissions.GET("/:id", s.handleGetSubmission())
	}

	posts := s.router.Group("/posts")
	{
		posts.POST("/", s.handleCreatePost())
		posts.GET("/", s.handleListPosts())
		posts.GET("/:id", s.handleGetPost())
	}

	// 認証
	s.router.POST("/login/", middleware.Throttle(s.loginLimiter, routeKeyLogin, s.metrics), s.handleLogin())
	s.router.GET("/me/", middleware.JWTAuth(s.jwtSecret), s.handleGetCurrentUser())

	// ゲートウェイ
	s.router.POST("/upload/", middleware.Throttle(s.uploadLimiter, routeKeyUpload, s.metrics), s.handleUpload())
	s.router.GET("/safe-script/", s.handleSafeScript())

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "lms"})
	})
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
}
