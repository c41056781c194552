// Package metrics はゲートウェイの判定結果とHTTPリクエストをPrometheus形式で集計する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// histogramBuckets はリクエスト処理時間のバケット（秒）。
var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Metrics はサービスが公開するメトリクスの集合。
// インスタンスごとに独立したレジストリを持つため、テストで複数生成しても衝突しない。
type Metrics struct {
	registry *prometheus.Registry

	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	throttled      *prometheus.CounterVec
	uploads        *prometheus.CounterVec
	logins         *prometheus.CounterVec
}

// New は新しいMetricsを生成し、レジストリに登録する。
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "処理したHTTPリクエスト数",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campus",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTPリクエストの処理時間",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
		throttled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "gateway",
			Name:      "throttled_total",
			Help:      "レート制限により拒否したリクエスト数",
		}, []string{"route"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "gateway",
			Name:      "uploads_total",
			Help:      "アップロードの受付結果",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "gateway",
			Name:      "logins_total",
			Help:      "ログインの照合結果",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.requestTotal,
		m.requestLatency,
		m.throttled,
		m.uploads,
		m.logins,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry はメトリクスのレジストリを返す。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler は /metrics 用のHTTPハンドラを返す。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware はリクエスト数と処理時間を記録するGinミドルウェアを返す。
// ルートはパラメータを含むテンプレート（例: /users/:id）で集計する。
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		m.requestTotal.With(labels).Inc()
		m.requestLatency.With(labels).Observe(time.Since(start).Seconds())
	}
}

// Throttled はレート制限による拒否を記録する。
func (m *Metrics) Throttled(route string) {
	m.throttled.WithLabelValues(route).Inc()
}

// Upload はアップロードの結果（accepted, rejected, error）を記録する。
func (m *Metrics) Upload(result string) {
	m.uploads.WithLabelValues(result).Inc()
}

// Login はログインの結果（success, failure, error）を記録する。
func (m *Metrics) Login(result string) {
	m.logins.WithLabelValues(result).Inc()
}
