package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/campus/pkg/ratelimit"
)

// ThrottleRecorder はレート制限による拒否を記録する。
type ThrottleRecorder interface {
	Throttled(route string)
}

// Throttle はクライアントアドレスとrouteKeyの組でリクエスト頻度を制限するGinミドルウェアを返す。
// 上限を超えたリクエストは後続のハンドラを呼ばずに429を返す。
// recorderがnilの場合は記録しない。
func Throttle(limiter ratelimit.Limiter, routeKey string, recorder ThrottleRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := limiter.Admit(c.Request.Context(), c.ClientIP(), routeKey)

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

		if d.Allowed {
			c.Next()
			return
		}

		retryAfter := retryAfterSeconds(d.RetryAfter(time.Now()))
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		if recorder != nil {
			recorder.Throttled(routeKey)
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "リクエストが多すぎます。しばらくしてから再試行してください",
			"retry_after": retryAfter,
		})
	}
}

// retryAfterSeconds は待ち時間を切り上げた秒数で返す。最小1秒。
func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
