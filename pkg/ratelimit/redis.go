package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// admitScript はカウンタを進め、初回のみ有効期限を設定する。
// 戻り値は {カウント, 残りミリ秒}。
var admitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// Redis はRedisのキーでカウンタを共有するLimiter。
// Redisに到達できない場合はプロセス内のフォールバックで判定する。
type Redis struct {
	client   redis.Scripter
	rule     Rule
	prefix   string
	timeout  time.Duration
	fallback *InMemory
	now      func() time.Time
}

// NewRedis は新しいRedisを生成する。
func NewRedis(client redis.Scripter, rule Rule) *Redis {
	rule = rule.normalize()
	return &Redis{
		client:   client,
		rule:     rule,
		prefix:   "campus:rl:",
		timeout:  2 * time.Second,
		fallback: NewInMemory(rule),
		now:      time.Now,
	}
}

// Admit はRedis上のカウンタを進めて判定する。
func (l *Redis) Admit(ctx context.Context, clientAddress, routeKey string) Decision {
	if l.client == nil {
		return l.fallback.Admit(ctx, clientAddress, routeKey)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	res, err := admitScript.Run(ctx, l.client, []string{l.prefix + key(clientAddress, routeKey)}, l.rule.Window.Milliseconds()).Int64Slice()
	if err != nil || len(res) < 2 {
		log.Printf("[RateLimit] Redisでの判定に失敗したためプロセス内で判定します: %v", err)
		return l.fallback.Admit(ctx, clientAddress, routeKey)
	}

	count, ttlMs := res[0], res[1]
	if ttlMs < 0 {
		ttlMs = l.rule.Window.Milliseconds()
	}
	resetAt := l.now().UTC().Add(time.Duration(ttlMs) * time.Millisecond)
	return decide(int(count), l.rule.Limit, resetAt)
}
