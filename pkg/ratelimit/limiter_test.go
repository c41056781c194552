package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock はテスト用に手動で進められる時計。
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTestInMemory は時計を差し替えたInMemoryを返す。
func newTestInMemory(rule Rule) (*InMemory, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	l := NewInMemory(rule)
	l.now = clock.Now
	return l, clock
}

func TestInMemoryAdmit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("4回目のリクエストが拒否されること", func(t *testing.T) {
		t.Parallel()

		l, _ := newTestInMemory(Rule{Limit: 3, Window: time.Minute})
		for i := 1; i <= 3; i++ {
			d := l.Admit(ctx, "192.0.2.1", "upload")
			if !d.Allowed {
				t.Fatalf("%d回目のリクエストが拒否された", i)
			}
			if d.Remaining != 3-i {
				t.Errorf("%d回目: Remaining = %d, want %d", i, d.Remaining, 3-i)
			}
		}

		d := l.Admit(ctx, "192.0.2.1", "upload")
		if d.Allowed {
			t.Fatal("4回目のリクエストが許可された")
		}
		if d.Count != 4 {
			t.Errorf("Count = %d, want %d", d.Count, 4)
		}
		if d.Remaining != 0 {
			t.Errorf("Remaining = %d, want 0", d.Remaining)
		}
	})

	t.Run("ウィンドウ経過後は再び許可されること", func(t *testing.T) {
		t.Parallel()

		l, clock := newTestInMemory(Rule{Limit: 3, Window: time.Minute})
		for range 4 {
			l.Admit(ctx, "192.0.2.1", "upload")
		}

		clock.Advance(59 * time.Second)
		if d := l.Admit(ctx, "192.0.2.1", "upload"); d.Allowed {
			t.Error("ウィンドウ内のリクエストが許可された")
		}

		clock.Advance(time.Second)
		d := l.Admit(ctx, "192.0.2.1", "upload")
		if !d.Allowed {
			t.Fatal("ウィンドウ経過後のリクエストが拒否された")
		}
		if d.Count != 1 {
			t.Errorf("Count = %d, want 1", d.Count)
		}
	})

	t.Run("クライアントとルートごとに独立して数えること", func(t *testing.T) {
		t.Parallel()

		l, _ := newTestInMemory(Rule{Limit: 1, Window: time.Minute})
		if d := l.Admit(ctx, "192.0.2.1", "upload"); !d.Allowed {
			t.Fatal("初回リクエストが拒否された")
		}
		if d := l.Admit(ctx, "192.0.2.2", "upload"); !d.Allowed {
			t.Error("別クライアントのリクエストが拒否された")
		}
		if d := l.Admit(ctx, "192.0.2.1", "login"); !d.Allowed {
			t.Error("別ルートのリクエストが拒否された")
		}
		if d := l.Admit(ctx, "192.0.2.1", "upload"); d.Allowed {
			t.Error("同じクライアントとルートの2回目が許可された")
		}
	})

	t.Run("ResetAtとRetryAfterがウィンドウ終端を指すこと", func(t *testing.T) {
		t.Parallel()

		l, clock := newTestInMemory(Rule{Limit: 1, Window: time.Minute})
		start := clock.Now()
		l.Admit(ctx, "192.0.2.1", "upload")
		clock.Advance(20 * time.Second)

		d := l.Admit(ctx, "192.0.2.1", "upload")
		if !d.ResetAt.Equal(start.Add(time.Minute)) {
			t.Errorf("ResetAt = %v, want %v", d.ResetAt, start.Add(time.Minute))
		}
		if got := d.RetryAfter(clock.Now()); got != 40*time.Second {
			t.Errorf("RetryAfter = %v, want %v", got, 40*time.Second)
		}
	})

	t.Run("期限切れのカウンタが削除されること", func(t *testing.T) {
		t.Parallel()

		l, clock := newTestInMemory(Rule{Limit: 3, Window: time.Minute})
		l.Admit(ctx, "192.0.2.1", "upload")
		l.Admit(ctx, "192.0.2.2", "upload")
		if l.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", l.Len())
		}

		clock.Advance(2 * time.Minute)
		l.Admit(ctx, "192.0.2.3", "upload")
		if l.Len() != 1 {
			t.Errorf("Len() = %d, want 1", l.Len())
		}
	})

	t.Run("期限切れの走査はウィンドウごとに1回だけ行われること", func(t *testing.T) {
		t.Parallel()

		l, clock := newTestInMemory(Rule{Limit: 3, Window: time.Minute})
		l.Admit(ctx, "192.0.2.1", "upload") // 0秒: 走査し、次回は60秒

		clock.Advance(50 * time.Second)
		l.Admit(ctx, "192.0.2.2", "upload") // 50秒: 走査しない

		clock.Advance(15 * time.Second)
		l.Admit(ctx, "192.0.2.3", "upload") // 65秒: 走査して192.0.2.1を削除、次回は125秒
		if l.Len() != 2 {
			t.Fatalf("65秒: Len() = %d, want 2", l.Len())
		}

		clock.Advance(50 * time.Second)
		d := l.Admit(ctx, "192.0.2.4", "upload") // 115秒: 192.0.2.2は期限切れだが走査しない
		if l.Len() != 3 {
			t.Fatalf("115秒: Len() = %d, want 3", l.Len())
		}
		if !d.Allowed || d.Count != 1 {
			t.Errorf("115秒: Decision = %+v, want 1回目として許可", d)
		}

		// 走査前でも期限切れのカウンタは数え直される
		d = l.Admit(ctx, "192.0.2.2", "upload")
		if d.Count != 1 {
			t.Errorf("期限切れのカウンタ: Count = %d, want 1", d.Count)
		}

		clock.Advance(11 * time.Second)
		l.Admit(ctx, "192.0.2.5", "upload") // 126秒: 走査して192.0.2.3を削除
		if l.Len() != 3 {
			t.Errorf("126秒: Len() = %d, want 3", l.Len())
		}
	})

	t.Run("不正な設定は既定値に補正されること", func(t *testing.T) {
		t.Parallel()

		l := NewInMemory(Rule{})
		if l.rule.Limit != 1 {
			t.Errorf("Limit = %d, want 1", l.rule.Limit)
		}
		if l.rule.Window != time.Minute {
			t.Errorf("Window = %v, want %v", l.rule.Window, time.Minute)
		}
	})

	t.Run("並行リクエストでも許可数が上限を超えないこと", func(t *testing.T) {
		t.Parallel()

		l, _ := newTestInMemory(Rule{Limit: 10, Window: time.Minute})
		var allowed atomic.Int64
		var wg sync.WaitGroup
		for range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if l.Admit(ctx, "192.0.2.1", "upload").Allowed {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()

		if got := allowed.Load(); got != 10 {
			t.Errorf("許可数 = %d, want 10", got)
		}
	})
}
