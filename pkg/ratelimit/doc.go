// Package ratelimit はクライアントアドレスとルートの組ごとにリクエスト頻度を制限する。
//
// 固定ウィンドウ方式のカウンタで、ウィンドウ内の許可回数を超えたリクエストを
// Throttled として拒否する。プロセス内で完結する InMemory と、
// 複数インスタンスでカウンタを共有する Redis の2つの実装を持ち、
// 呼び出し側は Limiter インターフェースだけに依存する。
//
// いずれも不正利用の抑止が目的のベストエフォートな制限であり、
// 高負荷時に1件多く通すことは許容する。
package ratelimit
