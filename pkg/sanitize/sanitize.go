package sanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// allowedElements は書式として残してよいHTML要素。
var allowedElements = []string{
	"b", "i", "em", "strong", "u", "p", "br",
	"ul", "ol", "li", "blockquote", "code", "pre",
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Policy は投稿内容に適用するサニタイズポリシーを返す。
// ポリシーは初回呼び出し時に一度だけ構築され、以降は並行に利用できる。
func Policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements(allowedElements...)
		p.AllowAttrs("href").OnElements("a")
		p.AllowURLSchemes("http", "https", "mailto")
		p.RequireParseableURLs(true)
		p.RequireNoFollowOnLinks(true)
		p.RequireNoReferrerOnLinks(true)
		policy = p
	})
	return policy
}

// Text はnilを許容するテキストフィールドをサニタイズする。
// nilはnilのまま返し、空文字列は空文字列として返す。
func Text(raw *string) *string {
	if raw == nil {
		return nil
	}
	cleaned := String(*raw)
	return &cleaned
}

// String は必須のテキストフィールドをサニタイズする。
func String(raw string) string {
	if raw == "" {
		return ""
	}
	return Policy().Sanitize(raw)
}
