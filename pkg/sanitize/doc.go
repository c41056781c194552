// Package sanitize は利用者が入力した自由記述テキストから危険なマークアップを取り除く。
//
// 許可リスト方式のHTMLサニタイザで、簡単な書式タグのみを残し、
// scriptタグ・イベントハンドラ属性・javascript:スキームのURLなど
// ブラウザで実行され得る構造はすべて除去する。
// サニタイズは失敗しない。危険な入力は拒否せず、安全な出力に変換する。
package sanitize
