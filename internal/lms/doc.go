// Package lms は学習管理システム（LMS）のHTTPサービスの内部実装を提供する。
//
// ユーザー・コース・受講登録・課題・提出物・ディスカッション投稿のCRUDと、
// 信頼できないクライアント入力を受け止めるゲートウェイ処理を担当する。
//
// ゲートウェイ処理:
//   - レート制限（アップロードとログイン）
//   - 提出物・投稿本文のHTMLサニタイズ
//   - メールアドレスとパスワードの照合
//   - アップロードファイルの検証と保存
//   - 許可リストに基づくスクリプトファイルの読み出し
//
// 認可（ロールによるアクセス制御）は行わない。
package lms
