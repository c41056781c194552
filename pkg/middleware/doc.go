// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// パニックリカバリ、CORS設定、クライアントごとのレート制限、
// ログイン後に発行するJWTトークンの生成と検証を含む。
package middleware
