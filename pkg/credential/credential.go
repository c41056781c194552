// Package credential はログイン時のメールアドレスとパスワードの照合を行う。
//
// パスワードはbcryptでハッシュ化して保存し、照合は定数時間比較で行う。
// 存在しないメールアドレスとパスワード不一致はどちらも ErrAuthFailed として
// 区別なく報告し、アカウントの存在有無を漏らさない。
package credential

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrAuthFailed は認証失敗を表す。失敗理由は意図的に区別しない。
var ErrAuthFailed = errors.New("メールアドレスまたはパスワードが正しくありません")

// ErrUserNotFound はUserFinderが該当ユーザーなしを報告するためのエラー。
var ErrUserNotFound = errors.New("ユーザーが見つかりません")

// StoredUser は照合対象として保存されているユーザー。
type StoredUser struct {
	// ID はユーザーの識別子。
	ID int64
	// Name はユーザーの表示名。
	Name string
	// Email はユーザーのメールアドレス。
	Email string
	// Role はユーザーのロール。
	Role string
	// PasswordHash はbcryptでハッシュ化されたパスワード。
	PasswordHash string
}

// UserFinder はメールアドレスの完全一致でユーザーを検索する。
// 該当なしの場合は ErrUserNotFound をラップしたエラーを返すこと。
type UserFinder interface {
	FindUserByEmail(ctx context.Context, email string) (StoredUser, error)
}

// Verifier はメールアドレスとパスワードの組を検証する。
type Verifier struct {
	users UserFinder
}

// NewVerifier は新しいVerifierを生成する。
func NewVerifier(users UserFinder) *Verifier {
	return &Verifier{users: users}
}

// dummyHash はユーザーが存在しない場合にも比較処理を行うためのハッシュ。
// 応答時間からアカウントの存在が推測されるのを防ぐ。
var dummyHash = mustHash("campus-dummy-password")

// Authenticate は照合に成功した場合に保存済みユーザーを返す。
// ユーザー不在とパスワード不一致はどちらも ErrAuthFailed を返す。
// それ以外の検索エラーはそのまま呼び出し元に返す。
func (v *Verifier) Authenticate(ctx context.Context, email, password string) (StoredUser, error) {
	user, err := v.users.FindUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return StoredUser{}, ErrAuthFailed
	}
	if err != nil {
		return StoredUser{}, fmt.Errorf("ユーザーの検索に失敗: %w", err)
	}

	// 大文字小文字を区別する完全一致のみ認める。
	if user.Email != email {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return StoredUser{}, ErrAuthFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return StoredUser{}, ErrAuthFailed
	}
	return user, nil
}

// HashPassword は平文パスワードをbcryptでハッシュ化する。
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}
	return string(hash), nil
}

func mustHash(plain string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("ダミーハッシュの生成に失敗: %v", err))
	}
	return hash
}
