// Package upload はクライアントから送信されたファイルを検証し、
// 制限されたディレクトリに保存する。
//
// 保存ファイル名はUUIDから生成し、クライアントが指定したファイル名は
// 表示用としてのみ扱う。書き込みは一時ファイルを経由してリネームするため、
// 途中で失敗したファイルが成功レスポンスで参照されることはない。
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrUnsupportedFileType は許可リストにない拡張子を表す。
	ErrUnsupportedFileType = errors.New("サポートされていないファイル形式です")
	// ErrTooLarge はファイルサイズが上限を超えたことを表す。
	ErrTooLarge = errors.New("ファイルサイズが上限を超えています")
)

// StorageError はディスク書き込みなど保存処理の失敗を表す。
// クライアント入力の誤りではなくサーバー側の障害として扱う。
type StorageError struct {
	// Op は失敗した操作。
	Op string
	// Err は元のエラー。
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("アップロードの保存に失敗 (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// DefaultAllowedExtensions は既定で受け付けるドキュメントの拡張子。
var DefaultAllowedExtensions = []string{".pdf", ".docx"}

// Config はGatekeeperの設定。
type Config struct {
	// Dir は保存先ディレクトリ。初回保存時に作成される。
	Dir string
	// AllowedExtensions は受け付ける拡張子（ドット付き）。大文字小文字は区別しない。
	AllowedExtensions []string
	// MaxBytes は1ファイルの最大サイズ。0以下なら無制限。
	MaxBytes int64
}

// Stored は保存に成功したアップロードのメタデータ。
type Stored struct {
	// OriginalFilename はクライアントが送信したファイル名。表示用でパスには使わない。
	OriginalFilename string
	// StoredFilename は生成された保存ファイル名。
	StoredFilename string
	// AssignmentID は呼び出し元が指定した課題ID。
	AssignmentID int64
	// Size は書き込んだバイト数。
	Size int64
}

// Gatekeeper はアップロードの受付と保存を行う。
type Gatekeeper struct {
	dir      string
	allowed  map[string]struct{}
	maxBytes int64

	mkdirOnce sync.Once
	mkdirErr  error
}

// New は新しいGatekeeperを生成する。
// AllowedExtensionsが空の場合は DefaultAllowedExtensions を使用する。
func New(cfg Config) *Gatekeeper {
	exts := cfg.AllowedExtensions
	if len(exts) == 0 {
		exts = DefaultAllowedExtensions
	}
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}
	return &Gatekeeper{
		dir:      cfg.Dir,
		allowed:  allowed,
		maxBytes: cfg.MaxBytes,
	}
}

// Dir は保存先ディレクトリを返す。
func (g *Gatekeeper) Dir() string {
	return g.dir
}

// AllowedExtensions は許可している拡張子を昇順で返す。
func (g *Gatekeeper) AllowedExtensions() []string {
	exts := make([]string, 0, len(g.allowed))
	for ext := range g.allowed {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Allowed は拡張子が許可リストに含まれるかを返す。
func (g *Gatekeeper) Allowed(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", false
	}
	_, ok := g.allowed[ext]
	return ext, ok
}

// Accept はファイルを検証して保存する。
// 拡張子が許可されていない場合は内容を読まずに ErrUnsupportedFileType を返す。
func (g *Gatekeeper) Accept(ctx context.Context, assignmentID int64, originalFilename string, r io.Reader) (Stored, error) {
	ext, ok := g.Allowed(originalFilename)
	if !ok {
		return Stored{}, fmt.Errorf("%q: %w", filepath.Ext(originalFilename), ErrUnsupportedFileType)
	}

	if err := g.ensureDir(); err != nil {
		return Stored{}, err
	}

	storedName := uuid.NewString() + ext
	size, err := g.writeAtomic(ctx, storedName, r)
	if err != nil {
		return Stored{}, err
	}

	return Stored{
		OriginalFilename: originalFilename,
		StoredFilename:   storedName,
		AssignmentID:     assignmentID,
		Size:             size,
	}, nil
}

// ensureDir は保存先ディレクトリを初回のみ作成する。
func (g *Gatekeeper) ensureDir() error {
	g.mkdirOnce.Do(func() {
		if err := os.MkdirAll(g.dir, 0o750); err != nil {
			g.mkdirErr = &StorageError{Op: "mkdir", Err: err}
		}
	})
	return g.mkdirErr
}

// writeAtomic は一時ファイルに書き込んだ後、最終的なファイル名にリネームする。
// 失敗した場合は一時ファイルを削除する。
func (g *Gatekeeper) writeAtomic(ctx context.Context, name string, r io.Reader) (size int64, err error) {
	tmp, err := os.CreateTemp(g.dir, ".upload-*.tmp")
	if err != nil {
		return 0, &StorageError{Op: "create", Err: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	src := r
	if g.maxBytes > 0 {
		// 上限を1バイト超えて読めたらサイズ超過と判定する。
		src = io.LimitReader(r, g.maxBytes+1)
	}

	size, err = io.Copy(tmp, &contextReader{ctx: ctx, r: src})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, &StorageError{Op: "write", Err: err}
	}
	if g.maxBytes > 0 && size > g.maxBytes {
		return 0, fmt.Errorf("最大%dバイト: %w", g.maxBytes, ErrTooLarge)
	}

	if err = tmp.Sync(); err != nil {
		return 0, &StorageError{Op: "sync", Err: err}
	}
	if err = tmp.Close(); err != nil {
		return 0, &StorageError{Op: "close", Err: err}
	}
	if err = os.Rename(tmpPath, filepath.Join(g.dir, name)); err != nil {
		return 0, &StorageError{Op: "rename", Err: err}
	}
	return size, nil
}

// contextReader はコンテキストがキャンセルされた時点で読み込みを打ち切る。
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
