// Package staticres はサーバー側で定義した許可リストのファイルだけを読み出す。
//
// クライアントが指定するのは短い識別子のみで、パスは固定の対応表から引く。
// ファイルの内容はテキストとしてそのまま返し、実行や評価は一切行わない。
package staticres

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
)

var (
	// ErrUnknownResource は許可リストにない識別子を表す。
	ErrUnknownResource = errors.New("許可されていないリソースです")
	// ErrNotFound は対応するファイルがディスク上に存在しないことを表す。
	ErrNotFound = errors.New("リソースが見つかりません")
)

// allowlist は識別子からファイルパスへの固定の対応表。
var allowlist = map[string]string{
	"hello":   "hello.py",
	"utility": "utility.py",
}

// Names は許可されている識別子をソートして返す。
func Names() []string {
	names := make([]string, 0, len(allowlist))
	for name := range allowlist {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsAllowed は識別子が許可リストに含まれるかを返す。
func IsAllowed(name string) bool {
	_, ok := allowlist[name]
	return ok
}

// Resource は読み出したファイルの内容。
type Resource struct {
	// Name は識別子。
	Name string
	// Content はファイルの内容。
	Content string
}

// Reader は許可リストのファイルをfs.FSから読み出す。
type Reader struct {
	fsys fs.FS
}

// NewReader は新しいReaderを生成する。
// fsysには os.DirFS でスクリプトディレクトリを渡す。
func NewReader(fsys fs.FS) *Reader {
	return &Reader{fsys: fsys}
}

// Read は識別子に対応するファイルの内容を返す。
func (r *Reader) Read(name string) (Resource, error) {
	path, ok := allowlist[name]
	if !ok {
		return Resource{}, fmt.Errorf("%q: %w", name, ErrUnknownResource)
	}

	content, err := fs.ReadFile(r.fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return Resource{}, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return Resource{}, fmt.Errorf("%s の読み込みに失敗: %w", path, err)
	}

	return Resource{Name: name, Content: string(content)}, nil
}
