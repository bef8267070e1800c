// Package script はスクリプト文書（YAML/JSON 形式の AST）の読み込みを行う。
package script

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zurustar/eventscript/pkg/ast"
	"github.com/zurustar/eventscript/pkg/fileutil"
	"github.com/zurustar/eventscript/pkg/logger"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding はスクリプトファイルの文字コード
type Encoding string

const (
	EncodingUTF8     Encoding = "utf-8"
	EncodingUTF16    Encoding = "utf-16"
	EncodingShiftJIS Encoding = "shift_jis"
)

// ParseEncoding 文字コード名を Encoding に変換（大文字小文字・別名を許容）
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "utf-16", "utf16":
		return EncodingUTF16, nil
	case "shift_jis", "shift-jis", "sjis", "cp932":
		return EncodingShiftJIS, nil
	default:
		return "", fmt.Errorf("unsupported encoding: %s", name)
	}
}

func (e Encoding) decoder() *encoding.Decoder {
	switch e {
	case EncodingUTF16:
		// BOM があればそれに従い、なければリトルエンディアンとみなす
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case EncodingShiftJIS:
		return japanese.ShiftJIS.NewDecoder()
	default:
		// 先頭の BOM を取り除く
		return unicode.UTF8BOM.NewDecoder()
	}
}

// DecodeBytes 指定された文字コードから UTF-8 に変換
func DecodeBytes(data []byte, enc Encoding) ([]byte, error) {
	out, _, err := transform.Bytes(enc.decoder(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", enc, err)
	}
	return out, nil
}

// Source は読み込んだスクリプトファイルを表す
type Source struct {
	FileName string // ファイル名
	Content  []byte // UTF-8に変換された内容
	Size     int64  // ファイルサイズ
}

// Loader はスクリプトファイルの読み込みを行う
type Loader struct {
	encoding Encoding
	log      *slog.Logger
}

// NewLoader Loaderを作成
func NewLoader(enc Encoding) *Loader {
	if enc == "" {
		enc = EncodingUTF8
	}
	return &Loader{
		encoding: enc,
		log:      logger.GetLogger(),
	}
}

// ReadSource ファイルを読み込み UTF-8 に変換する。
// パスが見つからない場合は大文字小文字を無視して探す。
func (l *Loader) ReadSource(path string) (*Source, error) {
	resolved, err := fileutil.ResolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to find script %s: %w", path, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", resolved)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content, err := DecodeBytes(data, l.encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding: %w", err)
	}

	return &Source{
		FileName: filepath.Base(resolved),
		Content:  content,
		Size:     info.Size(),
	}, nil
}

// Load スクリプトファイルを読み込み AST に変換
func (l *Loader) Load(path string) (*ast.Script, error) {
	src, err := l.ReadSource(path)
	if err != nil {
		return nil, err
	}

	s, err := Parse(src.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.FileName, err)
	}

	l.log.Debug("Script loaded",
		"file", src.FileName,
		"size", src.Size,
		"encoding", l.encoding,
		"functions", len(s.Functions),
		"statements", len(s.Statements))
	return s, nil
}
