package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zurustar/eventscript/pkg/interpreter"
	"github.com/zurustar/eventscript/pkg/logger"
	"github.com/zurustar/eventscript/pkg/script"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config はコマンドライン引数・環境変数・設定ファイルから解析された設定を保持する
type Config struct {
	ScriptPath string        // スクリプト文書のパス
	Timeout    time.Duration // タイムアウト時間（0は無制限）
	LogLevel   string        // ログレベル（debug, info, warn, error）
	Locale     string        // 日時表示のロケール（BCP 47）
	Encoding   string        // スクリプトファイルの文字コード
	QueueSize  int           // イベントキューの最大長
	ConfigFile string        // 設定ファイル（YAML）のパス
	ShowHelp   bool          // ヘルプ表示フラグ
}

// デフォルト値
const (
	DefaultLogLevel = "info"
	DefaultLocale   = "en-US"
	DefaultEncoding = string(script.EncodingUTF8)
)

// fileConfig は設定ファイルの内容
type fileConfig struct {
	Timeout   *int   `yaml:"timeout"`
	LogLevel  string `yaml:"log_level"`
	Locale    string `yaml:"locale"`
	Encoding  string `yaml:"encoding"`
	QueueSize *int   `yaml:"queue_size"`
}

// ParseArgs コマンドライン引数を解析してConfigを返す
// 優先順位: コマンドラインフラグ > 環境変数 > 設定ファイル > デフォルト
func ParseArgs(args []string) (*Config, error) {
	return parseArgs(args, os.Getenv)
}

func parseArgs(args []string, getenv func(string) string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("eventscript", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		timeoutSec int
		flags      Config
	)
	fs.IntVar(&timeoutSec, "timeout", 0, "タイムアウト時間（秒）")
	fs.IntVar(&timeoutSec, "t", 0, "タイムアウト時間（秒）（短縮形）")
	fs.StringVar(&flags.LogLevel, "log-level", DefaultLogLevel, "ログレベル（debug, info, warn, error）")
	fs.StringVar(&flags.LogLevel, "l", DefaultLogLevel, "ログレベル（短縮形）")
	fs.StringVar(&flags.Locale, "locale", DefaultLocale, "日時表示のロケール")
	fs.StringVar(&flags.Encoding, "encoding", DefaultEncoding, "スクリプトファイルの文字コード")
	fs.IntVar(&flags.QueueSize, "queue-size", interpreter.DefaultQueueSize, "イベントキューの最大長")
	fs.StringVar(&flags.ConfigFile, "config", "", "設定ファイル（YAML）")
	fs.StringVar(&flags.ConfigFile, "c", "", "設定ファイル（短縮形）")
	fs.BoolVar(&flags.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&flags.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 明示的に指定されたフラグ
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	config := &Config{
		LogLevel:   DefaultLogLevel,
		Locale:     DefaultLocale,
		Encoding:   DefaultEncoding,
		QueueSize:  interpreter.DefaultQueueSize,
		ConfigFile: flags.ConfigFile,
		ShowHelp:   flags.ShowHelp,
	}

	// 設定ファイル
	if config.ConfigFile != "" {
		if err := config.loadFile(config.ConfigFile); err != nil {
			return nil, err
		}
	}

	// 環境変数からタイムアウトを取得（不正な値は無視）
	if timeoutEnv := getenv("TIMEOUT"); timeoutEnv != "" {
		if t, err := strconv.Atoi(timeoutEnv); err == nil && t > 0 {
			config.Timeout = time.Duration(t) * time.Second
		}
	}
	if logLevelEnv := getenv("LOG_LEVEL"); logLevelEnv != "" {
		config.LogLevel = strings.ToLower(logLevelEnv)
	}
	if localeEnv := getenv("EVENTSCRIPT_LOCALE"); localeEnv != "" {
		config.Locale = localeEnv
	}

	// コマンドラインフラグ
	if set["timeout"] || set["t"] {
		if timeoutSec < 0 {
			return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
		}
		config.Timeout = time.Duration(timeoutSec) * time.Second
	}
	if set["log-level"] || set["l"] {
		config.LogLevel = flags.LogLevel
	}
	if set["locale"] {
		config.Locale = flags.Locale
	}
	if set["encoding"] {
		config.Encoding = flags.Encoding
	}
	if set["queue-size"] {
		config.QueueSize = flags.QueueSize
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	// 位置引数（スクリプト文書のパス）
	if fs.NArg() > 0 {
		config.ScriptPath = fs.Arg(0)
	}

	return config, nil
}

// loadFile 設定ファイルを読み込む（未知のキーはエラー）
func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)

	var fc fileConfig
	if err := decoder.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if fc.Timeout != nil {
		if *fc.Timeout < 0 {
			return fmt.Errorf("config: timeout must be non-negative, got %d", *fc.Timeout)
		}
		c.Timeout = time.Duration(*fc.Timeout) * time.Second
	}
	if fc.LogLevel != "" {
		c.LogLevel = strings.ToLower(fc.LogLevel)
	}
	if fc.Locale != "" {
		c.Locale = fc.Locale
	}
	if fc.Encoding != "" {
		c.Encoding = fc.Encoding
	}
	if fc.QueueSize != nil {
		c.QueueSize = *fc.QueueSize
	}
	return nil
}

// validate 設定値の検証
func (c *Config) validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	enc, err := script.ParseEncoding(c.Encoding)
	if err != nil {
		return err
	}
	c.Encoding = string(enc)

	tag, err := language.Parse(strings.ReplaceAll(c.Locale, "_", "-"))
	if err != nil {
		return fmt.Errorf("invalid locale: %s", c.Locale)
	}
	c.Locale = tag.String()

	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive, got %d", c.QueueSize)
	}
	return nil
}

// boolFlags 値を取らないフラグ
var boolFlags = map[string]bool{
	"-h": true, "--h": true, "-help": true, "--help": true,
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			// -t 5 のように次の引数が値である場合は一緒に移動する
			if !boolFlags[arg] && !strings.Contains(arg, "=") &&
				i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}

	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `eventscript - event script interpreter

Usage:
  eventscript [options] <script>

Arguments:
  script        スクリプト文書（YAML または JSON 形式の AST）のパス

Options:
  -t, --timeout <seconds>     指定秒数後にイベントループを終了（デフォルト: 無制限）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  --locale <tag>              日時表示のロケール（デフォルト: en-US）
  --encoding <name>           文字コード: utf-8, utf-16, shift_jis（デフォルト: utf-8）
  --queue-size <n>            イベントキューの最大長（デフォルト: %d）
  -c, --config <file>         設定ファイル（YAML）
  -h, --help                  このヘルプを表示

Environment Variables:
  TIMEOUT=<seconds>           タイムアウト時間（秒）
  LOG_LEVEL=<level>           ログレベル
  EVENTSCRIPT_LOCALE=<tag>    日時表示のロケール

Config File Keys:
  timeout, log_level, locale, encoding, queue_size

Examples:
  eventscript hello.yaml                  スクリプトを実行
  eventscript --timeout 10 tick.yaml      10秒後にタイマーを停止して終了
  eventscript --locale de-DE clock.yaml   ドイツ語の日時表示
  eventscript -c eventscript.yaml tick.yaml
`, interpreter.DefaultQueueSize)
}
