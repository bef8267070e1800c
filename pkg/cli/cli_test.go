package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// noEnv 環境変数が空の getenv
func noEnv(string) string { return "" }

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseArgs_ValidArgs(t *testing.T) {
	defaults := Config{
		LogLevel:  "info",
		Locale:    "en-US",
		Encoding:  "utf-8",
		QueueSize: 1000,
	}
	with := func(f func(c *Config)) Config {
		c := defaults
		f(&c)
		return c
	}

	tests := []struct {
		name     string
		args     []string
		expected Config
	}{
		{
			name:     "デフォルト設定",
			args:     []string{},
			expected: defaults,
		},
		{
			name:     "スクリプトパス指定",
			args:     []string{"/path/to/hello.yaml"},
			expected: with(func(c *Config) { c.ScriptPath = "/path/to/hello.yaml" }),
		},
		{
			name:     "タイムアウト指定",
			args:     []string{"--timeout", "10"},
			expected: with(func(c *Config) { c.Timeout = 10 * time.Second }),
		},
		{
			name:     "タイムアウト指定（短縮形）",
			args:     []string{"-t", "5"},
			expected: with(func(c *Config) { c.Timeout = 5 * time.Second }),
		},
		{
			name:     "ログレベル指定（短縮形）",
			args:     []string{"-l", "error"},
			expected: with(func(c *Config) { c.LogLevel = "error" }),
		},
		{
			name:     "ロケール指定（アンダースコア区切り）",
			args:     []string{"--locale", "de_DE"},
			expected: with(func(c *Config) { c.Locale = "de-DE" }),
		},
		{
			name:     "文字コード指定",
			args:     []string{"--encoding", "SJIS"},
			expected: with(func(c *Config) { c.Encoding = "shift_jis" }),
		},
		{
			name:     "キューサイズ指定",
			args:     []string{"--queue-size=16"},
			expected: with(func(c *Config) { c.QueueSize = 16 }),
		},
		{
			name:     "ヘルプ表示",
			args:     []string{"--help"},
			expected: with(func(c *Config) { c.ShowHelp = true }),
		},
		{
			name:     "ヘルプ表示（短縮形）と位置引数",
			args:     []string{"-h", "tick.yaml"},
			expected: with(func(c *Config) { c.ShowHelp = true; c.ScriptPath = "tick.yaml" }),
		},
		{
			name: "位置引数が最初（順序に関係なく動作）",
			args: []string{"tick.yaml", "--timeout", "30", "--log-level", "warn"},
			expected: with(func(c *Config) {
				c.ScriptPath = "tick.yaml"
				c.Timeout = 30 * time.Second
				c.LogLevel = "warn"
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := parseArgs(tt.args, noEnv)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *config != tt.expected {
				t.Errorf("got %+v, want %+v", *config, tt.expected)
			}
		})
	}
}

func TestParseArgs_InvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"負のタイムアウト", []string{"--timeout", "-10"}},
		{"無効なログレベル", []string{"--log-level", "invalid"}},
		{"無効なログレベル（短縮形）", []string{"-l", "trace"}},
		{"無効な文字コード", []string{"--encoding", "latin1"}},
		{"無効なロケール", []string{"--locale", "not a locale!"}},
		{"キューサイズが0", []string{"--queue-size", "0"}},
		{"未知のフラグ", []string{"--headless"}},
		{"存在しない設定ファイル", []string{"-c", "/nonexistent/eventscript.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseArgs(tt.args, noEnv); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eventscript.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestParseArgs_Precedence(t *testing.T) {
	file := writeConfig(t, "timeout: 3\nlog_level: warn\nlocale: fr-FR\nencoding: utf-16\nqueue_size: 50\n")

	t.Run("設定ファイルがデフォルトより優先", func(t *testing.T) {
		config, err := parseArgs([]string{"-c", file}, noEnv)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := Config{
			Timeout:    3 * time.Second,
			LogLevel:   "warn",
			Locale:     "fr-FR",
			Encoding:   "utf-16",
			QueueSize:  50,
			ConfigFile: file,
		}
		if *config != want {
			t.Errorf("got %+v, want %+v", *config, want)
		}
	})

	t.Run("環境変数が設定ファイルより優先", func(t *testing.T) {
		env := envOf(map[string]string{"TIMEOUT": "7", "LOG_LEVEL": "DEBUG", "EVENTSCRIPT_LOCALE": "ja-JP"})
		config, err := parseArgs([]string{"--config", file}, env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Timeout != 7*time.Second || config.LogLevel != "debug" || config.Locale != "ja-JP" {
			t.Errorf("unexpected config %+v", *config)
		}
		if config.QueueSize != 50 {
			t.Errorf("expected queue size from file, got %d", config.QueueSize)
		}
	})

	t.Run("フラグが環境変数より優先", func(t *testing.T) {
		env := envOf(map[string]string{"TIMEOUT": "7", "LOG_LEVEL": "debug", "EVENTSCRIPT_LOCALE": "ja-JP"})
		config, err := parseArgs([]string{"-c", file, "-t", "1", "-l", "error", "--locale", "en-GB"}, env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Timeout != time.Second || config.LogLevel != "error" || config.Locale != "en-GB" {
			t.Errorf("unexpected config %+v", *config)
		}
	})

	t.Run("フラグで0を指定すると無制限", func(t *testing.T) {
		config, err := parseArgs([]string{"--timeout", "0"}, envOf(map[string]string{"TIMEOUT": "9"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Timeout != 0 {
			t.Errorf("expected no timeout, got %v", config.Timeout)
		}
	})

	t.Run("不正な環境変数のタイムアウトは無視", func(t *testing.T) {
		config, err := parseArgs(nil, envOf(map[string]string{"TIMEOUT": "soon"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Timeout != 0 {
			t.Errorf("expected no timeout, got %v", config.Timeout)
		}
	})

	t.Run("不正な環境変数のログレベルはエラー", func(t *testing.T) {
		if _, err := parseArgs(nil, envOf(map[string]string{"LOG_LEVEL": "loud"})); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestParseArgs_ConfigFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"未知のキー", "headless: true\n"},
		{"負のタイムアウト", "timeout: -1\n"},
		{"型が不正", "queue_size: many\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := parseArgs([]string{"-c", path}, noEnv); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	t.Run("空の設定ファイル", func(t *testing.T) {
		path := writeConfig(t, "")
		if _, err := parseArgs([]string{"-c", path}, noEnv); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	PrintHelp(&buf)
	out := buf.String()
	for _, want := range []string{"Usage:", "--timeout", "--locale", "EVENTSCRIPT_LOCALE", "queue_size"} {
		if !strings.Contains(out, want) {
			t.Errorf("help should mention %q", want)
		}
	}
}
