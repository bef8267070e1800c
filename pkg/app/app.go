package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zurustar/eventscript/pkg/ast"
	"github.com/zurustar/eventscript/pkg/cli"
	"github.com/zurustar/eventscript/pkg/interpreter"
	"github.com/zurustar/eventscript/pkg/logger"
	"github.com/zurustar/eventscript/pkg/script"
)

// ErrNoScript はスクリプトのパスが指定されていない場合のエラー
var ErrNoScript = errors.New("no script specified")

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config *cli.Config
	log    *slog.Logger
	stdout io.Writer // Speak の出力先
	logOut io.Writer // ログの出力先
}

// Option は Application の設定を変更する
type Option func(*Application)

// WithLogOutput ログの出力先を設定（デフォルトは標準出力）
func WithLogOutput(w io.Writer) Option {
	return func(app *Application) {
		app.logOut = w
	}
}

// New Applicationを作成
func New(stdout io.Writer, opts ...Option) *Application {
	app := &Application{
		stdout: stdout,
		logOut: os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	return app.RunContext(context.Background(), args)
}

// RunContext アプリケーションを実行。ctx が終了するとイベントループを止める
func (app *Application) RunContext(ctx context.Context, args []string) error {
	// 1. コマンドライン引数の解析
	config, err := cli.ParseArgs(args)
	if err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}
	app.config = config

	if config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}
	if config.ScriptPath == "" {
		return ErrNoScript
	}

	// 2. ロガーの初期化
	if err := logger.InitLoggerWithWriter(config.LogLevel, app.logOut); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.log = logger.GetLogger()

	app.log.Info("Application started", "script", config.ScriptPath, "locale", config.Locale)

	// 3. スクリプトの読み込み
	doc, err := app.loadScript()
	if err != nil {
		return fmt.Errorf("failed to load script: %w", err)
	}

	// 4. スクリプトの実行
	in := interpreter.New(
		interpreter.WithLogger(app.log),
		interpreter.WithLocale(config.Locale),
		interpreter.WithSpeaker(interpreter.NewWriterSpeaker(app.stdout)),
		interpreter.WithQueueSize(config.QueueSize),
	)
	defer in.Close()

	results, err := in.Exec(doc)
	if err != nil {
		return fmt.Errorf("script error: %w", err)
	}
	for i, v := range results {
		app.log.Debug("Statement result", "index", i, "type", v.Type(), "value", v.String())
	}

	// 5. タイマーが登録されていればイベントループを実行
	if err := app.runEvents(ctx, in); err != nil {
		return fmt.Errorf("event loop failed: %w", err)
	}

	app.log.Info("Application terminated normally")
	return nil
}

// loadScript スクリプト文書を読み込む
func (app *Application) loadScript() (*ast.Script, error) {
	enc, err := script.ParseEncoding(app.config.Encoding)
	if err != nil {
		return nil, err
	}
	return script.NewLoader(enc).Load(app.config.ScriptPath)
}

// runEvents タイムアウトまたはキャンセルまでイベントを処理する
func (app *Application) runEvents(ctx context.Context, in *interpreter.Interpreter) error {
	if !in.HasTimers() {
		return nil
	}

	if app.config.Timeout > 0 {
		app.log.Info("Waiting for timeout", "duration", app.config.Timeout)
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.config.Timeout)
		defer cancel()
	}
	return in.RunEvents(ctx)
}
