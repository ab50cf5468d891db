package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const rootName = "desktop"

// Logger wraps zap.Logger with the desktop's component naming.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// Config defines logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Development bool
	OutputPaths []string // Defaults to stdout
	Service     string   // Attached to every line, defaults to "webdesk"
}

// New builds a logger. Production output is JSON with sampling so websocket
// and clock chatter cannot flood the sink; development output is colored
// console lines stamped with wall-clock time only.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	atom := zap.NewAtomicLevelAt(level)

	paths := cfg.OutputPaths
	if len(paths) == 0 {
		paths = []string{"stdout"}
	}
	sink, _, err := zap.Open(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output: %w", err)
	}

	service := cfg.Service
	if service == "" {
		service = "webdesk"
	}

	var (
		core zapcore.Core
		opts = []zap.Option{zap.AddCaller(), zap.Fields(zap.String("service", service))}
	)
	if cfg.Development {
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoding()), sink, atom)
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		core = zapcore.NewSamplerWithOptions(
			zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoding()), sink, atom),
			time.Second, 100, 10,
		)
	}

	return &Logger{Logger: zap.New(core, opts...).Named(rootName), level: atom}, nil
}

// NewDevelopment creates a debug-level console logger, falling back to a
// nop logger if stdout cannot be opened.
func NewDevelopment() *Logger {
	l, err := New(Config{Level: "debug", Development: true})
	if err != nil {
		return NewNop()
	}
	return l
}

// NewNop returns a logger that discards everything, for tests.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.FatalLevel)}
}

// Component returns a child logger tagged with a subsystem name.
func (l *Logger) Component(name string) *zap.Logger {
	if l == nil || l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger.Named(name)
}

// SetLevel changes the level of this logger and every component derived from it
func (l *Logger) SetLevel(level zapcore.Level) {
	l.level.SetLevel(level)
}

// Level reports the current level
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// jsonEncoding names fields after the desktop's vocabulary. Durations are
// milliseconds because boot, settle and chat timings are all sub-minute.
func jsonEncoding() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

func consoleEncoding() zapcore.EncoderConfig {
	cfg := jsonEncoding()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}
