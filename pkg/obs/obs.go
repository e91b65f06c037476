package obs

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const RequestIDContextKey = "reqId"

type Config struct {
	Level      string
	Production bool
	// File, when set, receives the log stream with size-based rotation.
	File string
}

// Client is a leveled printf-style logger. The zero value discards everything.
type Client struct {
	log *zap.SugaredLogger
}

var nop = zap.NewNop().Sugar()

func New(cfg Config) (*Client, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encoderCfg)
	if cfg.Production {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	sink := zapcore.AddSync(os.Stdout)
	if cfg.File != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    100,
			MaxBackups: 5,
			Compress:   true,
		})
	}

	core := zapcore.NewCore(encoder, sink, level)
	return &Client{log: zap.New(core).Sugar()}, nil
}

// Wrap adapts an existing zap logger, mostly for tests using zaptest/observer.
func Wrap(logger *zap.Logger) *Client {
	return &Client{log: logger.Sugar()}
}

func (c *Client) Sync() error {
	if c == nil || c.log == nil {
		return nil
	}
	return c.log.Sync()
}

func (c *Client) logger(ctx context.Context) *zap.SugaredLogger {
	if c == nil || c.log == nil {
		return nop
	}
	if ctx != nil {
		if reqID, ok := ctx.Value(RequestIDContextKey).(string); ok && reqID != "" {
			return c.log.With("req_id", reqID)
		}
	}
	return c.log
}

func (c *Client) LogDebug(ctx context.Context, msg string, args ...interface{}) {
	c.logger(ctx).Debugf(msg, args...)
}

func (c *Client) LogInfo(ctx context.Context, msg string, args ...interface{}) {
	c.logger(ctx).Infof(msg, args...)
}

func (c *Client) LogNotice(ctx context.Context, msg string, args ...interface{}) {
	c.logger(ctx).With("notice", true).Infof(msg, args...)
}

func (c *Client) LogErr(ctx context.Context, msg string, args ...interface{}) {
	c.logger(ctx).Errorf(msg, args...)
}

func (c *Client) LogAlert(ctx context.Context, msg string, args ...interface{}) {
	c.logger(ctx).With("alert", true).Errorf(msg, args...)
}
