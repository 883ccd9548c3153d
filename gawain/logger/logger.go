package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeCommand LogType = "CMD"
	TypeDB      LogType = "DB"
	TypeEngine  LogType = "ENG"
	TypeSystem  LogType = "SYS"
	TypeError   LogType = "ERR"
)

type CustomHandler struct {
	opts  *slog.HandlerOptions
	out   io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
	// groups are accepted for slog compatibility but not rendered
	groups []string
}

// NewHandler returns the console handler writing to stdout at level.
func NewHandler(level slog.Leveler) *CustomHandler {
	return NewHandlerWithWriter(level, os.Stdout)
}

func NewHandlerWithWriter(level slog.Leveler, out io.Writer) *CustomHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &CustomHandler{
		opts:   &slog.HandlerOptions{Level: level},
		out:    out,
		mu:     &sync.Mutex{},
		attrs:  make([]slog.Attr, 0),
		groups: make([]string, 0),
	}
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &CustomHandler{
		opts:   h.opts,
		out:    h.out,
		mu:     h.mu,
		attrs:  merged,
		groups: h.groups,
	}
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	return &CustomHandler{
		opts:   h.opts,
		out:    h.out,
		mu:     h.mu,
		attrs:  h.attrs,
		groups: append(append([]string{}, h.groups...), name),
	}
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	if shouldSkipLog(&r) {
		return nil
	}

	timestamp := r.Time.Format("15:04:05")
	if r.Time.IsZero() {
		timestamp = time.Now().Format("15:04:05")
	}

	var levelColor, levelText string
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = colorRed, "ERROR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	case r.Level >= slog.LevelInfo:
		levelColor, levelText = colorGreen, "INFO"
	default:
		levelColor, levelText = colorPurple, "DEBUG"
	}

	logType := getLogType(&r)
	status := attrString(&r, "status")
	userName := attrString(&r, "user_name")
	cmdName := attrString(&r, "name")
	errorDetails := attrString(&r, "error")

	message := r.Message
	if r.Level >= slog.LevelError {
		if location := getErrorLocation(&r); location != "" {
			message = fmt.Sprintf("%s (%s)", message, location)
		}
		if errorDetails != "" {
			message = fmt.Sprintf("%s: %s", message, errorDetails)
		}
	}

	if cmdName != "" && userName != "" {
		message = fmt.Sprintf("%s [%s by %s]", message, cmdName, userName)
	}

	if status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, status)
	}

	if took := attrString(&r, "took"); took != "" {
		message = fmt.Sprintf("%s (took %s)", message, took)
	}

	var attrsStr strings.Builder
	for _, attr := range h.attrs {
		if !isInternalAttr(attr.Key) {
			fmt.Fprintf(&attrsStr, " %s=%v", attr.Key, attr.Value)
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		if !isInternalAttr(a.Key) {
			fmt.Fprintf(&attrsStr, " %s=%v", a.Key, a.Value)
		}
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "%s[Gawain] [%s] [%s%s%s] [%s] %s%s%s\n",
		colorWhite,
		timestamp,
		levelColor,
		levelText,
		colorWhite,
		logType,
		message,
		attrsStr.String(),
		colorReset,
	)
	return err
}

// gateway chatter that drowns out everything else at debug level
var skippedMessages = []string{
	"locking buckets",
	"unlocking buckets",
	"gateway event",
	"cleaning up bucket",
	"cleaned up rate limit buckets",
	"binary message received",
	"received gateway message",
	"locking gateway rate limiter",
	"unlocking gateway rate limiter",
	"sending gateway command",
	"new request",
	"new response",
	"locking rest bucket",
	"unlocking rest bucket",
	"rate limit response headers",
	"sending heartbeat",
}

func shouldSkipLog(r *slog.Record) bool {
	msg := strings.ToLower(r.Message)
	for _, skip := range skippedMessages {
		if strings.Contains(msg, skip) {
			return true
		}
	}
	return false
}

func getLogType(r *slog.Record) LogType {
	switch attrString(r, "type") {
	case "cmd", "component":
		return TypeCommand
	case "db":
		return TypeDB
	case "eng":
		return TypeEngine
	case "error":
		return TypeError
	}
	return TypeSystem
}

func isInternalAttr(key string) bool {
	switch key {
	case "type", "name", "user_name", "status", "error", "error_location", "took":
		return true
	}
	return false
}

func attrString(r *slog.Record, key string) string {
	var value string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			value = a.Value.String()
			return false
		}
		return true
	})
	return value
}

func getErrorLocation(r *slog.Record) string {
	if location := attrString(r, "error_location"); location != "" {
		return location
	}
	if r.PC == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{r.PC})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}
