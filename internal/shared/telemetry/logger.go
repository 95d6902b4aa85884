package telemetry

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Output receives one JSON object per line. Tests swap it.
var Output io.Writer = os.Stdout

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "info"
	}
	return levelNames[l]
}

// ParseLevel maps a LOG_LEVEL value to a Level. Unknown names give info.
func ParseLevel(s string) Level {
	for i, name := range levelNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Level(i)
		}
	}
	return LevelInfo
}

var (
	minLevel atomic.Int32
	writeMu  sync.Mutex
)

func init() {
	minLevel.Store(int32(ParseLevel(os.Getenv("LOG_LEVEL"))))
}

// SetLevel drops lines below l from then on.
func SetLevel(l Level) { minLevel.Store(int32(l)) }

func Debug(msg string, fields map[string]any) { write(LevelDebug, msg, fields) }
func Info(msg string, fields map[string]any)  { write(LevelInfo, msg, fields) }
func Warn(msg string, fields map[string]any)  { write(LevelWarn, msg, fields) }
func Error(msg string, fields map[string]any) { write(LevelError, msg, fields) }

func write(level Level, msg string, fields map[string]any) {
	if int32(level) < minLevel.Load() {
		return
	}
	entry := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		if err, ok := v.(error); ok && err != nil {
			v = err.Error()
		}
		entry[k] = v
	}
	entry["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg

	line, err := json.Marshal(entry)
	if err != nil {
		line, _ = json.Marshal(map[string]any{
			"ts":    entry["ts"],
			"level": LevelError.String(),
			"msg":   "telemetry.marshal_failed",
			"event": msg,
			"error": err.Error(),
		})
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	Output.Write(append(line, '\n'))
}
