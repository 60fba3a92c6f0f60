package log

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/astaxie/beego/logs"
)

type logConfig struct {
	Filename string `json:"filename"`
	Level    int    `json:"level,omitempty"`
	Rotate   bool   `json:"rotate,omitempty"`
	Daily    bool   `json:"daily,omitempty"`
	MaxDays  int64  `json:"maxdays,omitempty"`
	MaxLines int    `json:"maxlines,omitempty"`
	MaxSize  int    `json:"maxsize,omitempty"`
}

func validLogLevel(strLevel string) (level int, ok bool) {
	ok = true
	strLevel = strings.ToLower(strLevel)
	switch strLevel {
	case "emergency":
		level = logs.LevelEmergency
	case "alert":
		level = logs.LevelAlert
	case "critical":
		level = logs.LevelCritical
	case "error":
		level = logs.LevelError
	case "warn":
		level = logs.LevelWarn
	case "info":
		level = logs.LevelInfo
	case "debug":
		level = logs.LevelDebug
	case "notice":
		level = logs.LevelNotice
	default:
		ok = false
	}
	return
}

// Init configures the file logger under dir with the given level name.
func Init(dir, strLevel string) error {
	logLevel, ok := validLogLevel(strLevel)
	if !ok {
		return fmt.Errorf("mismatch the logLevel %s", strLevel)
	}
	config, err := json.Marshal(logConfig{
		Filename: path.Join(dir, "debug.log"),
		Rotate:   true,
		Daily:    true,
		Level:    logLevel,
	})
	if err != nil {
		return err
	}
	logs.SetLogger(logs.AdapterFile, string(config))
	return nil
}

func Emergency(format string, v ...interface{}) {
	logs.Emergency(format, v...)
}

func Alert(format string, v ...interface{}) {
	logs.Alert(format, v...)
}

func Critical(format string, v ...interface{}) {
	logs.Critical(format, v...)
}

func Error(format string, v ...interface{}) {
	logs.Error(format, v...)
}

func Warn(format string, v ...interface{}) {
	logs.Warn(format, v...)
}

func Info(format string, v ...interface{}) {
	logs.Info(format, v...)
}

func Debug(format string, v ...interface{}) {
	logs.Debug(format, v...)
}

func Notice(format string, v ...interface{}) {
	logs.Notice(format, v...)
}
