package sqlbind

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

type defaultLogger struct {
	log *slog.Logger
}

// NewDefaultLogger 默认输出到 stderr
func NewDefaultLogger() *defaultLogger {
	return newSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func newSlogLogger(l *slog.Logger) *defaultLogger {
	return &defaultLogger{log: l}
}

func (d *defaultLogger) Info(v ...interface{}) {
	d.log.Info(fmt.Sprint(v...), "caller", d.getPrefix(3))
}

func (d *defaultLogger) Infof(format string, v ...interface{}) {
	d.log.Info(fmt.Sprintf(format, v...), "caller", d.getPrefix(3))
}

func (d *defaultLogger) Warning(v ...interface{}) {
	d.log.Warn(fmt.Sprint(v...), "caller", d.getPrefix(3))
}

func (d *defaultLogger) Warningf(format string, v ...interface{}) {
	d.log.Warn(fmt.Sprintf(format, v...), "caller", d.getPrefix(3))
}

func (d *defaultLogger) Error(v ...interface{}) {
	d.log.Error(fmt.Sprint(v...), "caller", d.getPrefix(3))
}

func (d *defaultLogger) Errorf(format string, v ...interface{}) {
	d.log.Error(fmt.Sprintf(format, v...), "caller", d.getPrefix(3))
}

func (d *defaultLogger) getPrefix(skip int) string {
	file, line := d.callInfo(skip)
	return file + ":" + strconv.Itoa(line)
}

func (d *defaultLogger) callInfo(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", 0
	}
	return parseFileName(file), line
}

// parseFileName 只保留最后一级目录和文件名
func parseFileName(file string) string {
	dir, name := filepath.Split(file)
	return filepath.Join(filepath.Base(dir), name)
}
