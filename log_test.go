package sqlbind

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallFile(t *testing.T) {
	l := NewDefaultLogger()
	file, line := l.callInfo(1)
	assert.Equal(t, "log_test.go", filepath.Base(file))
	assert.Greater(t, line, 0)
	t.Log(l.getPrefix(2))
}

func TestParseFileName(t *testing.T) {
	testCases := []struct {
		desc string
		file string
		ok   string
	}{
		{desc: "多级目录", file: "/root/go/src/sqlbind/session.go", ok: "sqlbind/session.go"},
		{desc: "根目录", file: "/session.go", ok: "/session.go"},
	}
	for _, v := range testCases {
		assert.Equal(t, v.ok, parseFileName(v.file), v.desc)
	}
}

func TestDemo(t *testing.T) {
	buf := new(bytes.Buffer)
	l := newSlogLogger(slog.New(slog.NewTextHandler(buf, nil)))
	l.Info("hello info")
	l.Infof("hello infof: %v", 1)

	l.Warning("hello warning")
	l.Warningf("hello warningf: %v", 2)

	l.Error("hello error")
	l.Errorf("hello errorf: %v", 3)

	out := buf.String()
	for _, want := range []string{
		`level=INFO msg="hello info"`,
		`msg="hello infof: 1"`,
		`level=WARN msg="hello warning"`,
		`msg="hello warningf: 2"`,
		`level=ERROR msg="hello error"`,
		`msg="hello errorf: 3"`,
		"log_test.go:",
	} {
		assert.Contains(t, out, want)
	}
}
