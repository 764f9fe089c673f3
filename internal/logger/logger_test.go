package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestLogger_Levels(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	l := New(&buf)
	l.Info("added %s", "vitamins")
	l.Warn("slow")
	l.Printf("decode %s: %v", "@tasks", "eof")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	is.Equal(len(lines), 3)
	is.True(strings.HasSuffix(lines[0], "INFO: added vitamins"))
	is.True(strings.HasSuffix(lines[1], "WARN: slow"))
	is.True(strings.HasSuffix(lines[2], "ERROR: decode @tasks: eof"))
	is.NoErr(l.Close())
}

func TestLogger_Open(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "logs", "rememo.log")
	l, err := Open(path)
	is.NoErr(err)
	l.Error("boom")
	is.NoErr(l.Close())

	bs, err := os.ReadFile(path)
	is.NoErr(err)
	is.True(strings.Contains(string(bs), "ERROR: boom"))
}
