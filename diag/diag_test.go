package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerWritesWhenNotPaused(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Info("hello", "n", 1)
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("log output = %q, want it to contain %q", buf.String(), "hello")
	}
}

func TestPauseSuppressesOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Pause()
	l.Info("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("buf = %q, want empty while paused", buf.String())
	}
	l.Resume()
	l.Info("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("log output = %q, want it to contain %q", buf.String(), "should appear")
	}
}

func TestQuietAlwaysResumes(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Quiet(func() {
		l.Info("inside quiet")
	})
	if buf.Len() != 0 {
		t.Fatalf("buf = %q, want empty for log emitted during Quiet", buf.String())
	}
	l.Info("after quiet")
	if !strings.Contains(buf.String(), "after quiet") {
		t.Fatalf("log output = %q, want it to contain %q", buf.String(), "after quiet")
	}
}
