package debug

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitForLog(t *testing.T, buf *syncBuffer, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), msg) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %q record in %q", msg, buf.String())
}

func TestLoggersEmitAndStop(t *testing.T) {
	buf := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	stopG := StartGoroutineLogger(10*time.Millisecond, logger)
	stopM := StartMemLogger(10*time.Millisecond, logger)
	waitForLog(t, buf, `"msg":"goroutine-stacks"`)
	waitForLog(t, buf, `"msg":"memstats"`)
	stopG()
	stopM()
	stopM()
}

func TestResidentBytes(t *testing.T) {
	rss, err := residentBytes()
	if err != nil {
		t.Skipf("rss unavailable: %v", err)
	}
	if rss == 0 {
		t.Fatal("zero rss")
	}
}
