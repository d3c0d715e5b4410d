package debug

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// StartMemLogger logs resident memory next to Go heap stats every interval.
// Decoded previews and rendered surfaces live on the Go heap while Tk photos
// do not, so the gap between rss and heap_sys tracks leaked photos.
// A failing RSS query is logged once and then reported as zero.
func StartMemLogger(interval time.Duration, logger *slog.Logger) (stop func()) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var rssErrLogged bool
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
			}
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			rss, err := residentBytes()
			if err != nil && !rssErrLogged {
				logger.Warn("memlog: rss query failed", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			logger.Info("memstats",
				slog.Int("goroutines", runtime.NumGoroutine()),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
				slog.Uint64("heap_inuse", ms.HeapInuse),
				slog.Uint64("heap_idle", ms.HeapIdle),
				slog.Uint64("heap_sys", ms.HeapSys),
				slog.Uint64("next_gc", ms.NextGC),
				slog.Uint64("rss", rss),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
			)
		}
	}()
	return stopOnce(done)
}

func stopOnce(done chan struct{}) func() {
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
