package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/oelgazzar/nidgate/internal/model"
)

// UsageRecorder persists one usage row per handled request.
type UsageRecorder interface {
	Record(ctx context.Context, u model.Usage) error
}

// Tracker records every API request after the handler has answered it.
// Writes happen on a background goroutine fed through a buffered channel, so
// a slow or failing usage store never delays or alters a response.
type Tracker struct {
	usage  UsageRecorder
	logger zerolog.Logger
	ch     chan model.Usage
	done   chan struct{}
}

func NewTracker(usage UsageRecorder, logger zerolog.Logger) *Tracker {
	tr := &Tracker{
		usage:  usage,
		logger: logger,
		ch:     make(chan model.Usage, 1024),
		done:   make(chan struct{}),
	}
	go tr.drain()
	return tr
}

func (tr *Tracker) drain() {
	defer close(tr.done)
	for u := range tr.ch {
		// use context.Background since this is async — the request that
		// produced the entry is long gone by the time we write it.
		if err := tr.usage.Record(context.Background(), u); err != nil {
			tr.logger.Error().Err(err).Msg("usage record write failed")
		}
	}
}

// Close stops accepting entries and waits for the buffer to flush.
func (tr *Tracker) Close() {
	close(tr.ch)
	<-tr.done
}

// Middleware captures method, path, status and duration for each request.
func (tr *Tracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		u := model.Usage{
			Path:       r.URL.Path,
			Method:     r.Method,
			StatusCode: sw.status,
			Duration:   time.Since(start).Seconds(),
			Timestamp:  time.Now().UTC(),
		}
		if client := GetClient(r.Context()); client != nil {
			u.ClientID = &client.ID
		}

		select {
		case tr.ch <- u:
		default:
			tr.logger.Warn().Msg("usage buffer full, dropping entry")
		}
	})
}
