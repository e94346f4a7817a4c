package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ivancheban/salary-bot/internal/config"
)

// feedSnapshot is one published salary feed.
type feedSnapshot struct {
	body  []byte
	etag  string
	built time.Time
}

// UpdateCalendar publishes a feed built at built. Readers see either the
// previous snapshot or this one, never a mix.
func (s *Server) UpdateCalendar(data []byte, built time.Time) {
	sum := sha256.Sum256(data)
	snap := &feedSnapshot{
		body:  data,
		etag:  fmt.Sprintf(config.FormatETag, hex.EncodeToString(sum[:config.ETagBytes])),
		built: built.UTC().Truncate(time.Second),
	}
	s.feed.Store(snap)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, snap.etag,
	)
}

// handleCalendar serves the latest feed. Conditional requests, HEAD and
// ranges are answered by http.ServeContent from the snapshot's ETag and
// build time.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	snap := s.feed.Load()
	if snap == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	h := w.Header()
	h.Set(config.HeaderContentType, config.MimeTextCalendar)
	h.Set(config.HeaderXContentType, config.MimeNoSniff)
	h.Set(config.HeaderCacheControl, config.CacheControlPrivate)
	h.Set(config.HeaderETag, snap.etag)

	http.ServeContent(w, r, config.FeedFileName, snap.built, bytes.NewReader(snap.body))
}
