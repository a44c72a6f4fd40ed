// Package sloghooks logs cachefan hook events through log/slog, with
// sampling for the events that can flood (per-connection and per-endpoint
// delivery failures). Wrap it in hooks/async when the slog handler may block.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/cachefan"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	LiveFailEvery uint64
	PushFailEvery uint64
	// Optional recipient redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	liveFailCtr atomic.Uint64
	pushFailCtr atomic.Uint64
}

var _ cachefan.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(recipient string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(recipient)
	}
	sum := sha256.Sum256([]byte(recipient))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) StoreNotReady(op string) {
	if h.l == nil {
		return
	}
	h.l.Warn("cachefan.store_not_ready", "op", op)
}

func (h *Hooks) ScanAbandoned(pattern string, deleted int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("cachefan.scan_abandoned",
		"pattern", pattern,
		"deleted", deleted,
		"err", err)
}

func (h *Hooks) LiveSendFailed(recipient string, err error) {
	if h.l == nil || !sample(h.opts.LiveFailEvery, &h.liveFailCtr) {
		return
	}
	h.l.Info("cachefan.live_send_failed",
		"recipient", h.redact(recipient),
		"err", err)
}

func (h *Hooks) PushSendFailed(recipient string, err error) {
	if h.l == nil || !sample(h.opts.PushFailEvery, &h.pushFailCtr) {
		return
	}
	h.l.Info("cachefan.push_send_failed",
		"recipient", h.redact(recipient),
		"err", err)
}

func (h *Hooks) PushSourceError(recipient string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("cachefan.push_source_error",
		"recipient", h.redact(recipient),
		"err", err)
}
