package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/UDAVALAPATISURESH/app-chat/errors"
	"github.com/UDAVALAPATISURESH/app-chat/repositories"
)

// ArchivalWorker relocates hot messages older than the retention window
// into cold storage on a fixed schedule.
//
// The two stores cannot be updated in one transaction, so the cycle is
// ordered for recoverability instead: the cold copy is idempotent (keyed
// by the original message), and the hot delete runs only after that copy
// has committed. A crash in between leaves the message in both stores,
// which is the safe intermediate state; the next cycle re-selects it,
// overwrites the same cold entry and finishes the delete.
type ArchivalWorker struct {
	log       *slog.Logger
	messages  repositories.IMessageRepository
	archive   repositories.IArchiveRepository
	interval  time.Duration
	retention time.Duration
	running   atomic.Bool
	now       func() time.Time
}

func NewArchivalWorker(
	log *slog.Logger,
	messages repositories.IMessageRepository,
	archive repositories.IArchiveRepository,
	interval, retention time.Duration,
) *ArchivalWorker {
	return &ArchivalWorker{
		log:       log,
		messages:  messages,
		archive:   archive,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

// Run ticks on the configured schedule. A failed cycle is logged and
// retried on the next tick; it never reaches the serving path.
func (w *ArchivalWorker) Run(ctx context.Context) error {
	w.log.Info("Starting archival worker", "interval", w.interval, "retention", w.retention)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.RunCycle(ctx); err != nil {
				w.log.Error("Archival cycle failed, will retry on next tick", "error", err)
			}
		}
	}
}

// RunCycle performs one archival pass. Cycles are single-flight: if a
// previous run is still going when the tick fires, this one is skipped
// rather than racing it.
func (w *ArchivalWorker) RunCycle(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		w.log.Warn("Previous archival cycle still running, skipping tick")
		return nil
	}
	defer w.running.Store(false)

	cutoff := w.now().UTC().Add(-w.retention)
	selected, err := w.messages.SelectOlderThan(cutoff)
	if err != nil {
		return fmt.Errorf("%w: selecting messages: %w", errors.ErrArchivalCycle, err)
	}
	if len(selected) == 0 {
		w.log.Debug("No messages to archive")
		return nil
	}

	archivedAt := w.now().UTC()
	archived := 0
	for _, message := range selected {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", errors.ErrArchivalCycle, ctx.Err())
		}
		// Copy first; delete only once the copy has committed.
		if err := w.archive.ArchiveMessage(message, archivedAt); err != nil {
			return fmt.Errorf("%w: copying message %s: %w", errors.ErrArchivalCycle, message.ID, err)
		}
		if err := w.messages.DeleteMessage(message); err != nil {
			return fmt.Errorf("%w: deleting message %s: %w", errors.ErrArchivalCycle, message.ID, err)
		}
		archived++
	}

	w.log.Info("Archival cycle completed", "archived", archived, "cutoff", cutoff)
	return nil
}
