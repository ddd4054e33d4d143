package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/darkjarvis/darkjarvis/internal/session"
	"github.com/darkjarvis/darkjarvis/internal/store"
)

const finalFlushTimeout = 10 * time.Second

// finalFlush saves session state on the way out. recovered is the value of
// recover() in the caller's deferred function. It returns 1 when run
// panicked or the save failed, 0 otherwise.
func finalFlush(sess *session.State, st store.Store, log *slog.Logger, recovered any) int {
	exitCode := 0
	if recovered != nil {
		log.Error("Panic in main loop", "panic", recovered)
		exitCode = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
	defer cancel()
	if err := sess.Flush(ctx, st); err != nil {
		log.Error("Final save failed", "error", err)
		return 1
	}
	log.Info("Session state saved")
	return exitCode
}
