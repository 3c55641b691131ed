package usecase

import (
	"context"
	"log/slog"

	"github.com/satriajati/gerbang/internal/pkg/goerror"
)

// Cleanup removes expired challenges from the store and returns how many were
// deleted. It backs the periodic sweep; expired challenges are also rejected
// lazily at verification time.
func (s *Usecase) Cleanup(ctx context.Context) (int, error) {
	ctx, span := s.startSpan(ctx, "Cleanup")
	defer span.End()

	deleted, err := s.repoStore.DeleteExpired(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete expired challenges", "error", err)
		return 0, goerror.NewServer(err)
	}

	if deleted > 0 {
		slog.InfoContext(ctx, "expired challenges removed", "count", deleted)
	}

	return deleted, nil
}
