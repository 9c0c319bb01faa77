package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/R-Abinav/TicketBoss/internal/config"
	"github.com/R-Abinav/TicketBoss/internal/domain/event"
	"github.com/R-Abinav/TicketBoss/internal/pkg/logger"
)

// EnsureEvent は設定されたイベント行が存在することを保証する
// 既に存在する場合は座席数・バージョンには触れない
func EnsureEvent(ctx context.Context, repo event.Repository, cfg *config.EventConfig) error {
	existing, err := repo.GetByID(ctx, cfg.ID)
	if err == nil {
		logger.Info("イベントは既に存在します。シードをスキップします",
			zap.String("event_id", existing.ID),
			zap.Int("available_seats", existing.AvailableSeats),
		)
		return nil
	}
	if !errors.Is(err, event.ErrEventNotFound) {
		return err
	}

	e := event.NewEvent(cfg.ID, cfg.Name, cfg.TotalSeats)
	if err := e.Validate(); err != nil {
		return err
	}
	if err := repo.Create(ctx, e); err != nil {
		return err
	}

	logger.Info("イベントをシードしました",
		zap.String("event_id", e.ID),
		zap.String("name", e.Name),
		zap.Int("total_seats", e.TotalSeats),
	)
	return nil
}
