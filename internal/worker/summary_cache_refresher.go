package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/R-Abinav/TicketBoss/internal/pkg/logger"
)

// SummaryRefresher はサマリーキャッシュを再計算するインターフェース
type SummaryRefresher interface {
	RefreshEventSummary(ctx context.Context) error
}

// SummaryCacheRefresher はイベントサマリーのキャッシュを定期的に温めるワーカー
// キャッシュが切れた瞬間のサマリー読み取りがストア直撃になるのを防ぐ
type SummaryCacheRefresher struct {
	ticketService SummaryRefresher
	interval      time.Duration
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// NewSummaryCacheRefresher は新しいリフレッシャーを作成
func NewSummaryCacheRefresher(ts SummaryRefresher, interval time.Duration) *SummaryCacheRefresher {
	return &SummaryCacheRefresher{
		ticketService: ts,
		interval:      interval,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start はリフレッシャーを開始
func (r *SummaryCacheRefresher) Start(ctx context.Context) {
	logger.Info("サマリーキャッシュリフレッシャー開始",
		zap.Duration("interval", r.interval),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("サマリーキャッシュリフレッシャー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("サマリーキャッシュリフレッシャー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop はリフレッシャーを停止
func (r *SummaryCacheRefresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// refresh はサマリーを再計算してキャッシュに保存
func (r *SummaryCacheRefresher) refresh(ctx context.Context) {
	if err := r.ticketService.RefreshEventSummary(ctx); err != nil {
		logger.Error("サマリーキャッシュの更新失敗", zap.Error(err))
		return
	}
	logger.Debug("サマリーキャッシュを更新")
}
