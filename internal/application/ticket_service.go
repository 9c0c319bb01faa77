package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/R-Abinav/TicketBoss/internal/domain/event"
	"github.com/R-Abinav/TicketBoss/internal/domain/reservation"
	"github.com/R-Abinav/TicketBoss/internal/domain/transaction"
	redisinfra "github.com/R-Abinav/TicketBoss/internal/infrastructure/redis"
	"github.com/R-Abinav/TicketBoss/internal/pkg/logger"
)

// SummaryCache はイベントサマリーキャッシュのインターフェース
type SummaryCache interface {
	Get(ctx context.Context, eventID string) (*redisinfra.CachedSummary, error)
	Set(ctx context.Context, summary *redisinfra.CachedSummary, ttl time.Duration) error
	Invalidate(ctx context.Context, eventID string) error
}

// TicketServiceConfig はTicketServiceの設定
type TicketServiceConfig struct {
	// EventID はこのデプロイメントが扱うイベントのID
	EventID string
	// TxTimeout は予約・キャンセル1回あたりの全体タイムアウト
	TxTimeout time.Duration
	// SummaryCacheTTL はサマリーキャッシュの有効期間
	SummaryCacheTTL time.Duration
}

// TicketService は座席プールに対する予約・キャンセル・サマリーを提供する
// 座席会計の相互排他はすべてイベント行の Version を使った条件付き更新に委ね、
// プロセス内ロックは使わない
// 競合（ErrVersionConflict / ErrSerializationFailure）のリトライは呼び出し側の責務
type TicketService struct {
	txManager       transaction.Manager
	eventRepo       event.Repository
	reservationRepo reservation.Repository
	cache           SummaryCache
	eventID         string
	txTimeout       time.Duration
	cacheTTL        time.Duration
}

// NewTicketService はTicketServiceを作成する
// cache は nil でもよい（キャッシュなしで動作する）
func NewTicketService(
	tm transaction.Manager,
	er event.Repository,
	rr reservation.Repository,
	cache SummaryCache,
	cfg TicketServiceConfig,
) *TicketService {
	txTimeout := cfg.TxTimeout
	if txTimeout <= 0 {
		txTimeout = 10 * time.Second
	}
	cacheTTL := cfg.SummaryCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 2 * time.Second
	}
	return &TicketService{
		txManager:       tm,
		eventRepo:       er,
		reservationRepo: rr,
		cache:           cache,
		eventID:         cfg.EventID,
		txTimeout:       txTimeout,
		cacheTTL:        cacheTTL,
	}
}

// ReserveSeats はパートナーに seats 席を予約する
// 1つの直列化可能トランザクション内で、目撃 → 検証 → 条件付き更新 → 予約作成を行う
// 他の更新が先にコミットしていた場合は event.ErrVersionConflict を返し、部分適用はしない
func (s *TicketService) ReserveSeats(ctx context.Context, partnerID string, seats int) (*reservation.Reservation, error) {
	if partnerID == "" {
		return nil, reservation.ErrPartnerIDRequired
	}
	if seats <= 0 {
		return nil, event.ErrInvalidSeatCount
	}

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 目撃値の読み取り
	ev, err := s.eventRepo.GetByIDInTx(ctx, tx, s.eventID)
	if err != nil {
		return nil, err
	}

	// 目撃した空席数に対する検証と減算
	if err := ev.Reserve(seats); err != nil {
		return nil, err
	}

	// 条件付き更新（楽観的ロック）
	// 競合時はそのまま伝播し、トランザクション全体が破棄される
	if err := s.eventRepo.UpdateAvailableSeats(ctx, tx, ev); err != nil {
		return nil, err
	}

	res := reservation.NewReservation(uuid.NewString(), s.eventID, partnerID, seats)
	if err := res.Validate(); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.Create(ctx, tx, res); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateSummary(ctx)
	return res, nil
}

// CancelReservation は予約をキャンセルし、座席を空席に戻す
// 予約の状態遷移とイベント行の条件付き更新は同一トランザクションで行われ、
// どちらかが失敗すれば両方とも適用されない
func (s *TicketService) CancelReservation(ctx context.Context, reservationID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	res, err := s.reservationRepo.GetByIDInTx(ctx, tx, reservationID)
	if err != nil {
		return err
	}

	// 2回目のキャンセルはここでエラーになる
	if err := res.Cancel(); err != nil {
		return err
	}
	if err := s.reservationRepo.UpdateStatus(ctx, tx, res); err != nil {
		return err
	}

	ev, err := s.eventRepo.GetByIDInTx(ctx, tx, res.EventID)
	if err != nil {
		return err
	}
	if err := ev.Restore(res.Seats); err != nil {
		return err
	}
	if err := s.eventRepo.UpdateAvailableSeats(ctx, tx, ev); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateSummary(ctx)
	return nil
}

// EventSummary はイベントの集計結果を表す
type EventSummary struct {
	EventID          string
	Name             string
	TotalSeats       int
	AvailableSeats   int
	ReservationCount int
	Version          int
}

// GetEventSummary はイベントの空席数と確定済み予約数を取得する
// ロックは取らず、コミット済みの状態だけを読む
// キャッシュが有効な間は結果整合の値を返すことがある
func (s *TicketService) GetEventSummary(ctx context.Context) (*EventSummary, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, s.eventID); err == nil {
			return &EventSummary{
				EventID:          cached.EventID,
				Name:             cached.Name,
				TotalSeats:       cached.TotalSeats,
				AvailableSeats:   cached.AvailableSeats,
				ReservationCount: cached.ReservationCount,
				Version:          cached.Version,
			}, nil
		} else if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("サマリーキャッシュの取得に失敗", zap.Error(err))
		}
	}

	summary, err := s.loadSummary(ctx)
	if err != nil {
		return nil, err
	}
	s.storeSummary(ctx, summary)
	return summary, nil
}

// RefreshEventSummary はサマリーをストアから再計算してキャッシュを温める
// ワーカーから定期的に呼ばれる
func (s *TicketService) RefreshEventSummary(ctx context.Context) error {
	summary, err := s.loadSummary(ctx)
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, toCachedSummary(summary), s.cacheTTL)
}

// GetPartnerReservations はパートナーの予約一覧を取得する
func (s *TicketService) GetPartnerReservations(ctx context.Context, partnerID string, limit, offset int) ([]*reservation.Reservation, error) {
	if partnerID == "" {
		return nil, reservation.ErrPartnerIDRequired
	}
	if limit <= 0 {
		limit = 20
	}
	return s.reservationRepo.GetByPartnerID(ctx, partnerID, limit, offset)
}

func (s *TicketService) loadSummary(ctx context.Context) (*EventSummary, error) {
	ev, err := s.eventRepo.GetByID(ctx, s.eventID)
	if err != nil {
		return nil, err
	}
	count, err := s.reservationRepo.CountConfirmedByEventID(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	return &EventSummary{
		EventID:          ev.ID,
		Name:             ev.Name,
		TotalSeats:       ev.TotalSeats,
		AvailableSeats:   ev.AvailableSeats,
		ReservationCount: count,
		Version:          ev.Version,
	}, nil
}

func (s *TicketService) storeSummary(ctx context.Context, summary *EventSummary) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, toCachedSummary(summary), s.cacheTTL); err != nil {
		logger.Warn("サマリーキャッシュの保存に失敗", zap.Error(err))
	}
}

func (s *TicketService) invalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, s.eventID); err != nil {
		logger.Warn("サマリーキャッシュの無効化に失敗", zap.Error(err))
	}
}

func toCachedSummary(s *EventSummary) *redisinfra.CachedSummary {
	return &redisinfra.CachedSummary{
		EventID:          s.EventID,
		Name:             s.Name,
		TotalSeats:       s.TotalSeats,
		AvailableSeats:   s.AvailableSeats,
		ReservationCount: s.ReservationCount,
		Version:          s.Version,
	}
}
