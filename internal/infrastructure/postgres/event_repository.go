package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/R-Abinav/TicketBoss/internal/domain/event"
	"github.com/R-Abinav/TicketBoss/internal/domain/transaction"
)

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	TotalSeats     int       `db:"total_seats"`
	AvailableSeats int       `db:"available_seats"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	Version        int       `db:"version"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	return &event.Event{
		ID:             r.ID,
		Name:           r.Name,
		TotalSeats:     r.TotalSeats,
		AvailableSeats: r.AvailableSeats,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Version:        r.Version,
	}
}

const eventColumns = `id, name, total_seats, available_seats, created_at, updated_at, version`

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
// 既に同じIDのイベントが存在する場合は何もしない（シード用）
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (id, name, total_seats, available_seats, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Name, e.TotalSeats, e.AvailableSeats, e.CreatedAt, e.UpdatedAt, e.Version,
	)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDInTx はトランザクション内でイベントを取得する
// ここで読んだ AvailableSeats と Version が楽観的ロックの目撃値になる
func (r *EventRepository) GetByIDInTx(ctx context.Context, tx transaction.Tx, id string) (*event.Event, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, errTxRequired
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	err := sqlxTx.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, WrapRetriable(fmt.Errorf("イベント取得に失敗しました: %w", err))
	}
	return row.toEntity(), nil
}

// UpdateAvailableSeats は空席数を条件付き更新する（楽観的ロック）
// 目撃した Version が一致する行だけを更新し、Version を +1 する
// 更新行数が0の場合は他の更新が先にコミットしたので ErrVersionConflict を返す
func (r *EventRepository) UpdateAvailableSeats(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errTxRequired
	}

	query := `
		UPDATE events
		SET available_seats = $1, updated_at = $2, version = version + 1
		WHERE id = $3 AND version = $4
	`
	result, err := sqlxTx.ExecContext(ctx, query, e.AvailableSeats, time.Now(), e.ID, e.Version)
	if err != nil {
		return WrapRetriable(fmt.Errorf("空席数の更新に失敗しました: %w", err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrVersionConflict
	}

	e.Version++
	return nil
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
