package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/R-Abinav/TicketBoss/internal/domain/reservation"
	"github.com/R-Abinav/TicketBoss/internal/domain/transaction"
)

var errTxRequired = errors.New("トランザクションが必要です")

type reservationRow struct {
	ID          string     `db:"id"`
	EventID     string     `db:"event_id"`
	PartnerID   string     `db:"partner_id"`
	Seats       int        `db:"seats"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	CancelledAt *time.Time `db:"cancelled_at"`
}

func (r *reservationRow) toEntity() *reservation.Reservation {
	return &reservation.Reservation{
		ID:          r.ID,
		EventID:     r.EventID,
		PartnerID:   r.PartnerID,
		Seats:       r.Seats,
		Status:      reservation.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		CancelledAt: r.CancelledAt,
	}
}

const reservationColumns = `id, event_id, partner_id, seats, status, created_at, cancelled_at`

// ReservationRepository は予約リポジトリのPostgreSQL実装
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository はReservationRepositoryを作成する
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create は新しい予約を作成する
// イベント行の条件付き更新と同一トランザクションで実行される
func (r *ReservationRepository) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errTxRequired
	}

	query := `
		INSERT INTO reservations (id, event_id, partner_id, seats, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := sqlxTx.ExecContext(ctx, query,
		res.ID, res.EventID, res.PartnerID, res.Seats, string(res.Status), res.CreatedAt,
	); err != nil {
		return WrapRetriable(fmt.Errorf("予約作成に失敗しました: %w", err))
	}
	return nil
}

// GetByID はIDから予約を取得する
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	var row reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDInTx はトランザクション内で予約を取得する
// キャンセル処理の目撃値（Status, Seats）の読み取りに使う
func (r *ReservationRepository) GetByIDInTx(ctx context.Context, tx transaction.Tx, id string) (*reservation.Reservation, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, errTxRequired
	}

	var row reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if err := sqlxTx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, WrapRetriable(fmt.Errorf("予約取得に失敗しました: %w", err))
	}
	return row.toEntity(), nil
}

// UpdateStatus は予約の状態遷移を永続化する
// 書き込みは confirmed → cancelled の一度きり
func (r *ReservationRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errTxRequired
	}

	query := `UPDATE reservations SET status = $1, cancelled_at = $2 WHERE id = $3`
	result, err := sqlxTx.ExecContext(ctx, query, string(res.Status), res.CancelledAt, res.ID)
	if err != nil {
		return WrapRetriable(fmt.Errorf("予約更新に失敗しました: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// CountConfirmedByEventID はイベントの確定済み予約数を取得する
func (r *ReservationRepository) CountConfirmedByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM reservations WHERE event_id = $1 AND status = $2`
	if err := r.db.GetContext(ctx, &count, query, eventID, string(reservation.StatusConfirmed)); err != nil {
		return 0, fmt.Errorf("予約数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// GetByPartnerID はパートナーIDから予約一覧を取得する
func (r *ReservationRepository) GetByPartnerID(ctx context.Context, partnerID string, limit, offset int) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE partner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, partnerID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗しました: %w", err)
	}
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

var _ reservation.Repository = (*ReservationRepository)(nil)
