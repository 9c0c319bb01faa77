package reservation

import (
	"context"

	"github.com/R-Abinav/TicketBoss/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, reservation *Reservation) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// GetByIDInTx はトランザクション内で予約を取得する
	GetByIDInTx(ctx context.Context, tx transaction.Tx, id string) (*Reservation, error)

	// UpdateStatus は予約の状態遷移（キャンセル）を永続化する（トランザクション必須）
	UpdateStatus(ctx context.Context, tx transaction.Tx, reservation *Reservation) error

	// CountConfirmedByEventID はイベントの確定済み予約数を取得する
	CountConfirmedByEventID(ctx context.Context, eventID string) (int, error)

	// GetByPartnerID はパートナーIDから予約一覧を取得する
	GetByPartnerID(ctx context.Context, partnerID string, limit, offset int) ([]*Reservation, error)
}
