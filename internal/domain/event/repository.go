package event

import (
	"context"

	"github.com/R-Abinav/TicketBoss/internal/domain/transaction"
)

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する（シード用、既存IDなら何もしない）
	Create(ctx context.Context, event *Event) error

	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id string) (*Event, error)

	// GetByIDInTx はトランザクション内でイベントを取得する
	// 楽観的ロックの目撃値（AvailableSeats, Version）の読み取りに使う
	GetByIDInTx(ctx context.Context, tx transaction.Tx, id string) (*Event, error)

	// UpdateAvailableSeats は空席数を条件付き更新する（楽観的ロック）
	// 目撃した Version が一致した場合のみ更新し Version を +1 する
	// 一致しなかった場合は ErrVersionConflict を返す
	UpdateAvailableSeats(ctx context.Context, tx transaction.Tx, event *Event) error
}
