package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/R-Abinav/TicketBoss/internal/domain/transaction"
)

// PostgreSQLが直列化違反・デッドロックで返すSQLSTATE
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqLockNotAvailable     = "55P03"
)

// TxWrapper は sqlx.Tx を transaction.Tx インターフェースでラップする
type TxWrapper struct {
	*sqlx.Tx
}

// Commit はトランザクションをコミットする
// 直列化違反による中断はリトライ可能なエラーとして区別する
func (t *TxWrapper) Commit() error {
	if err := t.Tx.Commit(); err != nil {
		if isRetriablePQError(err) {
			return fmt.Errorf("%w: %v", transaction.ErrSerializationFailure, err)
		}
		return err
	}
	return nil
}

// Rollback はトランザクションをロールバックする
// コミット済みの場合は何もしない
func (t *TxWrapper) Rollback() error {
	err := t.Tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// TxManager は sqlx.DB を使用したトランザクションマネージャー
// 座席会計のトランザクションは直列化可能分離レベルで開始し、
// 行ロック待ちには statement_timeout ではなく lock_timeout の上限を課す
type TxManager struct {
	db       *sqlx.DB
	lockWait time.Duration
}

// NewTxManager は新しい TxManager を作成する
func NewTxManager(db *sqlx.DB, lockWait time.Duration) *TxManager {
	return &TxManager{db: db, lockWait: lockWait}
}

// Begin は直列化可能分離レベルの新しいトランザクションを開始する
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	if m.lockWait > 0 {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockWait.Milliseconds())); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("lock_timeout設定に失敗しました: %w", err)
		}
	}
	return &TxWrapper{Tx: tx}, nil
}

// UnwrapTx は transaction.Tx から sqlx.Tx を取り出す
// リポジトリ実装で使用する
func UnwrapTx(tx transaction.Tx) *sqlx.Tx {
	if wrapper, ok := tx.(*TxWrapper); ok {
		return wrapper.Tx
	}
	return nil
}

// WrapRetriable はストア由来のリトライ可能なエラーを
// transaction.ErrSerializationFailure に変換する
// それ以外のエラーはそのまま返す
func WrapRetriable(err error) error {
	if err == nil {
		return nil
	}
	if isRetriablePQError(err) {
		return fmt.Errorf("%w: %v", transaction.ErrSerializationFailure, err)
	}
	return err
}

func isRetriablePQError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case pqSerializationFailure, pqDeadlockDetected, pqLockNotAvailable:
		return true
	}
	return false
}
