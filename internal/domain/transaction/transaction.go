package transaction

import (
	"context"
	"errors"
)

// ErrSerializationFailure はストア側でトランザクションが
// 直列化違反やタイムアウトで中断されたことを表す
// ドメインエラーと区別してリトライ可能であることを呼び出し側に伝える
var ErrSerializationFailure = errors.New("トランザクションが競合により中断されました")

// Tx はトランザクションを表すインターフェース
// ドメイン層がインフラ層（sqlx等）に依存しないようにするための抽象化
type Tx interface {
	// Commit はトランザクションをコミットする
	Commit() error
	// Rollback はトランザクションをロールバックする
	Rollback() error
}

// Manager はトランザクションを管理するインターフェース
type Manager interface {
	// Begin は新しいトランザクションを開始する
	// 予約・キャンセルの座席会計は直列化可能分離レベルで実行される
	Begin(ctx context.Context) (Tx, error)
}
