package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound        = errors.New("イベントが見つかりません")
	ErrEventIDRequired      = errors.New("イベントIDは必須です")
	ErrEventNameRequired    = errors.New("イベント名は必須です")
	ErrInvalidTotalSeats    = errors.New("座席数は1以上である必要があります")
	ErrInvalidSeatCount     = errors.New("座席数は1以上で指定してください")
	ErrInsufficientSeats    = errors.New("空席数が不足しています")
	ErrVersionConflict      = errors.New("他の更新と競合しました")
	ErrSeatAccountingBroken = errors.New("座席数の整合性が壊れています")
)
