package reservation

import "errors"

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound         = errors.New("予約が見つかりません")
	ErrReservationAlreadyCancelled = errors.New("予約は既にキャンセルされています")
	ErrEventIDRequired             = errors.New("イベントIDは必須です")
	ErrPartnerIDRequired           = errors.New("パートナーIDは必須です")
	ErrInvalidSeats                = errors.New("座席数は1以上である必要があります")
)
