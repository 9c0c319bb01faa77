package event

import "time"

// Event は座席プールを持つイベントエンティティを表す
// AvailableSeats の更新は必ず Version を条件とした楽観的ロック経由で行う
type Event struct {
	ID             string
	Name           string
	TotalSeats     int
	AvailableSeats int
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int // 楽観的ロック用のフェンシングトークン
}

// NewEvent は満席状態の新しいイベントを作成する
func NewEvent(id, name string, totalSeats int) *Event {
	now := time.Now()
	return &Event{
		ID:             id,
		Name:           name,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        0,
	}
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.ID == "" {
		return ErrEventIDRequired
	}
	if e.Name == "" {
		return ErrEventNameRequired
	}
	if e.TotalSeats <= 0 {
		return ErrInvalidTotalSeats
	}
	if e.AvailableSeats < 0 || e.AvailableSeats > e.TotalSeats {
		return ErrSeatAccountingBroken
	}
	return nil
}

// Reserve は読み取り時点の空席数を検証して seats 席分を減算する
// 永続化は Version を条件とした条件付き更新で行う
func (e *Event) Reserve(seats int) error {
	if seats <= 0 {
		return ErrInvalidSeatCount
	}
	if e.AvailableSeats < seats {
		return ErrInsufficientSeats
	}
	e.AvailableSeats -= seats
	e.UpdatedAt = time.Now()
	return nil
}

// Restore はキャンセルされた予約の seats 席分を空席に戻す
// 保存則が守られている限り TotalSeats を超えることはない
// 超える場合は座席会計が壊れているため更新せずエラーにする
func (e *Event) Restore(seats int) error {
	if seats <= 0 {
		return ErrInvalidSeatCount
	}
	if e.AvailableSeats+seats > e.TotalSeats {
		return ErrSeatAccountingBroken
	}
	e.AvailableSeats += seats
	e.UpdatedAt = time.Now()
	return nil
}
