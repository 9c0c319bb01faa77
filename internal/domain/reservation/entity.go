package reservation

import "time"

// Status は予約の状態を表す
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Reservation は予約エンティティを表す
// Seats は作成後に変更されない
// 状態遷移は confirmed → cancelled の一方向のみ
type Reservation struct {
	ID          string
	EventID     string
	PartnerID   string
	Seats       int
	Status      Status
	CreatedAt   time.Time
	CancelledAt *time.Time
}

// NewReservation は確定済みの新しい予約を作成する
func NewReservation(id, eventID, partnerID string, seats int) *Reservation {
	return &Reservation{
		ID:        id,
		EventID:   eventID,
		PartnerID: partnerID,
		Seats:     seats,
		Status:    StatusConfirmed,
		CreatedAt: time.Now(),
	}
}

// IsConfirmed は予約が確定済みかを返す
func (r *Reservation) IsConfirmed() bool {
	return r.Status == StatusConfirmed
}

// Cancel は予約をキャンセルする
// 2回目のキャンセルはエラーになる（冪等に握りつぶさない）
func (r *Reservation) Cancel() error {
	if r.Status == StatusCancelled {
		return ErrReservationAlreadyCancelled
	}
	now := time.Now()
	r.Status = StatusCancelled
	r.CancelledAt = &now
	return nil
}

// Validate は予約の検証を行う
func (r *Reservation) Validate() error {
	if r.EventID == "" {
		return ErrEventIDRequired
	}
	if r.PartnerID == "" {
		return ErrPartnerIDRequired
	}
	if r.Seats <= 0 {
		return ErrInvalidSeats
	}
	return nil
}
