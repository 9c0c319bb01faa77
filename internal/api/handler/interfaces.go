package handler

import (
	"context"

	"github.com/R-Abinav/TicketBoss/internal/application"
	"github.com/R-Abinav/TicketBoss/internal/domain/reservation"
)

// TicketServiceInterface はチケットサービスのインターフェース
type TicketServiceInterface interface {
	ReserveSeats(ctx context.Context, partnerID string, seats int) (*reservation.Reservation, error)
	CancelReservation(ctx context.Context, reservationID string) error
	GetEventSummary(ctx context.Context) (*application.EventSummary, error)
	GetPartnerReservations(ctx context.Context, partnerID string, limit, offset int) ([]*reservation.Reservation, error)
}
