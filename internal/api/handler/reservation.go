package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/R-Abinav/TicketBoss/internal/domain/event"
	"github.com/R-Abinav/TicketBoss/internal/domain/reservation"
	"github.com/R-Abinav/TicketBoss/internal/domain/transaction"
	"github.com/R-Abinav/TicketBoss/internal/pkg/metrics"
)

// ReservationHandler は予約・キャンセル・サマリーのHTTPハンドラー
type ReservationHandler struct {
	service TicketServiceInterface
	metrics *metrics.Metrics
}

// NewReservationHandler はReservationHandlerを作成する
// m は nil でもよい（メトリクスなしで動作する）
func NewReservationHandler(s TicketServiceInterface, m *metrics.Metrics) *ReservationHandler {
	return &ReservationHandler{service: s, metrics: m}
}

type CreateReservationRequest struct {
	PartnerID string `json:"partner_id" validate:"required" example:"partner-123"`
	Seats     int    `json:"seats" validate:"required,gte=1,lte=10" example:"2"`
}

type ReservationResponse struct {
	ReservationID string     `json:"reservation_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	EventID       string     `json:"event_id" example:"budokan-live-2025"`
	PartnerID     string     `json:"partner_id" example:"partner-123"`
	Seats         int        `json:"seats" example:"2"`
	Status        string     `json:"status" example:"confirmed"`
	CreatedAt     time.Time  `json:"created_at"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

type EventSummaryResponse struct {
	EventID          string `json:"event_id" example:"budokan-live-2025"`
	Name             string `json:"name" example:"武道館ライブ 2025"`
	TotalSeats       int    `json:"total_seats" example:"500"`
	AvailableSeats   int    `json:"available_seats" example:"498"`
	ReservationCount int    `json:"reservation_count" example:"1"`
	Version          int    `json:"version" example:"1"`
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ReservationID: r.ID,
		EventID:       r.EventID,
		PartnerID:     r.PartnerID,
		Seats:         r.Seats,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt,
		CancelledAt:   r.CancelledAt,
	}
}

// Create godoc
// @Summary 座席を予約
// @Description 空席があれば指定席数を確保し、確定済みの予約を返します
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body CreateReservationRequest true "予約情報"
// @Success 201 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse "イベントが存在しない"
// @Failure 409 {object} api.ErrorResponse "空席不足または更新競合（retriable参照）"
// @Router /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	var req CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	r, err := h.service.ReserveSeats(c.Request().Context(), req.PartnerID, req.Seats)
	if err != nil {
		h.countReservation(reserveResult(err))
		switch {
		case errors.Is(err, event.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
		case errors.Is(err, event.ErrInsufficientSeats):
			return echo.NewHTTPError(http.StatusConflict, err.Error()).SetInternal(err)
		case errors.Is(err, event.ErrVersionConflict),
			errors.Is(err, transaction.ErrSerializationFailure):
			h.countVersionConflict()
			return echo.NewHTTPError(http.StatusConflict, "他の予約と競合しました。再試行してください").SetInternal(err)
		case errors.Is(err, event.ErrInvalidSeatCount),
			errors.Is(err, reservation.ErrPartnerIDRequired):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー").SetInternal(err)
	}

	h.countReservation("confirmed")
	return c.JSON(http.StatusCreated, toReservationResponse(r))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約をキャンセルし、座席を空席に戻します
// @Tags reservations
// @Param id path string true "予約ID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "キャンセル済みまたは更新競合"
// @Router /reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id := c.Param("id")

	err := h.service.CancelReservation(c.Request().Context(), id)
	if err != nil {
		h.countCancellation(cancelResult(err))
		switch {
		case errors.Is(err, reservation.ErrReservationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
		case errors.Is(err, reservation.ErrReservationAlreadyCancelled):
			return echo.NewHTTPError(http.StatusConflict, err.Error()).SetInternal(err)
		case errors.Is(err, event.ErrVersionConflict),
			errors.Is(err, transaction.ErrSerializationFailure):
			h.countVersionConflict()
			return echo.NewHTTPError(http.StatusConflict, "他の更新と競合しました。再試行してください").SetInternal(err)
		case errors.Is(err, event.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー").SetInternal(err)
	}

	h.countCancellation("cancelled")
	return c.NoContent(http.StatusNoContent)
}

// GetSummary godoc
// @Summary イベントサマリーを取得
// @Description 空席数と確定済み予約数を取得します
// @Tags reservations
// @Produce json
// @Success 200 {object} EventSummaryResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /reservations [get]
func (h *ReservationHandler) GetSummary(c echo.Context) error {
	summary, err := h.service.GetEventSummary(c.Request().Context())
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー").SetInternal(err)
	}

	if h.metrics != nil {
		h.metrics.AvailableSeats.Set(float64(summary.AvailableSeats))
	}

	return c.JSON(http.StatusOK, EventSummaryResponse{
		EventID:          summary.EventID,
		Name:             summary.Name,
		TotalSeats:       summary.TotalSeats,
		AvailableSeats:   summary.AvailableSeats,
		ReservationCount: summary.ReservationCount,
		Version:          summary.Version,
	})
}

// GetPartnerReservations godoc
// @Summary パートナーの予約一覧を取得
// @Tags reservations
// @Produce json
// @Param partnerId path string true "パートナーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ReservationResponse
// @Router /partners/{partnerId}/reservations [get]
func (h *ReservationHandler) GetPartnerReservations(c echo.Context) error {
	partnerID := c.Param("partnerId")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	reservations, err := h.service.GetPartnerReservations(c.Request().Context(), partnerID, limit, offset)
	if err != nil {
		if errors.Is(err, reservation.ErrPartnerIDRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー").SetInternal(err)
	}

	resp := make([]ReservationResponse, len(reservations))
	for i, r := range reservations {
		resp[i] = toReservationResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) countReservation(result string) {
	if h.metrics != nil {
		h.metrics.ReservationsTotal.WithLabelValues(result).Inc()
	}
}

func (h *ReservationHandler) countCancellation(result string) {
	if h.metrics != nil {
		h.metrics.CancellationsTotal.WithLabelValues(result).Inc()
	}
}

func (h *ReservationHandler) countVersionConflict() {
	if h.metrics != nil {
		h.metrics.VersionConflictsTotal.Inc()
	}
}

func reserveResult(err error) string {
	switch {
	case errors.Is(err, event.ErrInsufficientSeats):
		return "insufficient_seats"
	case errors.Is(err, event.ErrVersionConflict),
		errors.Is(err, transaction.ErrSerializationFailure):
		return "conflict"
	default:
		return "error"
	}
}

func cancelResult(err error) string {
	switch {
	case errors.Is(err, reservation.ErrReservationNotFound):
		return "not_found"
	case errors.Is(err, reservation.ErrReservationAlreadyCancelled):
		return "already_cancelled"
	case errors.Is(err, event.ErrVersionConflict),
		errors.Is(err, transaction.ErrSerializationFailure):
		return "conflict"
	default:
		return "error"
	}
}
