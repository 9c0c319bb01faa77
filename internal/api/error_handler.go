package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/R-Abinav/TicketBoss/internal/domain/event"
	"github.com/R-Abinav/TicketBoss/internal/domain/transaction"
	"github.com/R-Abinav/TicketBoss/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
// Retriable は同じリクエストを再試行すれば成功しうる競合エラーを示す
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      int    `json:"code,omitempty"`
	Retriable bool   `json:"retriable,omitempty"`
	Details   string `json:"details,omitempty"`
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code    = http.StatusInternalServerError
		message = "内部サーバーエラー"
	)

	retriable := isRetriable(err)

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
		if he.Internal != nil {
			retriable = retriable || isRetriable(he.Internal)
		}
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	// JSONレスポンスを返す
	if err := c.JSON(code, ErrorResponse{
		Error:     message,
		Code:      code,
		Retriable: retriable,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}

// isRetriable は楽観的ロック競合とストア由来の直列化中断を
// 「再試行すればよい」エラーとして扱う
func isRetriable(err error) bool {
	return errors.Is(err, event.ErrVersionConflict) ||
		errors.Is(err, transaction.ErrSerializationFailure)
}
