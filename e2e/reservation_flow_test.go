package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo *echo.Echo
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// TestE2E_HealthCheck はヘルスチェックをテスト
func TestE2E_HealthCheck(t *testing.T) {
	server := getTestServer(t)

	rec := server.Request("GET", "/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

// TestE2E_CompleteReservationFlow は予約からキャンセルまでの一連の流れをテスト
func TestE2E_CompleteReservationFlow(t *testing.T) {
	server := getTestServer(t)

	partnerID := "e2e-partner-yamada"
	var reservationID string

	// 1. 初期サマリー確認
	t.Run("初期サマリー確認", func(t *testing.T) {
		rec := server.Request("GET", "/api/v1/reservations", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody(t, rec)
		assert.Equal(t, float64(testConfig.Event.TotalSeats), resp["available_seats"])
		assert.Equal(t, float64(0), resp["reservation_count"])
	})

	// 2. 予約作成
	t.Run("予約作成", func(t *testing.T) {
		body := map[string]interface{}{
			"partner_id": partnerID,
			"seats":      2,
		}

		rec := server.Request("POST", "/api/v1/reservations", body)
		require.Equal(t, http.StatusCreated, rec.Code)

		resp := decodeBody(t, rec)
		reservationID = resp["reservation_id"].(string)
		assert.NotEmpty(t, reservationID)
		assert.Equal(t, "confirmed", resp["status"])
		assert.Equal(t, float64(2), resp["seats"])
	})

	// 3. サマリーに反映されていることを確認
	t.Run("予約後のサマリー確認", func(t *testing.T) {
		rec := server.Request("GET", "/api/v1/reservations", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody(t, rec)
		assert.Equal(t, float64(testConfig.Event.TotalSeats-2), resp["available_seats"])
		assert.Equal(t, float64(1), resp["reservation_count"])
	})

	// 4. パートナーの予約一覧確認
	t.Run("パートナーの予約一覧確認", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/partners/%s/reservations", partnerID)
		rec := server.Request("GET", path, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, reservationID, resp[0]["reservation_id"])
	})

	// 5. キャンセル
	t.Run("キャンセル", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/reservations/%s", reservationID)
		rec := server.Request("DELETE", path, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	// 6. 座席が戻っていることを確認
	t.Run("キャンセル後のサマリー確認", func(t *testing.T) {
		rec := server.Request("GET", "/api/v1/reservations", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody(t, rec)
		assert.Equal(t, float64(testConfig.Event.TotalSeats), resp["available_seats"])
		assert.Equal(t, float64(0), resp["reservation_count"])
	})

	// 7. 2回目のキャンセルは拒否される
	t.Run("2回目のキャンセルは409", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/reservations/%s", reservationID)
		rec := server.Request("DELETE", path, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

// TestE2E_InsufficientSeats は空席不足の予約をテスト
func TestE2E_InsufficientSeats(t *testing.T) {
	server := getTestServer(t)
	setAvailableSeats(t, 1)

	body := map[string]interface{}{
		"partner_id": "e2e-partner-late",
		"seats":      2,
	}

	rec := server.Request("POST", "/api/v1/reservations", body)

	assert.Equal(t, http.StatusConflict, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, false, resp["retriable"])

	// 状態が変わっていないこと
	var available int
	require.NoError(t, testDB.Get(&available, "SELECT available_seats FROM events WHERE id = $1", testConfig.Event.ID))
	assert.Equal(t, 1, available)
}

// TestE2E_ValidationErrors はリクエスト検証をテスト
func TestE2E_ValidationErrors(t *testing.T) {
	server := getTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"パートナーIDなし", map[string]interface{}{"seats": 2}},
		{"座席数0", map[string]interface{}{"partner_id": "p", "seats": 0}},
		{"座席数が上限超過", map[string]interface{}{"partner_id": "p", "seats": 11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := server.Request("POST", "/api/v1/reservations", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

// TestE2E_ReservationNotFound は存在しない予約のキャンセルをテスト
func TestE2E_ReservationNotFound(t *testing.T) {
	server := getTestServer(t)

	rec := server.Request("DELETE", "/api/v1/reservations/00000000-0000-0000-0000-000000000000", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestE2E_ConcurrentReservations は並行予約で二重販売が起きないことをテスト
func TestE2E_ConcurrentReservations(t *testing.T) {
	server := getTestServer(t)
	setAvailableSeats(t, 10)

	const (
		workers     = 8
		seatsPerReq = 3
	)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	rejected := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			body := map[string]interface{}{
				"partner_id": fmt.Sprintf("e2e-partner-%d", n),
				"seats":      seatsPerReq,
			}
			rec := server.Request("POST", "/api/v1/reservations", body)

			mu.Lock()
			defer mu.Unlock()
			switch rec.Code {
			case http.StatusCreated:
				succeeded++
			case http.StatusConflict:
				rejected++
			default:
				t.Errorf("予期しないステータスコード: %d body=%s", rec.Code, rec.Body.String())
			}
		}(i)
	}
	wg.Wait()

	// 容量を超えて成功しないこと
	assert.LessOrEqual(t, succeeded, 10/seatsPerReq)
	assert.Equal(t, workers, succeeded+rejected)

	// 座席の保存則：空席 + 確定済み座席 = 10
	var available int
	require.NoError(t, testDB.Get(&available, "SELECT available_seats FROM events WHERE id = $1", testConfig.Event.ID))

	var reservedSeats int
	require.NoError(t, testDB.Get(&reservedSeats,
		"SELECT COALESCE(SUM(seats), 0) FROM reservations WHERE event_id = $1 AND status = 'confirmed'", testConfig.Event.ID))

	assert.GreaterOrEqual(t, available, 0)
	assert.Equal(t, 10, available+reservedSeats)
	assert.Equal(t, succeeded*seatsPerReq, reservedSeats)
}
