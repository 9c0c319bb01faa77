package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// CachedSummary はキャッシュに保存するイベントサマリー
type CachedSummary struct {
	EventID          string `json:"event_id"`
	Name             string `json:"name"`
	TotalSeats       int    `json:"total_seats"`
	AvailableSeats   int    `json:"available_seats"`
	ReservationCount int    `json:"reservation_count"`
	Version          int    `json:"version"`
}

// SummaryCache はイベントサマリーのキャッシュを管理する
// サマリーは結果整合でよいため、短いTTLと変更時の無効化で十分
type SummaryCache struct {
	client *redis.Client
}

// NewSummaryCache は新しいSummaryCacheインスタンスを作成する
func NewSummaryCache(client *redis.Client) *SummaryCache {
	return &SummaryCache{client: client}
}

// Get はイベントサマリーをキャッシュから取得する
func (c *SummaryCache) Get(ctx context.Context, eventID string) (*CachedSummary, error) {
	key := c.summaryKey(eventID)
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	var summary CachedSummary
	if err := json.Unmarshal(val, &summary); err != nil {
		return nil, fmt.Errorf("キャッシュの復元に失敗: %w", err)
	}
	return &summary, nil
}

// Set はイベントサマリーをキャッシュに保存する
func (c *SummaryCache) Set(ctx context.Context, summary *CachedSummary, ttl time.Duration) error {
	val, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("キャッシュの変換に失敗: %w", err)
	}
	if err := c.client.Set(ctx, c.summaryKey(summary.EventID), val, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はイベントサマリーのキャッシュを無効化する
// 予約・キャンセルの成功後に呼ばれる
func (c *SummaryCache) Invalidate(ctx context.Context, eventID string) error {
	if err := c.client.Del(ctx, c.summaryKey(eventID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *SummaryCache) summaryKey(eventID string) string {
	return fmt.Sprintf("summary:%s", eventID)
}
