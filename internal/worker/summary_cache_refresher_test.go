package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeRefresher struct {
	calls int64
	err   error
}

func (f *fakeRefresher) RefreshEventSummary(ctx context.Context) error {
	atomic.AddInt64(&f.calls, 1)
	return f.err
}

func TestSummaryCacheRefresher_定期的にリフレッシュする(t *testing.T) {
	refresher := &fakeRefresher{}
	w := NewSummaryCacheRefresher(refresher, 10*time.Millisecond)

	go w.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	w.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt64(&refresher.calls), int64(1))
}

func TestSummaryCacheRefresher_Stopで停止する(t *testing.T) {
	refresher := &fakeRefresher{}
	w := NewSummaryCacheRefresher(refresher, time.Hour)

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stopの後もワーカーが停止しない")
	}
}

func TestSummaryCacheRefresher_コンテキストキャンセルで停止する(t *testing.T) {
	refresher := &fakeRefresher{}
	w := NewSummaryCacheRefresher(refresher, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("キャンセルの後もワーカーが停止しない")
	}
}

func TestSummaryCacheRefresher_リフレッシュ失敗でも止まらない(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("接続エラー")}
	w := NewSummaryCacheRefresher(refresher, 10*time.Millisecond)

	go w.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	w.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt64(&refresher.calls), int64(1))
}
