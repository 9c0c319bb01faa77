package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/R-Abinav/TicketBoss/internal/api"
	"github.com/R-Abinav/TicketBoss/internal/api/handler"
	custommw "github.com/R-Abinav/TicketBoss/internal/api/middleware"
	"github.com/R-Abinav/TicketBoss/internal/application"
	"github.com/R-Abinav/TicketBoss/internal/config"
	"github.com/R-Abinav/TicketBoss/internal/infrastructure/postgres"
	redisinfra "github.com/R-Abinav/TicketBoss/internal/infrastructure/redis"
	"github.com/R-Abinav/TicketBoss/internal/pkg/logger"
	"github.com/R-Abinav/TicketBoss/internal/pkg/metrics"
	"github.com/R-Abinav/TicketBoss/internal/worker"
)

func main() {
	// 設定読み込み
	cfg := config.Load()

	// ロガー初期化
	log := logger.NewLogger(os.Getenv("APP_ENV"))
	logger.Set(log)
	defer logger.Sync()

	// DB接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	// リポジトリ初期化
	eventRepo := postgres.NewEventRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)
	txManager := postgres.NewTxManager(db, cfg.Transaction.LockWait)

	// イベントのシード
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := postgres.EnsureEvent(ctx, eventRepo, &cfg.Event); err != nil {
		cancel()
		logger.Fatal("イベントのシードに失敗", zap.Error(err))
	}
	cancel()

	// Redis接続（任意。接続できない場合はキャッシュなしで続行）
	var summaryCache application.SummaryCache
	redisClient := redisinfra.NewClient(&cfg.Redis)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisinfra.Ping(pingCtx, redisClient); err != nil {
		logger.Warn("Redisに接続できません。サマリーキャッシュなしで起動します", zap.Error(err))
		redisClient.Close()
		redisClient = nil
	} else {
		summaryCache = redisinfra.NewSummaryCache(redisClient)
		defer redisClient.Close()
	}
	pingCancel()

	// メトリクス初期化
	m := metrics.Init()

	// サービス初期化
	ticketService := application.NewTicketService(txManager, eventRepo, reservationRepo, summaryCache, application.TicketServiceConfig{
		EventID:         cfg.Event.ID,
		TxTimeout:       cfg.Transaction.Timeout,
		SummaryCacheTTL: cfg.Reservation.SummaryCacheTTL,
	})

	// サマリーキャッシュのリフレッシャー（Redisがある場合のみ）
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	var refresher *worker.SummaryCacheRefresher
	if summaryCache != nil {
		refresher = worker.NewSummaryCacheRefresher(ticketService, cfg.Reservation.SummaryCacheTTL)
		go refresher.Start(workerCtx)
	}

	// Echo初期化
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	custommw.SetupMiddleware(e)
	e.Use(custommw.PrometheusMiddleware(m))

	// ルーティング
	reservationHandler := handler.NewReservationHandler(ticketService, m)
	healthHandler := handler.NewHealthHandler()

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)
	v1.POST("/reservations", reservationHandler.Create)
	v1.GET("/reservations", reservationHandler.GetSummary)
	v1.DELETE("/reservations/:id", reservationHandler.Cancel)
	v1.GET("/partners/:partnerId/reservations", reservationHandler.GetPartnerReservations)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsBasicAuth())

	// サーバー起動
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	logger.Info("サーバーを起動しました",
		zap.String("port", cfg.Server.Port),
		zap.String("event_id", cfg.Event.ID),
	)

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	// ワーカー停止
	workerCancel()
	if refresher != nil {
		refresher.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal(fmt.Sprintf("サーバーシャットダウンエラー: %v", err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
