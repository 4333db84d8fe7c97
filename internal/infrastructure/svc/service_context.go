package svc

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"arbwatch/internal/application/container"
	"arbwatch/internal/application/usecase/monitor"
	"arbwatch/internal/infrastructure/config"
	"arbwatch/internal/infrastructure/exchange"
	infracontainer "arbwatch/internal/infrastructure/container"
	"arbwatch/internal/infrastructure/factory"
	"arbwatch/internal/infrastructure/notify"
	"arbwatch/internal/interfaces/console"
	"arbwatch/internal/interfaces/httpapi"
)

type ServiceContext struct {
	Config *config.Config

	// 基础设施层（第一层初始化）
	storage  *infracontainer.Container
	notifier *notify.Notifier

	// 应用业务组件（依赖基础设施）
	app        *container.Container
	priceFeeds []monitor.PriceFeed
	monitor    *monitor.Service
	api        *httpapi.Server

	// 资源管理
	closerChain []func() error
}

// New 创建并初始化 ServiceContext，所有依赖初始化都在这里完成
func New(cfg *config.Config) (*ServiceContext, error) {
	sc := &ServiceContext{
		Config:      cfg,
		closerChain: make([]func() error, 0),
	}

	if err := sc.initializeComponents(); err != nil {
		// 清理已初始化的资源
		_ = sc.Close()
		return nil, err
	}
	return sc, nil
}

// initializeComponents 按依赖顺序初始化：存储 -> 通知 -> 应用组件 -> 行情 -> 接口
func (sc *ServiceContext) initializeComponents() error {
	storage, err := infracontainer.New(sc.Config)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInitFailed, err)
	}
	sc.storage = storage
	sc.closerChain = append(sc.closerChain, storage.Close)

	sc.notifier = notify.FromOptions(notify.Options{
		TelegramToken:     sc.Config.Notify.TelegramToken,
		TelegramChatID:    sc.Config.Notify.TelegramChatID,
		DiscordWebhookURL: sc.Config.Notify.DiscordWebhookURL,
	})
	// 先于存储关闭：等待进行中的通知发送完
	sc.closerChain = append(sc.closerChain, sc.notifier.Close)

	sc.app = container.New(
		storage.SignalRepository(),
		sc.notifier,
		sc.Config.Arbitrage.MinSpreadBps,
		sc.Config.Retention.MaxSignals,
		storage.SignalPublisher(),
	)

	feeds := factory.NewPriceFeeds(sc.Config)
	if len(feeds) == 0 {
		return ErrNoFeedsEnabled
	}
	sc.priceFeeds = feeds

	deps := monitor.ServiceDeps{
		Feeds:       feeds,
		Symbols:     sc.Config.Symbols.List,
		Store:       sc.app.QuoteStore(),
		Detector:    sc.app.Detector(),
		Formatter:   monitor.NewFormatter(sc.Config.Arbitrage.MinSpreadBps, true),
		StatusEvery: sc.Config.App.StatusEvery.Duration,
		Sink:        console.NewSink(),
	}
	if m := storage.QuoteMirror(); m != nil {
		deps.Mirror = m
	}
	sc.monitor = monitor.NewService(deps)

	if sc.Config.Server.Enabled {
		sc.api = httpapi.New(httpapi.Options{
			Addr:         sc.Config.Server.Addr,
			CORSOrigins:  sc.Config.Server.CORSOrigins,
			DefaultLimit: sc.Config.Server.DefaultLimit,
			MaxLimit:     sc.Config.Server.MaxLimit,
			PushInterval: sc.Config.App.PublishInterval.Duration,
			PushBatch:    sc.Config.App.PublishBatch,
		}, httpapi.Deps{
			Signals: sc.app.SignalService(),
			Quotes:  sc.app.QuoteStore(),
			Status:  sc.status,
		})
	}

	log.Info().
		Int("feeds", len(feeds)).
		Strs("symbols", sc.Config.Symbols.List).
		Float64("min_spread_bps", sc.Config.Arbitrage.MinSpreadBps).
		Int("max_signals", sc.Config.Retention.MaxSignals).
		Str("storage", sc.Config.Storage.Driver).
		Bool("notify", sc.notifier.Enabled()).
		Bool("http", sc.api != nil).
		Msg("all components initialized")

	return nil
}

// status /health 的附加诊断信息
func (sc *ServiceContext) status() map[string]any {
	feeds := make(map[string]exchange.StatsSnapshot, len(sc.priceFeeds))
	for _, f := range sc.priceFeeds {
		if s, ok := f.(interface{ Stats() exchange.StatsSnapshot }); ok {
			feeds[f.Name()] = s.Stats()
		}
	}
	out := map[string]any{
		"feeds":           feeds,
		"notify_failures": sc.notifier.Failures(),
	}
	if n, err := sc.app.Repository().CountSignals(context.Background()); err == nil {
		out["signals"] = n
	}
	return out
}

// Run 运行行情监控和（可选）HTTP 接口，ctx 取消后返回
func (sc *ServiceContext) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sc.monitor.Run(gctx)
	})
	if sc.api != nil {
		g.Go(func() error {
			return sc.api.Run(gctx)
		})
	}
	return g.Wait()
}

// Monitor 获取监控服务
func (sc *ServiceContext) Monitor() *monitor.Service {
	return sc.monitor
}

// App 获取应用层容器
func (sc *ServiceContext) App() *container.Container {
	return sc.app
}

// Close 按初始化相反的顺序关闭所有资源，应该在应用退出时调用
func (sc *ServiceContext) Close() error {
	for i := len(sc.closerChain) - 1; i >= 0; i-- {
		if err := sc.closerChain[i](); err != nil {
			log.Error().Err(err).Msg("error closing resource")
		}
	}
	sc.closerChain = nil
	return nil
}
