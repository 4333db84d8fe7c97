package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"arbwatch/internal/application/port"
	"arbwatch/internal/domain/model"

	"github.com/rs/zerolog/log"
)

type PriceFeed = port.PriceFeed

// Evaluator 每个 tick 之后对该交易对做一次检测
type Evaluator interface {
	Evaluate(ctx context.Context, symbol string) (*model.Signal, error)
}

type ServiceDeps struct {
	Feeds       []PriceFeed
	Symbols     []string
	Store       *QuoteStore
	Detector    Evaluator
	Mirror      port.QuoteMirror // 可选，best effort
	Sink        port.StatusSink  // 可选
	Formatter   *Formatter
	StatusEvery time.Duration // <=0 不输出状态行
}

type Service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) *Service {
	if deps.Store == nil {
		deps.Store = NewQuoteStore()
	}
	if deps.Formatter == nil {
		deps.Formatter = NewFormatter(0, false)
	}
	return &Service{deps: deps}
}

func (s *Service) Store() *QuoteStore { return s.deps.Store }

// Run 启动所有行情连接，每个连接一个 pump 协程；ctx 取消后等待 pump 退出并返回 nil
func (s *Service) Run(ctx context.Context) error {
	if len(s.deps.Feeds) == 0 {
		return errors.New("no feeds")
	}
	if s.deps.Detector == nil {
		return errors.New("no detector")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, feed := range s.deps.Feeds {
		ch, err := feed.Subscribe(ctx, s.deps.Symbols)
		if err != nil {
			cancel()
			wg.Wait()
			return err
		}
		wg.Add(1)
		go func(name string, in <-chan port.Tick) {
			defer wg.Done()
			s.pump(ctx, name, in)
		}(feed.Name(), ch)

		log.Info().Str("feed", feed.Name()).Strs("symbols", s.deps.Symbols).Msg("feed started")
	}

	if s.deps.StatusEvery > 0 && s.deps.Sink != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.statusLoop(ctx)
		}()
	}

	<-ctx.Done()
	wg.Wait()
	return nil
}

// pump 同一连接的 tick 顺序处理：先更新价格表，再检测
func (s *Service) pump(ctx context.Context, name string, in <-chan port.Tick) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-in:
			if !ok {
				return
			}
			s.HandleTick(ctx, t)
		}
	}
}

// HandleTick 处理单个 tick；持久化失败只记录日志，不中断行情
func (s *Service) HandleTick(ctx context.Context, t port.Tick) {
	s.deps.Store.Update(t.Exchange, t.Symbol, t.PriceNum)

	if s.deps.Mirror != nil && t.PriceNum > 0 {
		if err := s.deps.Mirror.UpsertLatestPrice(ctx, t.Exchange, t.Symbol, t.PriceNum, t.Ts); err != nil {
			log.Debug().Err(err).Str("feed", t.Exchange).Str("symbol", t.Symbol).Msg("mirror latest price failed")
		}
	}

	if _, err := s.deps.Detector.Evaluate(ctx, t.Symbol); err != nil {
		log.Error().Err(err).Str("feed", t.Exchange).Str("symbol", t.Symbol).Msg("evaluate failed")
	}
}

func (s *Service) statusLoop(ctx context.Context) {
	ticker := time.NewTicker(s.deps.StatusEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			line := s.deps.Formatter.Render(s.deps.Store.Snapshot(), s.deps.Symbols)
			if err := s.deps.Sink.WriteStatus(now, line); err != nil {
				log.Warn().Err(err).Msg("write status failed")
			}
		}
	}
}
