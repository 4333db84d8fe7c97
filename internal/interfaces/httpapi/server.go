package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"arbwatch/internal/domain/model"

	"github.com/rs/zerolog/log"
)

// SignalReader 最新信号（id 倒序）
type SignalReader interface {
	Recent(ctx context.Context, limit int) ([]model.Signal, error)
}

// QuoteSnapshotter 当前价格表的拷贝
type QuoteSnapshotter interface {
	Snapshot() map[string]map[string]model.Quote
}

type Options struct {
	Addr         string
	CORSOrigins  []string
	DefaultLimit int
	MaxLimit     int
	PushInterval time.Duration
	PushBatch    int
}

type Deps struct {
	Signals SignalReader
	Quotes  QuoteSnapshotter      // 可选
	Status  func() map[string]any // 可选：附加到 /health 的诊断信息
}

type Server struct {
	opts       Options
	deps       Deps
	handler    http.Handler
	httpServer *http.Server
}

func New(opts Options, deps Deps) *Server {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 100
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 1000
	}
	if opts.PushInterval <= 0 {
		opts.PushInterval = 2 * time.Second
	}
	if opts.PushBatch <= 0 {
		opts.PushBatch = 50
	}

	s := &Server{opts: opts, deps: deps}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /signals", s.signals)
	mux.HandleFunc("GET /ws", s.ws)

	s.handler = corsMiddleware(opts.CORSOrigins)(mux)
	s.httpServer = &http.Server{
		Addr:        opts.Addr,
		Handler:     s.handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

// Run 监听直到 ctx 取消，然后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("httpapi: listen %s: %w", s.opts.Addr, err)
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("http api listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("httpapi: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("httpapi: shutdown: %w", err)
	}
	log.Info().Msg("http api stopped")
	return nil
}

// corsMiddleware "*" 表示允许任意来源
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" {
				allowed := len(allowedOrigins) == 0
				for _, o := range allowedOrigins {
					o = strings.TrimSpace(o)
					if o == "*" || strings.EqualFold(o, origin) {
						allowed = true
						break
					}
				}

				if allowed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
					w.Header().Set("Access-Control-Allow-Credentials", "true")
					w.Header().Set("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
