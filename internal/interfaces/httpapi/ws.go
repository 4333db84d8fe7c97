package httpapi

import (
	"context"
	"net/http"
	"time"

	"arbwatch/internal/domain/model"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 来源校验交给 CORS 配置
	CheckOrigin: func(r *http.Request) bool { return true },
}

type pushMessage struct {
	Type  string         `json:"type"`
	Items []model.Signal `json:"items"`
}

// ws 连接建立后立即推一次最新信号，之后每 PushInterval 推一次，直到客户端断开
func (s *Server) ws(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// 读协程只用于感知断开
	go func() {
		defer cancel()
		conn.SetReadLimit(maxMessageSize)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.opts.PushInterval)
	defer ticker.Stop()

	for {
		if err := s.push(ctx, conn); err != nil {
			log.Debug().Err(err).Msg("ws client gone")
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) push(ctx context.Context, conn *websocket.Conn) error {
	items, err := s.deps.Signals.Recent(ctx, s.opts.PushBatch)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error().Err(err).Msg("ws load signals failed")
		items = nil
	}
	if items == nil {
		items = []model.Signal{}
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(pushMessage{Type: "signals", Items: items})
}
