package notify

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"arbwatch/internal/application/port"

	"github.com/rs/zerolog/log"
)

// Notifier 异步分发到所有 Sender；Send 立即返回，失败只记日志和计数
type Notifier struct {
	senders  []Sender
	wg       sync.WaitGroup
	failures atomic.Int64
}

func NewNotifier(senders ...Sender) *Notifier {
	out := make([]Sender, 0, len(senders))
	for _, s := range senders {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Notifier{senders: out}
}

// Options 渠道凭据，空值表示该渠道未启用
type Options struct {
	TelegramToken     string
	TelegramChatID    string
	DiscordWebhookURL string
}

// FromOptions 按配置组装 Sender；一个都没有时 Send 是 no-op
func FromOptions(opts Options) *Notifier {
	var senders []Sender
	if strings.TrimSpace(opts.TelegramToken) != "" && strings.TrimSpace(opts.TelegramChatID) != "" {
		senders = append(senders, NewTelegramSender(opts.TelegramToken, opts.TelegramChatID))
	}
	if strings.TrimSpace(opts.DiscordWebhookURL) != "" {
		senders = append(senders, NewDiscordSender(opts.DiscordWebhookURL))
	}
	n := NewNotifier(senders...)
	if !n.Enabled() {
		log.Warn().Msg("no notification channel configured, alerts will only be logged")
	}
	return n
}

func (n *Notifier) Enabled() bool { return len(n.senders) > 0 }

// Send 后台发送；调用方的取消不会打断已开始的发送（每个渠道自带超时）
func (n *Notifier) Send(ctx context.Context, text string) {
	if len(n.senders) == 0 {
		return
	}
	sendCtx := context.WithoutCancel(ctx)
	for _, s := range n.senders {
		n.wg.Add(1)
		go func(s Sender) {
			defer n.wg.Done()
			if err := s.Send(sendCtx, text); err != nil {
				n.failures.Add(1)
				log.Error().Err(err).Str("sender", s.Name()).Msg("notification failed")
				return
			}
			log.Debug().Str("sender", s.Name()).Msg("notification sent")
		}(s)
	}
}

// Failures 累计失败次数
func (n *Notifier) Failures() int64 { return n.failures.Load() }

// Close 等待所有进行中的发送结束
func (n *Notifier) Close() error {
	n.wg.Wait()
	return nil
}

var _ port.Notifier = (*Notifier)(nil)
