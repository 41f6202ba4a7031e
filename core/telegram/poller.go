package telegram

import (
	"fmt"
	"time"

	coreconfig "github.com/m3rciful/yeabuddy/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultPollTimeout = 10 * time.Second

// BuildPoller picks telebot's own webhook listener or a long poller for cfg.
// It is not used when the app serves webhooks itself.
func BuildPoller(cfg *coreconfig.Config) tele.Poller {
	if cfg.Telegram.RunMode == coreconfig.RunModeWebhook {
		return &tele.Webhook{
			Listen:      listenAddr(cfg),
			SecretToken: cfg.Webhook.SecretToken,
			Endpoint:    &tele.WebhookEndpoint{PublicURL: cfg.WebhookEndpoint()},
		}
	}
	return &tele.LongPoller{Timeout: pollTimeout(cfg)}
}

func pollTimeout(cfg *coreconfig.Config) time.Duration {
	if s := cfg.Telegram.LongPollTimeoutSeconds; s > 0 {
		return time.Duration(s) * time.Second
	}
	return defaultPollTimeout
}

func listenAddr(cfg *coreconfig.Config) string {
	return fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port)
}
