package utils

import (
	"log"

	"github.com/go-resty/resty/v2"

	"academy/config"
)

// NotifyAdminWebhook posts a review-queue event to the configured admin
// webhook. Best-effort: failures are logged and swallowed. Callers
// should invoke this in a goroutine.
func NotifyAdminWebhook(event string, payload map[string]interface{}) {
	url := config.AppConfig.AdminWebhook
	if url == "" {
		return
	}

	body := map[string]interface{}{"event": event}
	for k, v := range payload {
		body[k] = v
	}

	client := resty.New()
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
	if err != nil {
		log.Printf("[WEBHOOK] failed to deliver %s event: %v", event, err)
		return
	}
	if resp.StatusCode() >= 400 {
		log.Printf("[WEBHOOK] %s event rejected with status %d", event, resp.StatusCode())
	}
}
