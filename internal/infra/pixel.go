package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	metaGraphURL     = "https://graph.facebook.com/v19.0"
	tiktokEventsURL  = "https://business-api.tiktok.com/open_api/v1.3/event/track/"
	pixelHTTPTimeout = 10 * time.Second
)

// PixelEvent is a server-side conversion event. EventID lets the browser
// pixel and the server event be deduplicated by the ad platforms.
type PixelEvent struct {
	EventName  string // Purchase
	EventID    string
	EventTime  time.Time
	Email      string // plain; hashed before sending
	Phone      string
	Value      float64
	Currency   string
	ContentIDs []string
	SourceURL  string
}

// PixelClient posts conversion events to Meta's Conversions API and TikTok's
// Events API. A platform without credentials is skipped.
type PixelClient struct {
	metaPixelID   string
	metaToken     string
	tiktokPixelID string
	tiktokToken   string
	metaURL       string
	tiktokURL     string
	httpClient    *http.Client
}

func NewPixelClient(metaPixelID, metaToken, tiktokPixelID, tiktokToken string) *PixelClient {
	return &PixelClient{
		metaPixelID:   metaPixelID,
		metaToken:     metaToken,
		tiktokPixelID: tiktokPixelID,
		tiktokToken:   tiktokToken,
		metaURL:       metaGraphURL,
		tiktokURL:     tiktokEventsURL,
		httpClient:    &http.Client{Timeout: pixelHTTPTimeout},
	}
}

// WithEndpoints overrides the platform URLs (tests point them at httptest).
func (c *PixelClient) WithEndpoints(metaURL, tiktokURL string) *PixelClient {
	c.metaURL = metaURL
	c.tiktokURL = tiktokURL
	return c
}

// Enabled reports whether at least one platform is configured.
func (c *PixelClient) Enabled() bool {
	return c.metaEnabled() || c.tiktokEnabled()
}

func (c *PixelClient) metaEnabled() bool   { return c.metaPixelID != "" && c.metaToken != "" }
func (c *PixelClient) tiktokEnabled() bool { return c.tiktokPixelID != "" && c.tiktokToken != "" }

// Send delivers ev to every configured platform. The first failure is returned
// after all platforms were attempted.
func (c *PixelClient) Send(ctx context.Context, ev PixelEvent) error {
	var firstErr error
	if c.metaEnabled() {
		if err := c.sendMeta(ctx, ev); err != nil {
			firstErr = err
		}
	}
	if c.tiktokEnabled() {
		if err := c.sendTikTok(ctx, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *PixelClient) sendMeta(ctx context.Context, ev PixelEvent) error {
	userData := map[string]interface{}{}
	if ev.Email != "" {
		userData["em"] = []string{HashPII(ev.Email)}
	}
	if ev.Phone != "" {
		userData["ph"] = []string{HashPII(ev.Phone)}
	}
	body := map[string]interface{}{
		"data": []map[string]interface{}{{
			"event_name":       ev.EventName,
			"event_time":       ev.EventTime.Unix(),
			"event_id":         ev.EventID,
			"action_source":    "website",
			"event_source_url": ev.SourceURL,
			"user_data":        userData,
			"custom_data": map[string]interface{}{
				"value":        ev.Value,
				"currency":     ev.Currency,
				"content_ids":  ev.ContentIDs,
				"content_type": "product",
			},
		}},
	}
	url := fmt.Sprintf("%s/%s/events?access_token=%s", c.metaURL, c.metaPixelID, c.metaToken)
	return c.post(ctx, "meta", url, nil, body)
}

func (c *PixelClient) sendTikTok(ctx context.Context, ev PixelEvent) error {
	contents := make([]map[string]interface{}, 0, len(ev.ContentIDs))
	for _, id := range ev.ContentIDs {
		contents = append(contents, map[string]interface{}{"content_id": id, "content_type": "product"})
	}
	user := map[string]interface{}{}
	if ev.Email != "" {
		user["email"] = HashPII(ev.Email)
	}
	if ev.Phone != "" {
		user["phone"] = HashPII(ev.Phone)
	}
	body := map[string]interface{}{
		"event_source":    "web",
		"event_source_id": c.tiktokPixelID,
		"data": []map[string]interface{}{{
			"event":      ev.EventName,
			"event_time": ev.EventTime.Unix(),
			"event_id":   ev.EventID,
			"user":       user,
			"page":       map[string]interface{}{"url": ev.SourceURL},
			"properties": map[string]interface{}{
				"value":    ev.Value,
				"currency": ev.Currency,
				"contents": contents,
			},
		}},
	}
	headers := map[string]string{"Access-Token": c.tiktokToken}
	return c.post(ctx, "tiktok", c.tiktokURL, headers, body)
}

func (c *PixelClient) post(ctx context.Context, platform, url string, headers map[string]string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("pixel %s: marshal payload: %w", platform, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("pixel %s: create request: %w", platform, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pixel %s: unreachable: %w", platform, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pixel %s: returned %d", platform, resp.StatusCode)
	}
	return nil
}
