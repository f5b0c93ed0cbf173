// Package ha talks to the home-automation system: area listing through
// the template endpoint and service calls, including the device-discovery
// trigger relayed through the voice-assistant media player integration.
package ha

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mkieser/alexactl/internal/sync"
	"github.com/mkieser/alexactl/internal/transport"
)

const requestTimeout = 15 * time.Second

// areasTemplate renders "name":["entity_id",...] pairs for every area.
// The template engine hand-builds the output, so the response is a
// slightly malformed JSON-like string (trailing comma, no enclosing
// braces) that repairJSON fixes up before parsing.
const areasTemplate = `{%- for area in areas() -%} {{area|to_json}}:{{area_entities(area)|to_json}}, {%- endfor -%}`

// Client calls the home-automation HTTP API.
type Client struct {
	sender  transport.Sender
	host    string
	headers map[string]string
	log     *slog.Logger
}

// NewClient creates a client for the given host, authenticating with the
// given headers (bearer token).
func NewClient(s transport.Sender, host string, headers map[string]string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{sender: s, host: host, headers: headers, log: log}
}

// Areas fetches every area with its entity identifiers.
//
// A response that cannot be repaired into valid JSON degrades to an empty
// map rather than an error: downstream reconciliation then sees nothing
// to do, which is the deliberate availability-over-correctness choice for
// this fragile endpoint. The case is logged at error level because it can
// mask real data loss.
func (c *Client) Areas(ctx context.Context) (map[string][]string, error) {
	body, err := json.Marshal(map[string]string{"template": areasTemplate})
	if err != nil {
		return nil, err
	}
	resp, err := c.sender.Send(ctx, transport.Request{
		Method:  "POST",
		URL:     fmt.Sprintf("https://%s/api/template", c.host),
		Headers: c.headers,
		Body:    body,
		Timeout: requestTimeout,
	})
	if err != nil {
		return nil, sync.NewOpError(sync.CodeTransient, "list areas", "", err)
	}
	if !resp.OK() {
		return nil, sync.NewOpError(sync.CodeTransient, "list areas", "",
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(resp.Body)))
	}

	areas := map[string][]string{}
	if err := json.Unmarshal(repairJSON(resp.Body), &areas); err != nil {
		c.log.Error("unparseable area listing, treating as empty",
			"error", err, "body_prefix", truncate(resp.Body))
		return map[string][]string{}, nil
	}
	return areas, nil
}

// CallService invokes a home-automation service
// ("media_player"/"play_media"). Only the response status matters.
func (c *Client) CallService(ctx context.Context, domain, service string, data map[string]any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	target := fmt.Sprintf("%s.%s", domain, service)
	resp, err := c.sender.Send(ctx, transport.Request{
		Method:  "POST",
		URL:     fmt.Sprintf("https://%s/api/services/%s/%s", c.host, domain, service),
		Headers: c.headers,
		Body:    body,
		Timeout: requestTimeout,
	})
	if err != nil {
		return sync.NewOpError(sync.CodeTransient, "call service", target, err)
	}
	if !resp.OK() {
		return sync.NewOpError(sync.CodeTransient, "call service", target,
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(resp.Body)))
	}
	return nil
}

// TriggerDiscovery asks the voice assistant to discover devices by
// speaking the discovery command through the configured media player
// entity. Safe to call once per run; the remote treats repeat triggers as
// no-ops while discovery is in flight.
func (c *Client) TriggerDiscovery(ctx context.Context, mediaPlayerEntityID string) error {
	if mediaPlayerEntityID == "" {
		return sync.NewOpError(sync.CodeConfiguration, "trigger discovery", "",
			fmt.Errorf("no media player entity configured"))
	}
	return c.CallService(ctx, "media_player", "play_media", map[string]any{
		"entity_id":          mediaPlayerEntityID,
		"media_content_id":   "discover devices",
		"media_content_type": "custom",
	})
}

// repairJSON patches the template endpoint's hand-built output into
// parseable JSON: trim whitespace, drop one trailing comma, and wrap in
// braces when the enclosing object is missing.
func repairJSON(body []byte) []byte {
	text := strings.TrimSpace(string(body))
	text = strings.TrimSuffix(text, ",")
	if !(strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}")) {
		text = "{" + text + "}"
	}
	return []byte(text)
}

func truncate(body []byte) string {
	const n = 100
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n])
}
