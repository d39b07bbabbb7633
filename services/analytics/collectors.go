package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// GA4Collector sends events through the GA4 Measurement Protocol.
type GA4Collector struct {
	client        *resty.Client
	endpoint      string
	measurementID string
	apiSecret     string
}

type ga4Payload struct {
	ClientID        string     `json:"client_id"`
	TimestampMicros int64      `json:"timestamp_micros,omitempty"`
	Events          []ga4Event `json:"events"`
}

type ga4Event struct {
	Name   string `json:"name"`
	Params Params `json:"params,omitempty"`
}

// NewGA4Collector returns nil when the measurement id or secret is missing.
func NewGA4Collector(endpoint, measurementID, apiSecret string) Collector {
	if measurementID == "" || apiSecret == "" || endpoint == "" {
		return nil
	}
	return &GA4Collector{
		client:        resty.New().SetTimeout(defaultCollectTimeout),
		endpoint:      endpoint,
		measurementID: measurementID,
		apiSecret:     apiSecret,
	}
}

func (g *GA4Collector) Name() string { return "ga4" }

func (g *GA4Collector) Collect(ctx context.Context, ev Event) error {
	clientID := ev.ClientID
	if clientID == "" {
		clientID = "anonymous"
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"measurement_id": g.measurementID,
			"api_secret":     g.apiSecret,
		}).
		SetHeader("Content-Type", "application/json").
		SetBody(ga4Payload{
			ClientID:        clientID,
			TimestampMicros: ev.At.UnixMicro(),
			Events:          []ga4Event{{Name: ev.Name, Params: ev.Params}},
		}).
		Post(g.endpoint)
	if err != nil {
		return fmt.Errorf("ga4 request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("ga4 responded %d", resp.StatusCode())
	}
	return nil
}

// AdsCollector posts conversions to an ads conversion webhook.
type AdsCollector struct {
	client *resty.Client
	url    string
	label  string
}

type adsPayload struct {
	SendTo    string            `json:"send_to,omitempty"`
	Event     string            `json:"event"`
	ClientID  string            `json:"client_id,omitempty"`
	Timestamp string            `json:"timestamp"`
	Params    map[string]string `json:"params"`
}

// NewAdsCollector returns nil when no webhook URL is configured.
func NewAdsCollector(url, label string) Collector {
	if url == "" {
		return nil
	}
	return &AdsCollector{
		client: resty.New().SetTimeout(defaultCollectTimeout),
		url:    url,
		label:  label,
	}
}

func (a *AdsCollector) Name() string { return "ads" }

func (a *AdsCollector) Collect(ctx context.Context, ev Event) error {
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(adsPayload{
			SendTo:    a.label,
			Event:     ev.Name,
			ClientID:  ev.ClientID,
			Timestamp: ev.At.Format(time.RFC3339),
			Params:    stringParams(ev.Params),
		}).
		Post(a.url)
	if err != nil {
		return fmt.Errorf("ads request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("ads responded %d", resp.StatusCode())
	}
	return nil
}
