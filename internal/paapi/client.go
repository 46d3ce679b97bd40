package paapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const getItemsPath = "/paapi5/getitems"

// getItemsResources is the fixed set of data facets requested for every
// lookup.
var getItemsResources = []string{
	"CustomerReviews.Count",
	"CustomerReviews.StarRating",
	"ItemInfo.ByLineInfo",
	"ItemInfo.ContentInfo",
	"ItemInfo.ContentRating",
	"ItemInfo.Classifications",
	"ItemInfo.ExternalIds",
	"ItemInfo.Features",
	"ItemInfo.ManufactureInfo",
	"ItemInfo.ProductInfo",
	"ItemInfo.TechnicalInfo",
	"ItemInfo.Title",
	"ItemInfo.TradeInInfo",
}

// getItemsRequest is the GetItems payload. Field order matters: the payload
// hash is computed over the marshaled bytes, and encoding/json preserves
// struct declaration order.
type getItemsRequest struct {
	ItemIds     []string `json:"ItemIds"`
	Resources   []string `json:"Resources"`
	PartnerTag  string   `json:"PartnerTag"`
	PartnerType string   `json:"PartnerType"`
	Marketplace string   `json:"Marketplace"`
}

// Item is one product record as returned by the remote API. The payload is
// kept as raw JSON; the UI renders whatever facets came back.
type Item = json.RawMessage

type getItemsResponse struct {
	ItemsResult *struct {
		Items []Item `json:"Items"`
	} `json:"ItemsResult"`
	Items []Item `json:"Items"`
}

// Client executes signed GetItems calls. The zero value is not usable; build
// one with NewClient.
type Client struct {
	httpClient *http.Client
	now        func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport, used by tests to count and stub
// outbound calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithClock overrides the signing clock.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LookupItems signs and performs one GetItems call for the given product
// codes. Configuration problems fail before any network I/O; a non-success
// response surfaces as a RemoteError with the remote status and body
// preserved, without retrying (retries belong to the transport, not here).
func (c *Client) LookupItems(ctx context.Context, creds Credentials, itemIDs []string) ([]Item, error) {
	if creds.AccessKey == "" || creds.SecretKey == "" {
		return nil, &ConfigError{Reason: "access key and secret key are required"}
	}
	if strings.TrimSpace(creds.PartnerTag) == "" {
		return nil, &ConfigError{Reason: "partner tag is required"}
	}
	if len(itemIDs) == 0 {
		return nil, &ConfigError{Reason: "at least one item id is required"}
	}
	creds = creds.WithDefaults()

	body := getItemsRequest{
		ItemIds:     itemIDs,
		Resources:   getItemsResources,
		PartnerTag:  strings.TrimSpace(creds.PartnerTag),
		PartnerType: "Associates",
		Marketplace: creds.Marketplace,
	}

	signed, err := Sign(creds, creds.Region, creds.Host, getItemsPath, body, c.now())
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://"+creds.Host+getItemsPath, bytes.NewReader(signed.Payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for name, value := range signed.Headers {
		req.Header.Set(name, value)
	}
	req.Header.Set("Authorization", signed.Authorization)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", getItemsPath, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed getItemsResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.ItemsResult != nil && parsed.ItemsResult.Items != nil {
		return parsed.ItemsResult.Items, nil
	}
	if parsed.Items != nil {
		return parsed.Items, nil
	}
	return []Item{}, nil
}
