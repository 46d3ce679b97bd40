package paapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"
)

// countingTransport records outbound calls and serves a canned response.
type countingTransport struct {
	calls    int
	status   int
	body     string
	lastReq  *http.Request
	lastBody []byte
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls++
	t.lastReq = req
	if req.Body != nil {
		t.lastBody, _ = io.ReadAll(req.Body)
	}
	return &http.Response{
		StatusCode: t.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(t.body))),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func newTestClient(transport *countingTransport) *Client {
	return NewClient(
		WithHTTPClient(&http.Client{Transport: transport}),
		WithClock(func() time.Time { return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC) }),
	)
}

func TestLookupItemsConfigGate(t *testing.T) {
	transport := &countingTransport{status: http.StatusOK, body: `{}`}
	client := newTestClient(transport)

	cases := []struct {
		name  string
		creds Credentials
		ids   []string
	}{
		{"missing secret key", Credentials{AccessKey: "ak", PartnerTag: "tag-20"}, []string{"B0ABCDEFGH"}},
		{"missing access key", Credentials{SecretKey: "sk", PartnerTag: "tag-20"}, []string{"B0ABCDEFGH"}},
		{"blank partner tag", Credentials{AccessKey: "ak", SecretKey: "sk", PartnerTag: "   "}, []string{"B0ABCDEFGH"}},
		{"empty item list", Credentials{AccessKey: "ak", SecretKey: "sk", PartnerTag: "tag-20"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.LookupItems(context.Background(), tc.creds, tc.ids)
			var configErr *ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
		})
	}
	if transport.calls != 0 {
		t.Fatalf("config errors must fail before any network call, saw %d calls", transport.calls)
	}
}

func TestLookupItemsAppliesEndpointDefaults(t *testing.T) {
	transport := &countingTransport{status: http.StatusOK, body: `{"ItemsResult":{"Items":[]}}`}
	client := newTestClient(transport)

	creds := Credentials{AccessKey: "ak", SecretKey: "sk", PartnerTag: "tag-20"}
	if _, err := client.LookupItems(context.Background(), creds, []string{"B0ABCDEFGH"}); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got := transport.lastReq.URL.Host; got != DefaultHost {
		t.Fatalf("request host = %q, want default %q", got, DefaultHost)
	}
	if got := transport.lastReq.Header.Get("Authorization"); got == "" {
		t.Fatalf("request is missing the authorization header")
	}
	if got := transport.lastReq.Header.Get("X-Amz-Target"); got != getItemsTarget {
		t.Fatalf("x-amz-target = %q, want %q", got, getItemsTarget)
	}
	if !bytes.Contains(transport.lastBody, []byte(`"Marketplace":"www.amazon.com"`)) {
		t.Fatalf("payload does not carry the default marketplace: %s", transport.lastBody)
	}
	if !bytes.Contains(transport.lastBody, []byte(`"PartnerType":"Associates"`)) {
		t.Fatalf("payload does not carry the fixed partner type: %s", transport.lastBody)
	}
}

func TestLookupItemsParsesNestedShape(t *testing.T) {
	transport := &countingTransport{
		status: http.StatusOK,
		body:   `{"ItemsResult":{"Items":[{"ASIN":"B0ABCDEFGH"},{"ASIN":"B0IJKLMNOP"}]}}`,
	}
	client := newTestClient(transport)

	items, err := client.LookupItems(context.Background(), testCreds(), []string{"B0ABCDEFGH", "B0IJKLMNOP"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
}

func TestLookupItemsParsesTopLevelShape(t *testing.T) {
	transport := &countingTransport{
		status: http.StatusOK,
		body:   `{"Items":[{"ASIN":"B0ABCDEFGH"}]}`,
	}
	client := newTestClient(transport)

	items, err := client.LookupItems(context.Background(), testCreds(), []string{"B0ABCDEFGH"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
}

func TestLookupItemsReturnsEmptyListForNeitherShape(t *testing.T) {
	transport := &countingTransport{status: http.StatusOK, body: `{"SomethingElse":true}`}
	client := newTestClient(transport)

	items, err := client.LookupItems(context.Background(), testCreds(), []string{"B0ABCDEFGH"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("got %v, want empty non-nil list", items)
	}
}

func TestLookupItemsSurfacesRemoteError(t *testing.T) {
	transport := &countingTransport{
		status: http.StatusTooManyRequests,
		body:   `{"Errors":[{"Code":"TooManyRequests"}]}`,
	}
	client := newTestClient(transport)

	_, err := client.LookupItems(context.Background(), testCreds(), []string{"B0ABCDEFGH"})
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remoteErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", remoteErr.StatusCode)
	}
	if remoteErr.Body == "" {
		t.Fatalf("remote body was not preserved")
	}
	if transport.calls != 1 {
		t.Fatalf("remote errors must not retry at this layer, saw %d calls", transport.calls)
	}
}
