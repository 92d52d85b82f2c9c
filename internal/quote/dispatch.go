package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

// DefaultWebhookURL is the automation endpoint used when the deployment does
// not configure one.
const DefaultWebhookURL = "https://automation.customtruckbeds.com.au/webhook/quote-request"

// DefaultDispatchTimeout bounds a single webhook request.
const DefaultDispatchTimeout = 10 * time.Second

// Outcome is what the sender can know about a dispatch: it either went out or
// it did not. Whether the receiver accepted the lead is not part of it.
type Outcome int

const (
	// DispatchSucceeded means the request completed a round trip.
	DispatchSucceeded Outcome = iota + 1
	// DispatchFailed means the request never completed (bad URL, DNS, refused,
	// timed out).
	DispatchFailed
)

func (o Outcome) String() string {
	switch o {
	case DispatchSucceeded:
		return "succeeded"
	case DispatchFailed:
		return "failed"
	}
	return "unknown"
}

// Receipt describes one dispatch. StatusCode is informational only and is
// zero when no response arrived.
type Receipt struct {
	Outcome    Outcome
	StatusCode int
	Err        error
}

// Dispatcher sends a payload to an endpoint.
type Dispatcher interface {
	Dispatch(ctx context.Context, endpoint string, payload Payload) Receipt
}

// WebhookDispatcher posts payloads as JSON over HTTP.
type WebhookDispatcher struct {
	httpClient *http.Client
}

// NewWebhookDispatcher constructs a dispatcher. A nil client gets a default one
// with DefaultDispatchTimeout.
func NewWebhookDispatcher(client *http.Client) *WebhookDispatcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultDispatchTimeout}
	}
	return &WebhookDispatcher{httpClient: client}
}

// Dispatch issues exactly one POST. Any response, whatever its status, counts
// as DispatchSucceeded.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, endpoint string, payload Payload) Receipt {
	body, err := json.Marshal(payload)
	if err != nil {
		return failed(fmt.Errorf("encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return failed(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return failed(fmt.Errorf("send request: %w", err))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()

	return Receipt{Outcome: DispatchSucceeded, StatusCode: resp.StatusCode}
}

// ErrForbiddenAddress rejects webhook hosts that resolve to loopback, private,
// link-local or otherwise non-public addresses.
var ErrForbiddenAddress = errors.New("webhook address is not publicly routable")

var nonPublicPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("64:ff9b::/96"),
}

// NewPublicWebhookDispatcher returns a dispatcher for visitor supplied URLs.
// Every connection, redirects included, is checked after DNS resolution and
// refused unless the peer is a public unicast address. Proxies from the
// environment are ignored so the check sees the real peer.
func NewPublicWebhookDispatcher(timeout time.Duration) *WebhookDispatcher {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	dialer := &net.Dialer{Timeout: timeout, Control: publicOnly}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return NewWebhookDispatcher(&http.Client{Timeout: timeout, Transport: transport})
}

func publicOnly(network, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, address)
	}
	if !IsPublicAddr(addrPort.Addr()) {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, addrPort.Addr())
	}
	return nil
}

// IsPublicAddr reports whether ip is a globally routable unicast address.
func IsPublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	if !ip.IsValid() || !ip.IsGlobalUnicast() || ip.IsPrivate() {
		return false
	}
	for _, prefix := range nonPublicPrefixes {
		if prefix.Contains(ip) {
			return false
		}
	}
	return true
}

func failed(err error) Receipt {
	return Receipt{Outcome: DispatchFailed, Err: err}
}
