package tasmota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/logger"
)

// Known Tasmota command strings.
const (
	CmdPowerToggle = "Power TOGGLE"
	CmdPowerOn     = "Power ON"
	CmdPowerOff    = "Power OFF"
	CmdStatusAll   = "Status 0"  // comprehensive status
	CmdStatusSNS   = "Status 10" // sensor status (energy)
	CmdStatusSTS   = "Status 11" // basic runtime status
)

// Cap on response bodies; Tasmota status payloads are a few KB at most.
const maxResponseBytes = 1 << 16 // 64 KB

// Transport failures all collapse to "no data" for callers above the Facade.
var (
	ErrNoData         = errors.New("no data from device")
	ErrUnknownCommand = errors.New("device rejected command as unknown")
)

// Credentials carry the HTTP Basic auth pair attached to every device call.
// Injected from config at construction; no package-level auth state.
type Credentials struct {
	Username string
	Password string
}

// Client issues single-shot commands against a Tasmota device's /cm endpoint.
// Stateless apart from the shared http.Client; never retries.
type Client struct {
	httpClient *http.Client
	creds      Credentials
	log        *logger.Logger
}

// NewClient constructs a Client. The http.Client carries no global timeout;
// every call is bounded by the caller-supplied timeout instead.
func NewClient(creds Credentials, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		creds:      creds,
		log:        log,
	}
}

// commandURL builds http://<address>/cm?cmnd=<url-encoded command>.
func commandURL(address, command string) string {
	return fmt.Sprintf("http://%s/cm?cmnd=%s", address, url.QueryEscape(command))
}

// isUnknownCommand reports whether a decoded body carries Tasmota's
// {"Command":"Unknown"} rejection marker.
func isUnknownCommand(body map[string]any) bool {
	v, ok := body["Command"]
	if !ok {
		return false
	}
	s, ok := v.(string)
	return ok && strings.EqualFold(s, "Unknown")
}

// SendCommand issues one GET against the device command endpoint and returns
// the parsed JSON body. At most one attempt per call: network errors,
// timeouts, non-2xx statuses, malformed JSON and unknown-command rejections
// are all logged and returned as errors, which callers treat as "no data".
func (c *Client) SendCommand(ctx context.Context, address, command string, timeout time.Duration) (map[string]any, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, commandURL(address, command), nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", command, err)
	}
	if c.creds.Username != "" {
		req.SetBasicAuth(c.creds.Username, c.creds.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Infow("device_request_failed", "address", address, "cmnd", command, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Infow("device_bad_status", "address", address, "cmnd", command, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: http status %d", ErrNoData, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.log.Infow("device_read_failed", "address", address, "cmnd", command, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		c.log.Infow("device_malformed_json", "address", address, "cmnd", command, "err", err)
		return nil, fmt.Errorf("%w: malformed json", ErrNoData)
	}

	if isUnknownCommand(body) {
		// Protocol-level rejection, distinct from a transport error but the
		// same outcome for callers: no data.
		c.log.Infow("device_unknown_command", "address", address, "cmnd", command)
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}

	return body, nil
}
