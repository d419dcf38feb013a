package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/labelsafe/backend/internal/domain"
)

const maxResponseBytes = 256 << 10

// embeddedJSONRegex extracts a JSON object embedded in a free-text
// reply, which advisory models produce when they ignore the requested
// output format.
var embeddedJSONRegex = regexp.MustCompile(`\{[\s\S]*\}`)

// Client consults the external advisory endpoint for a secondary
// opinion on products the local heuristic could not decide. It is a
// best-effort collaborator: timeouts, HTTP errors and malformed bodies
// all degrade to a result with an empty status, never to an error.
type Client struct {
	httpClient *http.Client
	endpoint   string
	timeout    time.Duration
	log        *zap.Logger
}

// NewClient creates an advisory client for the given endpoint URL.
// A zero timeout defaults to 12 seconds.
func NewClient(endpoint string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		timeout:    timeout,
		log:        log,
	}
}

// Consult sends the sanitized product payload and returns the parsed
// reply. All failure paths resolve to a degraded result so the caller's
// merge logic is always reachable.
func (c *Client) Consult(ctx context.Context, req domain.AdvisoryRequest) domain.AdvisoryResult {
	body, err := json.Marshal(req)
	if err != nil {
		return c.degraded("advisory request could not be encoded", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return c.degraded("advisory request could not be created", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.degraded("advisory endpoint did not respond", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.degraded(fmt.Sprintf("advisory endpoint returned status %d", resp.StatusCode), nil)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return c.degraded("advisory response could not be read", err)
	}

	result, ok := parseReply(raw)
	if !ok {
		return c.degraded("advisory response could not be parsed", nil)
	}

	c.log.Debug("advisory reply",
		zap.String("code", req.Code), zap.String("status", string(result.Status)))
	return result
}

// parseReply decodes the advisory body. It accepts the plain
// {status, notes} shape, the wrapped {ok, status, notes} shape, and
// free-text bodies containing an embedded JSON object.
func parseReply(raw []byte) (domain.AdvisoryResult, bool) {
	if result, ok := decodeReply(raw); ok {
		return result, true
	}

	// Not valid JSON, or JSON without a usable status: look for an
	// embedded object before giving up.
	if m := embeddedJSONRegex.Find(raw); m != nil && !bytes.Equal(m, bytes.TrimSpace(raw)) {
		if result, ok := decodeReply(m); ok {
			return result, true
		}
	}

	return domain.AdvisoryResult{}, false
}

type advisoryReply struct {
	Status string   `json:"status"`
	Notes  []string `json:"notes"`
}

func decodeReply(raw []byte) (domain.AdvisoryResult, bool) {
	var reply advisoryReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return domain.AdvisoryResult{}, false
	}

	status := domain.Status(reply.Status)
	if !status.Valid() {
		return domain.AdvisoryResult{}, false
	}

	return domain.AdvisoryResult{Status: status, Notes: reply.Notes}, true
}

func (c *Client) degraded(reason string, err error) domain.AdvisoryResult {
	if err != nil {
		c.log.Warn("advisory consultation degraded", zap.String("reason", reason), zap.Error(err))
	} else {
		c.log.Warn("advisory consultation degraded", zap.String("reason", reason))
	}
	return domain.AdvisoryResult{Notes: []string{reason}}
}
