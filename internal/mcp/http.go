package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HeaderFunc supplies per-request headers, typically from an auth provider.
type HeaderFunc func(ctx context.Context) (map[string]string, error)

// HTTPTransport implements streamable HTTP: JSON-RPC requests as POSTs,
// responses either as application/json or as a text/event-stream carrying
// the reply.
type HTTPTransport struct {
	url        string
	headers    map[string]string
	headerFn   HeaderFunc
	httpClient *http.Client
	sessionID  string
}

// NewHTTPTransport targets url with the given static headers. headerFn may
// be nil; when set, its headers are applied after the static ones on every
// request. A zero timeout selects a 30-second default.
func NewHTTPTransport(url string, headers map[string]string, headerFn HeaderFunc, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPTransport{
		url:        url,
		headers:    headers,
		headerFn:   headerFn,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send posts a JSON-RPC request and decodes the reply.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	for name, value := range t.headers {
		httpReq.Header.Set(name, value)
	}
	if t.headerFn != nil {
		dynamic, err := t.headerFn(ctx)
		if err != nil {
			return nil, fmt.Errorf("auth headers: %w", err)
		}
		for name, value := range dynamic {
			httpReq.Header.Set(name, value)
		}
	}
	if t.sessionID != "" {
		httpReq.Header.Set("Mcp-Session-Id", t.sessionID)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if sid := resp.Header.Get("Mcp-Session-Id"); sid != "" {
		t.sessionID = sid
	}

	// Notifications commonly return 202 with an empty body.
	if req.ID == 0 && (resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusNoContent) {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		return parseSSE(resp.Body, req.ID)
	}

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &rpcResp, nil
}

// parseSSE scans an event stream for the JSON-RPC response matching the
// request ID, ignoring unrelated events.
func parseSSE(r io.Reader, requestID int) (*Response, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		data, found := strings.CutPrefix(scanner.Text(), "data: ")
		if !found {
			continue
		}

		var rpcResp Response
		if err := json.Unmarshal([]byte(data), &rpcResp); err != nil {
			continue
		}
		if rpcResp.ID == requestID {
			return &rpcResp, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sse stream: %w", err)
	}
	return nil, fmt.Errorf("no response for request id %d in sse stream", requestID)
}

// Close is a no-op; each HTTP request is independent.
func (t *HTTPTransport) Close() error {
	return nil
}
