// Package health implements the probe algorithm of spec §4.5: a fixed
// candidate-URL sequence tried in order over one shared pooled HTTP client,
// plus tail-bounded log reading.
package health

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

// Monitor probes managed services over HTTPS and tails their log files.
type Monitor struct {
	client  *http.Client
	logDir  string
	logKind map[core.LogCategory]string
}

// New builds a Monitor with one pooled, keep-alive HTTP client shared across
// every probe (spec §4.5's "one shared connection-pooling HTTP client").
// logDir is the directory containing the managed log files; logKind maps
// each recognized LogsRequest.Kind to a filename under logDir.
func New(logDir string, logKind map[core.LogCategory]string) *Monitor {
	transport := &http.Transport{
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
	}
	return &Monitor{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		logDir:  logDir,
		logKind: logKind,
	}
}

// candidate pairs a probe URL with the path nginx sees it on, since the
// 401/403/406 success rule is conditioned on the path being /mcp.
type candidate struct {
	url  string
	path string
}

func candidatesFor(domain string) []candidate {
	return []candidate{
		{url: fmt.Sprintf("https://%s/health", domain), path: "/health"},
		{url: fmt.Sprintf("https://%s/mcp", domain), path: "/mcp"},
		{url: fmt.Sprintf("https://%s/", domain), path: "/"},
	}
}

// Probe runs spec §4.5's algorithm: try each candidate URL in order with a
// per-attempt deadline of ceil(timeout/3), classify the response, and stop
// at the first success.
func (m *Monitor) Probe(ctx context.Context, req core.HealthRequest) (core.HealthResult, error) {
	const op = "health_probe"
	if err := ctx.Err(); err != nil {
		return core.HealthResult{}, core.Wrap(core.KindCancelled, op, req.Domain, err)
	}

	candidates := candidatesFor(req.Domain)
	perAttempt := ceilDiv(time.Duration(req.TimeoutSeconds)*time.Second, int64(len(candidates)))

	start := time.Now()
	result := core.HealthResult{}
	var lastErr string

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return core.HealthResult{}, core.Wrap(core.KindCancelled, op, req.Domain, err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, perAttempt)
		status, finalURL, err := m.attempt(attemptCtx, c.url, req.FollowRedirects)
		cancel()

		result.Attempts = append(result.Attempts, c.url)

		if err != nil {
			lastErr = classifyTransportError(err)
			continue
		}

		if classifySuccess(status, c.path) {
			result.Success = true
			result.URL = finalURL
			result.StatusCode = status
			result.ResponseTimeMS = time.Since(start).Milliseconds()
			return result, nil
		}
		lastErr = fmt.Sprintf("unsuccessful status %d", status)
	}

	result.Success = false
	result.Error = lastErr
	result.ResponseTimeMS = time.Since(start).Milliseconds()
	return result, nil
}

func (m *Monitor) attempt(ctx context.Context, url string, followRedirects bool) (status int, finalURL string, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}

	client := m.client
	if !followRedirects {
		noRedirect := *m.client
		noRedirect.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
		client = &noRedirect
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	finalURL = url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return resp.StatusCode, finalURL, nil
}

// classifySuccess implements spec §4.5's status classification. Redirect
// following already happened inside net/http's client via CheckRedirect, so
// by the time we see a status it is either the final hop's status (2xx/4xx/
// 5xx) or a 3xx that redirects were disabled for.
func classifySuccess(status int, path string) bool {
	switch {
	case status >= 200 && status < 300:
		return true
	case status == 401 || status == 403 || status == 406:
		return path == "/mcp"
	default:
		return false
	}
}

func classifyTransportError(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns: " + dnsErr.Err
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return "tls: " + err.Error()
	}
	return err.Error()
}

// ceilDiv splits total into n parts, rounding each part up to a whole second.
func ceilDiv(total time.Duration, n int64) time.Duration {
	if n <= 0 {
		return total
	}
	secs := int64((total + time.Second - 1) / time.Second)
	per := secs / n
	if secs%n != 0 {
		per++
	}
	return time.Duration(per) * time.Second
}
