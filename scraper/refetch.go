package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	tls2 "github.com/refraction-networking/utls"
	"github.com/ysmood/gson"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Refetcher re-fetches a previously captured search-API URL over plain HTTP
// with a Chrome TLS fingerprint (utls), so a timed-out in-browser race can
// still yield the JSON payload without another navigation.
type Refetcher struct {
	defaultProxy string
}

// NewRefetcher creates a Refetcher.
func NewRefetcher(defaultProxy string) *Refetcher {
	return &Refetcher{defaultProxy: defaultProxy}
}

// FetchPayload retrieves targetURL and qualifies the body the same way the
// in-browser trap does. headers are the request headers observed on the
// original capture; cookieHeader carries the page's current cookies.
func (f *Refetcher) FetchPayload(ctx context.Context, targetURL string, headers map[string]string, cookieHeader string) (gson.JSON, error) {
	body, err := f.fetch(ctx, targetURL, headers, cookieHeader)
	if err != nil {
		return gson.JSON{}, err
	}
	if !json.Valid(body) {
		return gson.JSON{}, fmt.Errorf("refetch: response is not valid JSON")
	}
	payload, ok := parsePayload(string(body))
	if !ok {
		return gson.JSON{}, fmt.Errorf("refetch: response does not carry product snippets")
	}
	return payload, nil
}

// fetch retrieves the URL via HTTP with a Chrome TLS fingerprint.
func (f *Refetcher) fetch(ctx context.Context, targetURL string, headers map[string]string, cookieHeader string) ([]byte, error) {
	proxy := f.defaultProxy

	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChrome(ctx, network, addr, proxy)
		},
	}
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("refetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		if skipHeader(k) {
			continue
		}
		req.Header.Set(k, v)
	}
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("refetch: HTTP %d for %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024)) // 10 MB cap
	if err != nil {
		return nil, fmt.Errorf("refetch: read body: %w", err)
	}
	return body, nil
}

// skipHeader filters captured request headers that the transport manages
// itself or that would corrupt the replayed request.
func skipHeader(name string) bool {
	switch strings.ToLower(name) {
	case "accept-encoding", "content-length", "host", "connection", "cookie":
		return true
	}
	return strings.HasPrefix(name, ":")
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via utls.
func dialTLSChrome(ctx context.Context, network, addr, proxy string) (net.Conn, error) {
	var rawConn net.Conn
	var err error

	dialer := &net.Dialer{}

	if proxy != "" {
		proxyURL, parseErr := url.Parse(proxy)
		if parseErr == nil && (proxyURL.Scheme == "socks5" || proxyURL.Scheme == "socks5h") {
			socksConn, socksErr := dialer.DialContext(ctx, "tcp", proxyURL.Host)
			if socksErr != nil {
				return nil, fmt.Errorf("socks5 dial: %w", socksErr)
			}
			rawConn = socksConn
		}
	}

	if rawConn == nil {
		rawConn, err = dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName:         host,
		InsecureSkipVerify: false,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
