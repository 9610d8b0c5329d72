package scraper

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// emptySearchMarker appears in the URL of zero-result search responses;
// those never qualify as the product payload.
const emptySearchMarker = "empty_search"

// capturedResponse is one qualifying product-payload exchange.
type capturedResponse struct {
	payload         gson.JSON
	sourceURL       string
	requestHeaders  map[string]string
	responseHeaders map[string]string
}

// responseTrap listens for the product-bearing XHR/fetch response on a page.
// It must be armed before navigation so no in-flight response is missed.
// At most one capture resolves per trap; Wait races the capture against a
// timeout, and whichever branch wins cancels the other.
type responseTrap struct {
	cancel context.CancelFunc
	done   chan *capturedResponse
}

// armResponseTrap registers the network listener on the page.
func armResponseTrap(page *rod.Page) *responseTrap {
	ctx, cancel := context.WithCancel(page.GetContext())
	p := page.Context(ctx)

	t := &responseTrap{
		cancel: cancel,
		done:   make(chan *capturedResponse, 1),
	}

	wait := p.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeXHR && e.Type != proto.NetworkResourceTypeFetch {
			return false
		}
		if strings.Contains(e.Response.URL, emptySearchMarker) {
			return false
		}

		body, err := proto.NetworkGetResponseBody{RequestID: e.RequestID}.Call(p)
		if err != nil || body.Body == "" {
			return false
		}
		raw := body.Body
		if body.Base64Encoded {
			decoded, decErr := base64.StdEncoding.DecodeString(raw)
			if decErr != nil {
				return false
			}
			raw = string(decoded)
		}

		payload, ok := parsePayload(raw)
		if !ok {
			return false
		}

		t.done <- &capturedResponse{
			payload:         payload,
			sourceURL:       e.Response.URL,
			requestHeaders:  headersToMap(e.Response.RequestHeaders),
			responseHeaders: headersToMap(e.Response.Headers),
		}
		return true // deregister: one capture per navigation
	})
	go wait()

	return t
}

// Wait blocks until the trap captures a payload, the timeout elapses, or
// ctx is done. The losing branch is always cancelled: a capture stops the
// timer, a timeout deregisters the listener.
func (t *responseTrap) Wait(ctx context.Context, timeout time.Duration) (*capturedResponse, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	defer t.cancel()

	select {
	case captured := <-t.done:
		return captured, true
	case <-timer.C:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

// Stop deregisters the listener. Safe to call more than once.
func (t *responseTrap) Stop() {
	t.cancel()
}

// parsePayload qualifies a response body as the product payload: valid
// JSON, a non-empty list at response.snippets, and at least one snippet
// carrying a data.identity field.
func parsePayload(raw string) (gson.JSON, bool) {
	if !json.Valid([]byte(raw)) {
		return gson.JSON{}, false
	}
	payload := gson.NewFrom(raw)

	snippets, isList := payload.Get("response.snippets").Val().([]interface{})
	if !isList || len(snippets) == 0 {
		return gson.JSON{}, false
	}
	for _, sn := range payload.Get("response.snippets").Arr() {
		if sn.Get("data.identity").Val() != nil {
			return payload, true
		}
	}
	return gson.JSON{}, false
}

// headersToMap flattens rod protocol headers into a plain string map.
func headersToMap(h proto.NetworkHeaders) map[string]string {
	if len(h) == 0 {
		return nil
	}
	m := make(map[string]string, len(h))
	for k, v := range h {
		m[k] = v.Str()
	}
	return m
}
