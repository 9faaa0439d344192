// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

// TokenSource yields the bearer token for the next request. An empty token
// sends no Authorization header.
type TokenSource func() string

// Client is the single entry point to the ClubPulse REST API.
type Client struct {
	BaseURL    string
	Token      TokenSource
	HTTPClient *http.Client

	// gets coalesces identical concurrent GETs.
	gets singleflight.Group
}

// New returns a Client for baseURL. A nil httpClient uses a fresh
// http.Client.
func New(baseURL string, token TokenSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: httpClient,
	}
}

// Do sends body (JSON encoded, may be nil) to path and decodes the response
// into out (may be nil). Concurrent GETs of the same path share one round
// trip.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	target := c.BaseURL + path

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = b
	}

	var doc []byte
	if method == http.MethodGet && payload == nil {
		v, err, shared := c.gets.Do(target, func() (any, error) {
			return c.roundTrip(ctx, method, target, nil)
		})
		if shared {
			log.Debugf("GET %s shared", target)
		}
		if err != nil {
			return err
		}
		doc = v.([]byte)
	} else {
		b, err := c.roundTrip(ctx, method, target, payload)
		if err != nil {
			return err
		}
		doc = b
	}

	if out == nil || len(bytes.TrimSpace(doc)) == 0 {
		return nil
	}

	if err := json.Unmarshal(doc, out); err != nil {
		return &NetworkError{Method: method, URL: target, Err: fmt.Errorf("malformed response body: %w", err)}
	}

	return nil
}

// roundTrip performs one request and returns the raw response body of a 2xx
// response. The returned slice may be shared and must not be modified.
func (c *Client) roundTrip(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.Token != nil {
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log.WithFields(log.Fields{
		"method": method,
		"url":    target,
		"id":     req.Header.Get("X-Request-Id"),
	}).Debug("request")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: target, Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, &NetworkError{Method: method, URL: target, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// A body that isn't JSON, or has no message, falls back to the status.
		message := ""
		if gjson.ValidBytes(doc.Bytes()) {
			message = gjson.GetBytes(doc.Bytes(), "message").String()
		}
		log.Debugf("%s %s: status %d", method, target, resp.StatusCode)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message, Body: doc.Bytes()}
	}

	return doc.Bytes(), nil
}

// Get decodes the response of a GET request into a T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Post sends body and decodes the response into a T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPost, path, body, &out)
	return out, err
}

// Put sends body and decodes the response into a T.
func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPut, path, body, &out)
	return out, err
}

// Delete issues a DELETE and decodes any response body into a T.
func Delete[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodDelete, path, nil, &out)
	return out, err
}

// WithQuery appends encoded query parameters to path. Empty values are
// dropped.
func WithQuery(path string, params url.Values) string {
	clean := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			if v != "" {
				clean.Add(k, v)
			}
		}
	}
	if len(clean) == 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + clean.Encode()
}
