// MD-Vision Pager
// Copyright (c) 2026 The MD-Vision Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of MD-Vision Pager.
//
// MD-Vision Pager is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// MD-Vision Pager is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with MD-Vision Pager.  If not, see <http://www.gnu.org/licenses/>.

package httpclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"time"

	"github.com/lazeeeer/MD-Vision/pkg/config"
	"github.com/rs/zerolog/log"
)

// MaxResponseBytes caps how much of an upload response is read.
const MaxResponseBytes = 64 << 10

// AuthTransport adds credentials from auth.toml to matching requests.
type AuthTransport struct {
	Base http.RoundTripper
	// Creds overrides the loaded auth.toml entries.
	Creds func() map[string]config.CredentialEntry
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	lookup := t.Creds
	if lookup == nil {
		lookup = config.GetAuthCfg
	}

	if creds := config.LookupAuth(lookup(), req.URL.String()); creds != nil {
		req = req.Clone(req.Context())
		switch {
		case creds.Bearer != "":
			req.Header.Set("Authorization", "Bearer "+creds.Bearer)
		case creds.Username != "":
			auth := base64.StdEncoding.EncodeToString([]byte(creds.Username + ":" + creds.Password))
			req.Header.Set("Authorization", "Basic "+auth)
		}
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform HTTP round trip: %w", err)
	}
	return resp, nil
}

// DefaultTransport is tuned for a single slow uplink.
var DefaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 30 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	MaxIdleConns:          4,
	MaxIdleConnsPerHost:   2,
	IdleConnTimeout:       90 * time.Second,
}

type Client struct {
	*http.Client
}

func NewClientWithTimeout(timeout time.Duration) *Client {
	return &Client{
		Client: &http.Client{
			Transport: &AuthTransport{Base: DefaultTransport},
			Timeout:   timeout,
		},
	}
}

// NewClientFromConfig uses the configured upload timeout.
func NewClientFromConfig(cfg *config.Instance) *Client {
	timeout := cfg.UploadTimeout()
	if timeout <= 0 {
		timeout = config.HTTPTimeout
	}
	return NewClientWithTimeout(timeout)
}

// Post performs a POST request with the given body and returns the response.
func (c *Client) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing POST request: %w", err)
	}
	return resp, nil
}

// Upload describes one image sent with UploadImage.
type Upload struct {
	Fields   map[string]string
	Field    string
	Filename string
	Data     []byte
}

// StatusError is returned for a non-2xx upload response.
type StatusError struct {
	Body string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upload rejected with status %d", e.Code)
}

// UploadImage posts the image as multipart/form-data and returns the
// response body.
func (c *Client) UploadImage(ctx context.Context, url string, up Upload) ([]byte, error) {
	if len(up.Data) == 0 {
		return nil, errors.New("empty image")
	}
	field := up.Field
	if field == "" {
		field = "image"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range up.Fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", k, err)
		}
	}
	part, err := mw.CreateFormFile(field, up.Filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(up.Data); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	resp, err := c.Post(ctx, url, mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing response body")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
