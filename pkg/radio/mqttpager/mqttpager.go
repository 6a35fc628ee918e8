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

// Package mqttpager receives pages from a POCSAG-to-MQTT bridge (an SDR
// running a decoder and publishing each page). Payloads are either plain
// text or JSON of the form {"address":1234567,"text":"Room 4"}.
package mqttpager

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/lazeeeer/MD-Vision/pkg/config"
	"github.com/lazeeeer/MD-Vision/pkg/radio"
	"github.com/rs/zerolog/log"
)

const (
	clientIDPrefix = "md-vision-pager-"
	connectTimeout = 5 * time.Second
)

// ClientFactory builds the paho client. Tests replace it.
type ClientFactory func(opts *mqtt.ClientOptions) mqtt.Client

func DefaultClientFactory(opts *mqtt.ClientOptions) mqtt.Client {
	return mqtt.NewClient(opts)
}

type Receiver struct {
	client        mqtt.Client
	clientFactory ClientFactory
	inbox         *radio.Inbox
	broker        string
	topic         string
}

type Option func(*Receiver)

func WithClientFactory(f ClientFactory) Option {
	return func(r *Receiver) { r.clientFactory = f }
}

func WithInbox(size int) Option {
	return func(r *Receiver) { r.inbox = radio.NewInbox(size) }
}

func NewReceiver(opts ...Option) *Receiver {
	r := &Receiver{
		clientFactory: DefaultClientFactory,
		inbox:         radio.NewInbox(radio.DefaultInboxSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ParsePath splits "broker:port/topic" (optionally with an mqtt:// or
// mqtts:// scheme) into the broker URL and topic.
func ParsePath(path string) (brokerURL, topic string, err error) {
	if path == "" {
		return "", "", errors.New("path cannot be empty")
	}

	urlStr := path
	if !strings.Contains(path, "://") {
		urlStr = "mqtt://" + path
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse MQTT URL: %w", err)
	}
	if u.Host == "" {
		return "", "", errors.New("broker address (host:port) is required")
	}

	topic = strings.TrimLeft(u.Path, "/")
	if topic == "" {
		return "", "", errors.New("topic is required")
	}

	scheme := "tcp"
	if u.Scheme == "mqtts" || u.Scheme == "ssl" {
		scheme = "ssl"
	}
	return scheme + "://" + u.Host, topic, nil
}

// NewClientOptions builds paho options for brokerURL with auto-reconnect,
// credentials from auth.toml and TLS for ssl:// brokers.
func NewClientOptions(brokerURL string) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientIDPrefix + uuid.New().String()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetOrderMatters(false)

	creds := config.LookupAuth(config.GetAuthCfg(), brokerURL)
	if creds != nil && creds.Username != "" {
		opts.SetUsername(creds.Username)
		opts.SetPassword(creds.Password)
		log.Debug().Msgf("mqtt pager: using authentication for %s", brokerURL)
	}

	if strings.HasPrefix(brokerURL, "ssl://") {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	return opts
}

// Open connects to the broker and subscribes to the page topic.
func (r *Receiver) Open(path string) error {
	brokerURL, topic, err := ParsePath(path)
	if err != nil {
		return fmt.Errorf("failed to parse MQTT path: %w", err)
	}
	r.broker = brokerURL
	r.topic = topic

	opts := NewClientOptions(brokerURL)
	opts.OnConnect = func(client mqtt.Client) {
		// QoS 1 so a page isn't lost across a broker hiccup; re-run on
		// every reconnect.
		token := client.Subscribe(topic, 1, r.handleMessage)
		if token.Wait() && token.Error() != nil {
			log.Error().Err(token.Error()).Msgf("mqtt pager: failed to subscribe to %s", topic)
			return
		}
		log.Info().Msgf("mqtt pager: subscribed to %s", topic)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt pager: connection lost")
	}

	r.client = r.clientFactory(opts)
	token := r.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		r.client.Disconnect(0)
		r.client = nil
		return errors.New("failed to connect to MQTT broker: connection timeout")
	}
	if err := token.Error(); err != nil {
		r.client.Disconnect(0)
		r.client = nil
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	log.Info().Msgf("mqtt pager: connected to %s (topic: %s)", brokerURL, topic)
	return nil
}

type jsonPage struct {
	Text    string `json:"text"`
	Address uint32 `json:"address"`
}

// DecodePayload turns a bridge message into a page. Empty payloads yield nil.
func DecodePayload(payload []byte) (*radio.Page, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, nil //nolint:nilnil // nothing to deliver
	}

	if trimmed[0] != '{' {
		return &radio.Page{Payload: append([]byte(nil), trimmed...)}, nil
	}

	var jp jsonPage
	if err := json.Unmarshal(trimmed, &jp); err != nil {
		return nil, fmt.Errorf("invalid page json: %w", err)
	}
	if jp.Text == "" {
		return nil, nil //nolint:nilnil // tone-only page
	}
	return &radio.Page{Payload: []byte(jp.Text), Address: jp.Address}, nil
}

func (r *Receiver) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	page, err := DecodePayload(msg.Payload())
	if err != nil {
		log.Warn().Err(err).Str("topic", msg.Topic()).Msg("mqtt pager: ignoring message")
		return
	}
	if page == nil {
		log.Debug().Msg("mqtt pager: ignoring empty message")
		return
	}
	page.Received = time.Now()
	if r.inbox.Push(*page) {
		log.Warn().Msg("mqtt pager: inbox full, dropped oldest page")
	}
}

func (r *Receiver) Available() int {
	return r.inbox.Len()
}

func (r *Receiver) Read(buf []byte) (radio.ReadResult, error) {
	return r.inbox.ReadInto(buf)
}

func (r *Receiver) Connected() bool {
	return r.client != nil && r.client.IsConnected()
}

func (r *Receiver) Close() error {
	if r.client != nil && r.client.IsConnected() {
		log.Debug().Msg("mqtt pager: disconnecting")
		r.client.Disconnect(250)
	}
	return nil
}
