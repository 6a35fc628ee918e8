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

package mqttpager

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// mockClient implements mqtt.Client and runs OnConnect like paho does.
type mockClient struct {
	connectError    error
	subscribeError  error
	opts            *mqtt.ClientOptions
	handler         mqtt.MessageHandler
	subscribedTopic string
	disconnectCalls int
	connected       bool
	neverConnects   bool
}

func (m *mockClient) factory(opts *mqtt.ClientOptions) mqtt.Client {
	m.opts = opts
	return m
}

func (m *mockClient) IsConnected() bool      { return m.connected }
func (m *mockClient) IsConnectionOpen() bool { return m.connected }

func (m *mockClient) Connect() mqtt.Token {
	if m.neverConnects {
		return &mockToken{complete: false}
	}
	if m.connectError != nil {
		return &mockToken{err: m.connectError, complete: true}
	}
	m.connected = true
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &mockToken{complete: true}
}

func (m *mockClient) Disconnect(_ uint) {
	m.connected = false
	m.disconnectCalls++
}

func (*mockClient) Publish(_ string, _ byte, _ bool, _ any) mqtt.Token {
	return &mockToken{complete: true}
}

func (m *mockClient) Subscribe(topic string, _ byte, callback mqtt.MessageHandler) mqtt.Token {
	if m.subscribeError != nil {
		return &mockToken{err: m.subscribeError, complete: true}
	}
	m.subscribedTopic = topic
	m.handler = callback
	return &mockToken{complete: true}
}

func (*mockClient) SubscribeMultiple(_ map[string]byte, _ mqtt.MessageHandler) mqtt.Token {
	return &mockToken{complete: true}
}

func (*mockClient) Unsubscribe(_ ...string) mqtt.Token {
	return &mockToken{complete: true}
}

func (m *mockClient) AddRoute(_ string, callback mqtt.MessageHandler) {
	m.handler = callback
}

func (*mockClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

type mockToken struct {
	err      error
	complete bool
}

func (*mockToken) Wait() bool { return true }

func (t *mockToken) WaitTimeout(_ time.Duration) bool { return t.complete }

func (*mockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (t *mockToken) Error() error { return t.err }

type mockMessage struct {
	topic   string
	payload []byte
}

func (*mockMessage) Duplicate() bool   { return false }
func (*mockMessage) Qos() byte         { return 1 }
func (*mockMessage) Retained() bool    { return false }
func (m *mockMessage) Topic() string   { return m.topic }
func (*mockMessage) MessageID() uint16 { return 1 }
func (m *mockMessage) Payload() []byte { return m.payload }
func (*mockMessage) Ack()              {}
