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
	"errors"
	"testing"

	"github.com/lazeeeer/MD-Vision/pkg/radio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		wantBroker string
		wantTopic  string
		wantErr    bool
	}{
		{name: "bare", path: "localhost:1883/pager/inbox", wantBroker: "tcp://localhost:1883", wantTopic: "pager/inbox"},
		{name: "mqtt scheme", path: "mqtt://10.0.0.2:1883/pages", wantBroker: "tcp://10.0.0.2:1883", wantTopic: "pages"},
		{name: "tls", path: "mqtts://broker.example.org:8883/ward/3", wantBroker: "ssl://broker.example.org:8883", wantTopic: "ward/3"},
		{name: "empty", path: "", wantErr: true},
		{name: "no topic", path: "localhost:1883", wantErr: true},
		{name: "no host", path: "mqtt:///topic", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			broker, topic, err := ParsePath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBroker, broker)
			assert.Equal(t, tt.wantTopic, topic)
		})
	}
}

func TestDecodePayload(t *testing.T) {
	t.Parallel()

	page, err := DecodePayload([]byte("  Room 9 assist \n"))
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, "Room 9 assist", string(page.Payload))

	page, err = DecodePayload([]byte(`{"address":1234567,"text":"[CODE_RED] ER"}`))
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, "[CODE_RED] ER", string(page.Payload))
	assert.Equal(t, uint32(1234567), page.Address)

	page, err = DecodePayload([]byte(`{"address":5}`))
	require.NoError(t, err)
	assert.Nil(t, page)

	page, err = DecodePayload(nil)
	require.NoError(t, err)
	assert.Nil(t, page)

	_, err = DecodePayload([]byte(`{"text":`))
	require.Error(t, err)
}

func TestReceiver_OpenSubscribesAndDelivers(t *testing.T) {
	t.Parallel()

	client := &mockClient{}
	r := NewReceiver(WithClientFactory(client.factory))

	require.NoError(t, r.Open("localhost:1883/pager/inbox"))
	assert.True(t, r.Connected())
	assert.Equal(t, "pager/inbox", client.subscribedTopic)
	require.NotNil(t, client.handler)

	client.handler(client, &mockMessage{topic: "pager/inbox", payload: []byte("Bed 3 call")})
	client.handler(client, &mockMessage{topic: "pager/inbox", payload: []byte("")})
	client.handler(client, &mockMessage{topic: "pager/inbox", payload: []byte("{bad")})

	assert.Equal(t, 1, r.Available())

	buf := make([]byte, 32)
	res, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "Bed 3 call", string(buf[:res.N]))

	_, err = r.Read(buf)
	require.ErrorIs(t, err, radio.ErrNoMessage)

	require.NoError(t, r.Close())
	assert.Equal(t, 1, client.disconnectCalls)
	assert.False(t, r.Connected())
}

func TestReceiver_OpenFailures(t *testing.T) {
	t.Parallel()

	t.Run("bad path", func(t *testing.T) {
		t.Parallel()
		err := NewReceiver().Open("")
		require.Error(t, err)
	})

	t.Run("connect error", func(t *testing.T) {
		t.Parallel()
		client := &mockClient{connectError: errors.New("refused")}
		r := NewReceiver(WithClientFactory(client.factory))
		err := r.Open("localhost:1883/p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refused")
		assert.Equal(t, 1, client.disconnectCalls)
		assert.False(t, r.Connected())
	})

	t.Run("connect timeout", func(t *testing.T) {
		t.Parallel()
		client := &mockClient{neverConnects: true}
		r := NewReceiver(WithClientFactory(client.factory))
		err := r.Open("localhost:1883/p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
	})
}

func TestNewClientOptions(t *testing.T) {
	t.Parallel()

	opts := NewClientOptions("ssl://broker.example.org:8883")
	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "broker.example.org:8883", opts.Servers[0].Host)
	assert.NotNil(t, opts.TLSConfig)
	assert.True(t, opts.AutoReconnect)
	assert.Contains(t, opts.ClientID, clientIDPrefix)
}
