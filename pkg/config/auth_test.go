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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAuthFromData(t *testing.T) {
	t.Parallel()

	data := []byte(`
[creds."https://records.example.org/upload"]
bearer = "abc"

[creds."broker.local:1883"]
username = "pager"
password = "secret"
`)
	creds, err := LoadAuthFromData(data)
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, "abc", creds["https://records.example.org/upload"].Bearer)
	assert.Equal(t, "pager", creds["broker.local:1883"].Username)
}

func TestLoadAuthFromData_Empty(t *testing.T) {
	t.Parallel()

	creds, err := LoadAuthFromData(nil)
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestLoadAuthFromData_Invalid(t *testing.T) {
	t.Parallel()

	_, err := LoadAuthFromData([]byte("[creds"))
	require.Error(t, err)
}

func TestLookupAuth(t *testing.T) {
	t.Parallel()

	creds := map[string]CredentialEntry{
		"https://records.example.org/api": {Bearer: "records"},
		"mqtt://broker.local:1883":        {Username: "mqtt-user"},
		"relay.local:1883":                {Username: "relay-user"},
	}

	tests := []struct {
		name     string
		url      string
		wantUser string
		wantTok  string
		wantNil  bool
	}{
		{name: "path prefix", url: "https://records.example.org/api/upload", wantTok: "records"},
		{name: "path outside prefix", url: "https://records.example.org/other", wantNil: true},
		{name: "tcp alias of mqtt", url: "tcp://broker.local:1883", wantUser: "mqtt-user"},
		{name: "schemeless host", url: "ssl://relay.local:1883", wantUser: "relay-user"},
		{name: "unknown host", url: "https://elsewhere.org", wantNil: true},
		{name: "unparseable", url: "://bad", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := LookupAuth(creds, tt.url)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantUser, got.Username)
			assert.Equal(t, tt.wantTok, got.Bearer)
		})
	}
}
