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
	"fmt"
	"net/url"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// CredentialEntry holds credentials for the upload server or MQTT broker.
type CredentialEntry struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	Bearer   string `toml:"bearer"`
}

type authFile struct {
	Creds map[string]CredentialEntry `toml:"creds"`
}

// tcp and ssl are what paho hands back for mqtt and mqtts brokers.
var schemeAliases = map[string]string{
	"tcp": "mqtt",
	"ssl": "mqtts",
}

// LoadAuthFromData parses an auth.toml of the form:
//
//	[creds."https://records.example.org/upload"]
//	bearer = "..."
func LoadAuthFromData(data []byte) (map[string]CredentialEntry, error) {
	var f authFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse auth data: %w", err)
	}
	if f.Creds == nil {
		f.Creds = make(map[string]CredentialEntry)
	}
	return f.Creds, nil
}

func normalizeScheme(scheme string) string {
	lower := strings.ToLower(scheme)
	if canonical, ok := schemeAliases[lower]; ok {
		return canonical
	}
	return lower
}

// LookupAuth finds the credentials for reqURL. Entries keyed by a full URL
// match on scheme (aliases allowed), host and path prefix; entries keyed by a
// bare host:port match any scheme.
func LookupAuth(creds map[string]CredentialEntry, reqURL string) *CredentialEntry {
	if len(creds) == 0 {
		return nil
	}

	u, err := url.Parse(reqURL)
	if err != nil {
		log.Warn().Msgf("invalid auth request url: %s", reqURL)
		return nil
	}

	var hostOnly *CredentialEntry
	for k, v := range creds {
		if !strings.Contains(k, "://") {
			if strings.EqualFold(k, u.Host) {
				hostOnly = &v
			}
			continue
		}

		defURL, err := url.Parse(k)
		if err != nil {
			log.Error().Msgf("invalid auth config url: %s", k)
			continue
		}
		if normalizeScheme(defURL.Scheme) == normalizeScheme(u.Scheme) &&
			strings.EqualFold(defURL.Host, u.Host) &&
			strings.HasPrefix(u.Path, defURL.Path) {
			return &v
		}
	}

	return hostOnly
}
