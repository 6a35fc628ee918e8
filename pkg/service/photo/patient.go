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

package photo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoPatient = errors.New("response has no patient fields")

// PatientInfo is the lookup server's answer to an uploaded photo.
type PatientInfo struct {
	FirstName       string `json:"f_name"`
	LastName        string `json:"l_name"`
	LastCheckupDate string `json:"last_checkup_date"`
	LastCheckupTime string `json:"last_checkup_time"`
}

func ParsePatientInfo(body []byte) (PatientInfo, error) {
	var info PatientInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return PatientInfo{}, fmt.Errorf("decode patient info: %w", err)
	}
	if len(info.Lines()) == 0 {
		return PatientInfo{}, ErrNoPatient
	}
	return info, nil
}

// Lines is the patient card as drawn on the panel, one field per line.
// Blank fields are skipped.
func (p PatientInfo) Lines() []string {
	fields := []string{p.FirstName, p.LastName, p.LastCheckupDate, p.LastCheckupTime}
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			lines = append(lines, f)
		}
	}
	return lines
}
