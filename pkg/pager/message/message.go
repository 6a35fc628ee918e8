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

// Package message defines the fixed-capacity pager message record that
// travels from the radio, through the queue, to the display.
package message

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxLen is the number of text bytes a Record can hold. Longer payloads are
// truncated on a UTF-8 boundary.
const MaxLen = 256

// Kind tags the clinical meaning of a page. Values match the codes used by
// the paging system so they can be logged and compared numerically.
type Kind uint8

const (
	KindBasic       Kind = 0
	KindCodeBlack   Kind = 10
	KindCodeBlue    Kind = 11
	KindCodeRed     Kind = 12
	KindAttendRoom  Kind = 20
	KindPatientCare Kind = 21
	KindInvalid     Kind = 99
)

var kindNames = map[Kind]string{
	KindBasic:       "BASIC",
	KindCodeBlack:   "CODE_BLACK",
	KindCodeBlue:    "CODE_BLUE",
	KindCodeRed:     "CODE_RED",
	KindAttendRoom:  "ATTEND_ROOM",
	KindPatientCare: "PATIENT_CARE",
	KindInvalid:     "INVALID",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "INVALID"
}

// Label is the short tag drawn in the heading row while a message is shown.
// Basic pages have no label.
func (k Kind) Label() string {
	switch k {
	case KindBasic:
		return ""
	case KindCodeBlack:
		return "BLACK"
	case KindCodeBlue:
		return "BLUE"
	case KindCodeRed:
		return "RED"
	case KindAttendRoom:
		return "ROOM"
	case KindPatientCare:
		return "CARE"
	default:
		return "??"
	}
}

// ParseKind looks up a tag name such as "code_blue". Unknown names map to
// KindInvalid.
func ParseKind(name string) Kind {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == upper {
			return k
		}
	}
	return KindInvalid
}

// Record is a single received page. It is a value type: copying a Record
// copies its text, so the queue and the display never share buffers.
type Record struct {
	Received time.Time
	text     [MaxLen]byte
	Address  uint32
	length   uint16
	Kind     Kind
}

// New builds a Record from a raw radio payload. A leading "[TAG] " sets the
// kind and is stripped. The second result reports whether the text had to be
// cut to fit.
func New(payload []byte) (Record, bool) {
	var r Record
	kind, body := splitKind(payload)
	r.Kind = kind

	cut := len(body) > MaxLen
	if cut {
		body = body[:truncateAt(body, MaxLen)]
	}
	r.length = uint16(copy(r.text[:], body)) //nolint:gosec // bounded by MaxLen
	return r, cut
}

// FromString is New for callers that already hold text.
func FromString(s string) (Record, bool) {
	return New([]byte(s))
}

// Text returns a copy of the record's text.
func (r *Record) Text() string {
	return string(r.text[:r.length])
}

// Len is the stored text length in bytes.
func (r *Record) Len() int {
	return int(r.length)
}

func (r *Record) IsEmpty() bool {
	return r.length == 0
}

func splitKind(payload []byte) (Kind, []byte) {
	if len(payload) < 3 || payload[0] != '[' {
		return KindBasic, payload
	}
	end := -1
	for i := 1; i < len(payload) && i < 32; i++ {
		if payload[i] == ']' {
			end = i
			break
		}
	}
	if end < 2 {
		return KindBasic, payload
	}
	kind := ParseKind(string(payload[1:end]))
	body := payload[end+1:]
	if len(body) > 0 && body[0] == ' ' {
		body = body[1:]
	}
	return kind, body
}

// truncateAt returns the largest cut point <= limit that doesn't split a
// multi-byte rune.
// TrimPartialRune drops an incomplete UTF-8 sequence left at the end of b by
// a byte-counted copy.
func TrimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return b
		}
		return b[:i]
	}
	return b
}

func truncateAt(b []byte, limit int) int {
	cut := limit
	for cut > 0 && cut < len(b) && !utf8.RuneStart(b[cut]) {
		cut--
	}
	return cut
}
