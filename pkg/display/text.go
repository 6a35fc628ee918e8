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

package display

import "strings"

// SplitLines cuts text into consecutive chunks of budget characters. Every
// line but the last is exactly budget long, so the result has
// ceil(len/budget) lines and joining them gives back the input.
func SplitLines(text string, budget int) []string {
	if budget < 1 || text == "" {
		return nil
	}
	runes := []rune(text)
	lines := make([]string, 0, (len(runes)+budget-1)/budget)
	for start := 0; start < len(runes); start += budget {
		end := min(start+budget, len(runes))
		lines = append(lines, string(runes[start:end]))
	}
	return lines
}

// WrapWords breaks text at spaces so words aren't split across lines. Words
// longer than budget are hard-split.
func WrapWords(text string, budget int) []string {
	if budget < 1 {
		return nil
	}

	var lines []string
	var cur []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > budget {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = cur[:0]
			}
			lines = append(lines, string(w[:budget]))
			w = w[budget:]
		}
		if len(w) == 0 {
			continue
		}
		switch {
		case len(cur) == 0:
			cur = append(cur, w...)
		case len(cur)+1+len(w) <= budget:
			cur = append(cur, ' ')
			cur = append(cur, w...)
		default:
			lines = append(lines, string(cur))
			cur = append(cur[:0], w...)
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
