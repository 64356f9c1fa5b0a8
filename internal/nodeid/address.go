// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package nodeid

import (
	"slices"
	"strconv"
	"strings"
)

// String serializes the Address into its canonical path string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.HasIndex() {
			sb.WriteRune('[')
			sb.WriteString(strconv.Itoa(segment.Index))
			sb.WriteRune(']')
		}
	}

	return sb.String()
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return slices.Equal(a.Path, other.Path)
}
