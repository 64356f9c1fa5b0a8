// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package typesys

import "sort"

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
