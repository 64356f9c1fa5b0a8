// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package hclutil

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// TraversalKey generates a stable, canonical string representation for an hcl.Traversal,
// suitable for use as a map key and in log output.
func TraversalKey(t hcl.Traversal) string {
	// e.g., instance.main.window[0]
	return strings.TrimSpace(string(hclwrite.TokensForTraversal(t).Bytes()))
}
