// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import "strings"

// pageSeparator is the blank line placed between consecutive pages.
const pageSeparator = "\n\n"

// Assemble joins pages, already in final order, into one document. An
// empty input yields "", which callers must treat as nothing to write.
func Assemble(pages []string) string {
	return strings.Join(pages, pageSeparator)
}
