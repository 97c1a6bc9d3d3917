// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import "strings"

// NormalizeCreator converts a creator name to "Last, First [Middle]"
// form. Names already containing a comma are assumed to be in that form
// and are passed through; plain full names are split on the last space,
// with the final token taken as the family name. Single-token names are
// returned as-is.
func NormalizeCreator(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, ",") {
		return name
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return name
	}
	family := name[idx+1:]
	given := strings.Join(strings.Fields(name[:idx]), " ")
	return family + ", " + given
}
