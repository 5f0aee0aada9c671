package backend

import "strings"

// DefaultK is the number of retrieved passages used when k is not positive.
const DefaultK = 10

// Collections that can be used as a retrieval filter.
var Collections = []string{"documentos", "tickets", "soluciones"}

// FilterFor maps a collection name to the filter_metadata sent with a chat
// request. Unknown names, "None" and "todos" search every collection.
func FilterFor(name string) map[string]string {
	name = strings.TrimSpace(name)
	for _, c := range Collections {
		if name == c {
			return map[string]string{"collection": c}
		}
	}
	return map[string]string{}
}

// NormalizeK returns k, or DefaultK when k is below 1.
func NormalizeK(k int) int {
	if k < 1 {
		return DefaultK
	}
	return k
}
