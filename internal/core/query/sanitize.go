package query

import (
	"net/url"
	"strings"
)

// Sanitize drops keys that a document store could read as operators. Keys
// containing '$' are removed along with any value that starts with '$'.
func Sanitize(params url.Values) url.Values {
	out := make(url.Values, len(params))
	for k, vs := range params {
		if strings.Contains(k, "$") {
			continue
		}
		kept := make([]string, 0, len(vs))
		for _, v := range vs {
			if strings.HasPrefix(v, "$") {
				continue
			}
			kept = append(kept, v)
		}
		if len(kept) > 0 {
			out[k] = kept
		}
	}
	return out
}
