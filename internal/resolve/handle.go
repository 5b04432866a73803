// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import "strings"

// Handle is a query split into display-name prefix and discriminator.
type Handle struct {
	Prefix string
	Code   string
}

// String renders the handle as "Prefix#Code".
func (h Handle) String() string {
	if h.Code == "" {
		return h.Prefix
	}
	return h.Prefix + "#" + h.Code
}

// SplitHandle splits query on the first '#'. code is empty when the query
// has no '#'.
func SplitHandle(query string) (prefix, code string) {
	prefix, code, _ = strings.Cut(query, "#")
	return prefix, code
}

// NormalizeCode strips leading zeros so "0042" compares equal to the
// numeric 42 the directory returns. An all-zero code normalizes to "".
func NormalizeCode(code string) string {
	return strings.TrimLeft(code, "0")
}

// ParseHandle splits and normalizes query, failing with an input error
// when the prefix or the normalized code is missing.
func ParseHandle(query string) (Handle, error) {
	prefix, code := SplitHandle(query)
	code = NormalizeCode(code)
	if prefix == "" || code == "" {
		return Handle{}, inputError(msgInvalidFormat)
	}
	return Handle{Prefix: prefix, Code: code}, nil
}
