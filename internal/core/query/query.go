// Package query turns list-endpoint query strings into a storage-neutral
// Spec: filter conditions, sort keys, field projection and a page window.
//
// Every stage takes a Spec by value and returns a new one, so partially built
// specs can be shared without aliasing.
package query

import (
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
	DefaultSort  = "-createdAt"

	// MaxLimit caps the page size a client can ask for.
	MaxLimit = 1000
)

// Reserved keys steer the pipeline and never become filter conditions.
var reserved = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
}

// Operator is a comparison applied by a filter condition.
type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

var bracketKey = regexp.MustCompile(`^([^\[\]]+)\[([^\[\]]+)\]$`)

// Condition compares Field against Value. Value is kept as sent; stores cast
// it to the field's native kind.
type Condition struct {
	Field string
	Op    Operator
	Value string
}

// SortKey orders by Field, descending when Desc is set.
type SortKey struct {
	Field string
	Desc  bool
}

// Spec is the executable description of a list query.
type Spec struct {
	Conditions []Condition
	SortKeys   []SortKey
	Fields     []string
	Page       int
	Limit      int
}

// New returns the spec applied when a request carries no parameters.
func New() Spec {
	return Spec{
		SortKeys: parseSort(DefaultSort),
		Page:     DefaultPage,
		Limit:    DefaultLimit,
	}
}

// Skip is the number of matching records before the requested page. It
// saturates at math.MaxInt64 so a huge page selects an empty window.
func (s Spec) Skip() int64 {
	if s.Page < 1 || s.Limit < 1 {
		return 0
	}
	page, limit := int64(s.Page-1), int64(s.Limit)
	if page > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return page * limit
}

// Parse runs every stage in the fixed order filter, sort, fields, paginate.
func Parse(params url.Values) Spec {
	s := New()
	s = Filter(s, params)
	s = Sort(s, params.Get("sort"))
	s = Project(s, params.Get("fields"))
	s = Paginate(s, params.Get("page"), params.Get("limit"))
	return s
}

// Filter derives conditions from every non-reserved key. A bracketed sub-key
// selects a comparison operator; keys with an unknown operator are ignored.
// Conditions are ordered by key so equal inputs yield equal specs.
func Filter(s Spec, params url.Values) Spec {
	keys := make([]string, 0, len(params))
	for k := range params {
		if _, skip := reserved[k]; skip {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]Condition, 0, len(keys))
	for _, k := range keys {
		field, op, ok := splitKey(k)
		if !ok {
			continue
		}
		for _, v := range params[k] {
			conds = append(conds, Condition{Field: field, Op: op, Value: v})
		}
	}

	out := s.clone()
	out.Conditions = conds
	return out
}

func splitKey(key string) (string, Operator, bool) {
	m := bracketKey.FindStringSubmatch(key)
	if m == nil {
		if strings.ContainsAny(key, "[]") || key == "" {
			return "", "", false
		}
		return key, OpEq, true
	}
	switch op := Operator(m[2]); op {
	case OpGt, OpGte, OpLt, OpLte:
		return m[1], op, true
	default:
		return "", "", false
	}
}

// Sort parses a comma separated key list; a leading '-' means descending.
// An empty value selects DefaultSort.
func Sort(s Spec, raw string) Spec {
	keys := parseSort(raw)
	if len(keys) == 0 {
		keys = parseSort(DefaultSort)
	}
	out := s.clone()
	out.SortKeys = keys
	return out
}

func parseSort(raw string) []SortKey {
	var keys []SortKey
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")
		if field == "" {
			continue
		}
		keys = append(keys, SortKey{Field: field, Desc: desc})
	}
	return keys
}

// Project selects the fields to return. An empty value leaves the store's
// default projection in place.
func Project(s Spec, raw string) Spec {
	seen := make(map[string]struct{})
	var fields []string
	for _, part := range strings.Split(raw, ",") {
		f := strings.TrimSpace(part)
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}
	out := s.clone()
	out.Fields = fields
	return out
}

// Paginate sets the page window. Missing, malformed or non-positive values
// fall back to the defaults; limit is capped at MaxLimit.
func Paginate(s Spec, page, limit string) Spec {
	out := s.clone()
	out.Page = positiveOr(page, DefaultPage)
	out.Limit = min(positiveOr(limit, DefaultLimit), MaxLimit)
	return out
}

func positiveOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (s Spec) clone() Spec {
	out := s
	if s.Conditions != nil {
		out.Conditions = append([]Condition(nil), s.Conditions...)
	}
	if s.SortKeys != nil {
		out.SortKeys = append([]SortKey(nil), s.SortKeys...)
	}
	if s.Fields != nil {
		out.Fields = append([]string(nil), s.Fields...)
	}
	return out
}
