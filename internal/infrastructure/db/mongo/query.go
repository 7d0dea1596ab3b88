package mongo

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/natours/booking-api/internal/core/query"
)

// FieldKind tells the translator how to cast query-string values.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindBool
	KindDate
)

// Schema describes a collection to the query translator.
type Schema struct {
	// Kinds maps field paths to their stored kind. Unlisted fields are strings.
	Kinds map[string]FieldKind
	// Hidden fields are never returned by list queries.
	Hidden []string
	// Scope is ANDed into every lookup, e.g. to hide soft-deleted records.
	Scope bson.M
	// SoftDelete names a boolean field set to false instead of removing the
	// document. Empty means hard delete.
	SoftDelete string
}

var operators = map[query.Operator]string{
	query.OpGt:  "$gt",
	query.OpGte: "$gte",
	query.OpLt:  "$lt",
	query.OpLte: "$lte",
}

// buildFilter combines the schema scope, the parent pre-filter and the spec's
// conditions into a single conjunction.
func buildFilter(spec query.Spec, where map[string]string, schema Schema) bson.M {
	var clauses []bson.M
	if len(schema.Scope) > 0 {
		clauses = append(clauses, schema.Scope)
	}
	for field, value := range where {
		clauses = append(clauses, bson.M{field: value})
	}
	for _, c := range spec.Conditions {
		v := castValue(schema.Kinds[c.Field], c.Value)
		if op, ok := operators[c.Op]; ok {
			clauses = append(clauses, bson.M{c.Field: bson.M{op: v}})
			continue
		}
		clauses = append(clauses, bson.M{c.Field: v})
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		return bson.M{"$and": clauses}
	}
}

// buildFindOptions maps sort, projection and window onto driver options. An
// _id tie-breaker keeps pages disjoint when sort keys collide.
func buildFindOptions(spec query.Spec, schema Schema) *options.FindOptions {
	sort := bson.D{}
	hasID := false
	for _, k := range spec.SortKeys {
		dir := 1
		if k.Desc {
			dir = -1
		}
		if k.Field == "_id" {
			hasID = true
		}
		sort = append(sort, bson.E{Key: k.Field, Value: dir})
	}
	if !hasID {
		sort = append(sort, bson.E{Key: "_id", Value: 1})
	}

	return options.Find().
		SetSort(sort).
		SetProjection(buildProjection(spec.Fields, schema)).
		SetSkip(spec.Skip()).
		SetLimit(int64(spec.Limit))
}

func buildProjection(fields []string, schema Schema) bson.D {
	hidden := make(map[string]struct{}, len(schema.Hidden)+1)
	hidden["__v"] = struct{}{}
	for _, h := range schema.Hidden {
		hidden[h] = struct{}{}
	}

	include := bson.D{}
	for _, f := range fields {
		if _, ok := hidden[f]; ok {
			continue
		}
		include = append(include, bson.E{Key: f, Value: 1})
	}
	if len(include) > 0 {
		return include
	}

	exclude := bson.D{{Key: "__v", Value: 0}}
	for _, h := range schema.Hidden {
		exclude = append(exclude, bson.E{Key: h, Value: 0})
	}
	return exclude
}

// castValue converts raw to kind. Values that do not parse stay strings and
// simply fail to match.
func castValue(kind FieldKind, raw string) any {
	switch kind {
	case KindNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case KindBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	case KindDate:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC()
			}
		}
	}
	return raw
}
