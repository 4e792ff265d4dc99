// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package mapper

// This file contains the reference query semantics shared by the
// bundled backends.  None of them push filters down into storage;
// they load a resource's records and run Select over them.

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrBadQuery is returned from Select when some part of a query cannot
// be interpreted, for instance a "where" value that is still a string
// because it was not valid JSON.
type ErrBadQuery struct {
	Key    string
	Reason string
}

func (err ErrBadQuery) Error() string {
	return fmt.Sprintf("Invalid %q in query: %v", err.Key, err.Reason)
}

// reservedKeys are query keys that are not shorthand equality filters.
var reservedKeys = map[string]bool{
	"where":   true,
	"orderBy": true,
	"sort":    true,
	"limit":   true,
	"offset":  true,
	"skip":    true,
}

// Select filters, sorts, and pages records according to query.  The
// input slice is not modified.  The result is never nil.
func Select(records []Record, query Query) ([]Record, error) {
	result := make([]Record, 0, len(records))
	for _, record := range records {
		ok, err := Matches(record, query)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, record)
		}
	}

	keys, err := sortKeys(query["orderBy"])
	if err != nil {
		return nil, err
	}
	if len(keys) > 0 {
		sort.SliceStable(result, func(i, j int) bool {
			return lessRecord(result[i], result[j], keys)
		})
	}

	offset, err := queryCount(query, "offset")
	if err == nil && offset == 0 {
		offset, err = queryCount(query, "skip")
	}
	if err != nil {
		return nil, err
	}
	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]

	limit, err := queryCount(query, "limit")
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// Matches determines whether a single record satisfies the filter
// part of query (its "where" clause and shorthand equality keys).
func Matches(record Record, query Query) (bool, error) {
	for key, value := range query {
		if reservedKeys[key] {
			continue
		}
		if !looseEqual(record[key], value) {
			return false, nil
		}
	}

	where, present := query["where"]
	if !present || where == nil {
		return true, nil
	}
	clauses, err := AsRecord(where)
	if err != nil {
		return false, ErrBadQuery{Key: "where", Reason: "not an object"}
	}
	for field, condition := range clauses {
		ok, err := matchCondition(record[field], condition)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchCondition(value, condition interface{}) (bool, error) {
	operators, isMap := condition.(map[string]interface{})
	if !isMap || len(operators) == 0 {
		return looseEqual(value, condition), nil
	}
	for op := range operators {
		if !knownOperators[op] {
			// A nested object, not an operator map
			return looseEqual(value, condition), nil
		}
	}
	for op, operand := range operators {
		ok, err := applyOperator(op, value, operand)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

var knownOperators = map[string]bool{
	"==": true, "===": true, "!=": true, "!==": true,
	">": true, ">=": true, "<": true, "<=": true,
	"in": true, "notIn": true, "contains": true, "like": true,
}

func applyOperator(op string, value, operand interface{}) (bool, error) {
	switch op {
	case "==":
		return looseEqual(value, operand), nil
	case "===":
		return strictEqual(value, operand), nil
	case "!=":
		return !looseEqual(value, operand), nil
	case "!==":
		return !strictEqual(value, operand), nil
	case ">", ">=", "<", "<=":
		cmp, ok := compare(value, operand)
		if !ok {
			return false, nil
		}
		switch op {
		case ">":
			return cmp > 0, nil
		case ">=":
			return cmp >= 0, nil
		case "<":
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}
	case "in":
		return contains(operand, value), nil
	case "notIn":
		return !contains(operand, value), nil
	case "contains":
		if s, isString := value.(string); isString {
			return strings.Contains(s, fmt.Sprint(operand)), nil
		}
		return contains(value, operand), nil
	case "like":
		pattern, isString := operand.(string)
		if !isString {
			return false, ErrBadQuery{Key: "where", Reason: "like operand must be a string"}
		}
		s, isString := value.(string)
		if !isString {
			return false, nil
		}
		return likeToRegexp(pattern).MatchString(s), nil
	}
	return false, ErrBadQuery{Key: "where", Reason: "unknown operator " + op}
}

// likeToRegexp converts a SQL LIKE pattern to an anchored regexp.
func likeToRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, c := range pattern {
		switch c {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

func contains(list, value interface{}) bool {
	v := reflect.ValueOf(list)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return looseEqual(list, value)
	}
	for i := 0; i < v.Len(); i++ {
		if looseEqual(v.Index(i).Interface(), value) {
			return true
		}
	}
	return false
}

// looseEqual compares two values the way a query string would see
// them: 1, 1.0 and "1" are all equal.
func looseEqual(a, b interface{}) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// strictEqual compares values without string coercion, but still
// treats numbers of different Go types as equal.
func strictEqual(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// compare orders two values.  Numbers compare numerically (numeric
// strings count when the other side is a number), strings compare
// lexically, and nil sorts before everything.  The second return is
// false if the values cannot be ordered.
func compare(a, b interface{}) (int, bool) {
	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil:
		return -1, true
	case b == nil:
		return 1, true
	}
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && !bNum {
		if s, isString := b.(string); isString {
			fb, bNum = parseFloat(s)
		}
	}
	if bNum && !aNum {
		if s, isString := a.(string); isString {
			fa, aNum = parseFloat(s)
		}
	}
	if aNum && bNum {
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		default:
			return 0, true
		}
	}
	sa, aString := a.(string)
	sb, bString := b.(string)
	if aString && bString {
		return strings.Compare(sa, sb), true
	}
	return 0, false
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

type sortKey struct {
	field      string
	descending bool
}

// sortKeys normalizes an orderBy value.  A clause may be a bare field
// name, a [field, direction] pair, or a {field: direction} object.
func sortKeys(orderBy interface{}) ([]sortKey, error) {
	if orderBy == nil {
		return nil, nil
	}
	var clauses []interface{}
	switch v := orderBy.(type) {
	case string:
		if v == "" {
			return nil, nil
		}
		clauses = []interface{}{v}
	case []interface{}:
		clauses = v
	case []string:
		// A bare pair of strings is a single [field, direction]
		// clause, as produced by hand-built queries.
		if len(v) == 2 && isDirection(v[1]) {
			return []sortKey{{field: v[0], descending: isDescending(v[1])}}, nil
		}
		for _, s := range v {
			clauses = append(clauses, s)
		}
	default:
		return nil, ErrBadQuery{Key: "orderBy", Reason: "not a list"}
	}

	var keys []sortKey
	for _, clause := range clauses {
		switch c := clause.(type) {
		case string:
			keys = append(keys, sortKey{field: c})
		case []interface{}:
			if len(c) == 0 || len(c) > 2 {
				return nil, ErrBadQuery{Key: "orderBy", Reason: "clause must be [field, direction]"}
			}
			key := sortKey{field: fmt.Sprint(c[0])}
			if len(c) == 2 {
				key.descending = isDescending(fmt.Sprint(c[1]))
			}
			keys = append(keys, key)
		case []string:
			if len(c) == 0 || len(c) > 2 {
				return nil, ErrBadQuery{Key: "orderBy", Reason: "clause must be [field, direction]"}
			}
			key := sortKey{field: c[0]}
			if len(c) == 2 {
				key.descending = isDescending(c[1])
			}
			keys = append(keys, key)
		case map[string]interface{}:
			fields := make([]string, 0, len(c))
			for field := range c {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			for _, field := range fields {
				keys = append(keys, sortKey{
					field:      field,
					descending: isDescending(fmt.Sprint(c[field])),
				})
			}
		default:
			return nil, ErrBadQuery{Key: "orderBy", Reason: fmt.Sprintf("bad clause %v", clause)}
		}
	}
	return keys, nil
}

func isDirection(s string) bool {
	switch strings.ToUpper(s) {
	case "ASC", "DESC":
		return true
	}
	return false
}

func isDescending(s string) bool {
	return strings.ToUpper(s) == "DESC"
}

func lessRecord(a, b Record, keys []sortKey) bool {
	for _, key := range keys {
		cmp, ok := compare(a[key.field], b[key.field])
		if !ok {
			cmp = strings.Compare(fmt.Sprint(a[key.field]), fmt.Sprint(b[key.field]))
		}
		if cmp == 0 {
			continue
		}
		if key.descending {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

// queryCount is queryInt for values that cannot be negative.
func queryCount(query Query, key string) (int, error) {
	n, err := queryInt(query, key)
	if err == nil && n < 0 {
		return 0, ErrBadQuery{Key: key, Reason: "negative"}
	}
	return n, err
}

func queryInt(query Query, key string) (int, error) {
	value, present := query[key]
	if !present || value == nil {
		return 0, nil
	}
	if f, ok := toFloat(value); ok {
		return int(f), nil
	}
	if s, ok := value.(string); ok {
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, ErrBadQuery{Key: key, Reason: err.Error()}
		}
		return n, nil
	}
	return 0, ErrBadQuery{Key: key, Reason: "not a number"}
}
