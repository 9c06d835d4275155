// Package filterlang is a toy filter-condition compiler: it parses a
// small "field OP value [AND|OR field OP value ...]" grammar over
// per-slot metadata and produces a vectorindex.FilterMask. It exists
// only to exercise internal/vectorindex's BruteForceSearcher and
// PostFilterSearcher in tests and the CLI's --filter demo flag; the
// production filter-condition compiler is an external collaborator this
// repository declares but does not implement (see pkg/procedure).
package filterlang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/minigu-db/vectorindex/internal/vectorindex"
)

// Metadata is the per-slot attribute bag a condition is matched against.
type Metadata map[string]interface{}

// Operator is a single comparison's relation.
type Operator string

const (
	OpEq  Operator = "eq"
	OpNe  Operator = "ne"
	OpGt  Operator = "gt"
	OpLt  Operator = "lt"
	OpGte Operator = "gte"
	OpLte Operator = "lte"
)

// Condition is one "field OP value" clause.
type Condition struct {
	Field    string
	Operator Operator
	Value    interface{}
}

// Match reports whether metadata satisfies the condition. A missing
// field never matches, mirroring the comparison-filter convention in
// the broader example pack this package is styled after.
func (c Condition) Match(metadata Metadata) bool {
	fieldValue, ok := metadata[c.Field]
	if !ok {
		return false
	}
	switch c.Operator {
	case OpEq:
		return equals(fieldValue, c.Value)
	case OpNe:
		return !equals(fieldValue, c.Value)
	case OpGt:
		return compare(fieldValue, c.Value) > 0
	case OpLt:
		return compare(fieldValue, c.Value) < 0
	case OpGte:
		return compare(fieldValue, c.Value) >= 0
	case OpLte:
		return compare(fieldValue, c.Value) <= 0
	default:
		return false
	}
}

// Expression is a flat conjunction or disjunction of conditions — the
// grammar does not nest, which is deliberately as far as a demo compiler
// needs to go.
type Expression struct {
	Conditions []Condition
	Combinator string // "AND" or "OR"; ignored if len(Conditions) == 1
}

// Match evaluates the expression against metadata.
func (e Expression) Match(metadata Metadata) bool {
	if len(e.Conditions) == 0 {
		return true
	}
	if strings.EqualFold(e.Combinator, "OR") {
		for _, c := range e.Conditions {
			if c.Match(metadata) {
				return true
			}
		}
		return false
	}
	for _, c := range e.Conditions {
		if !c.Match(metadata) {
			return false
		}
	}
	return true
}

// Parse compiles a raw condition string such as
// `score gte 0.5 AND category eq "premium"` into an Expression. It
// rejects mixed AND/OR at the same level and unknown operators.
func Parse(raw string) (Expression, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Expression{}, nil
	}

	if strings.Contains(raw, " AND ") && strings.Contains(raw, " OR ") {
		return Expression{}, fmt.Errorf("filterlang: mixed AND/OR in %q is not supported", raw)
	}

	combinator := ""
	var parts []string
	switch {
	case strings.Contains(raw, " AND "):
		combinator = "AND"
		parts = strings.Split(raw, " AND ")
	case strings.Contains(raw, " OR "):
		combinator = "OR"
		parts = strings.Split(raw, " OR ")
	default:
		parts = []string{raw}
	}

	conditions := make([]Condition, 0, len(parts))
	for _, p := range parts {
		cond, err := parseCondition(strings.TrimSpace(p))
		if err != nil {
			return Expression{}, err
		}
		conditions = append(conditions, cond)
	}
	return Expression{Conditions: conditions, Combinator: combinator}, nil
}

func parseCondition(clause string) (Condition, error) {
	fields := strings.Fields(clause)
	if len(fields) < 3 {
		return Condition{}, fmt.Errorf("filterlang: malformed condition %q", clause)
	}
	field := fields[0]
	op := Operator(fields[1])
	switch op {
	case OpEq, OpNe, OpGt, OpLt, OpGte, OpLte:
	default:
		return Condition{}, fmt.Errorf("filterlang: unknown operator %q", fields[1])
	}
	valueStr := strings.Join(fields[2:], " ")
	return Condition{Field: field, Operator: op, Value: parseValue(valueStr)}, nil
}

// parseValue converts a literal to a number or bool where possible, and
// trims surrounding quotes for strings.
func parseValue(s string) interface{} {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return strings.Trim(s, `"'`)
}

// Compile parses raw and evaluates it against every slot's metadata,
// returning a vectorindex.BitsetMask over the slots that match.
func Compile(raw string, metadataBySlot []Metadata) (vectorindex.FilterMask, error) {
	expr, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	candidates := make([]vectorindex.VectorId, 0, len(metadataBySlot))
	for slot, md := range metadataBySlot {
		if expr.Match(md) {
			candidates = append(candidates, vectorindex.VectorId(slot))
		}
	}
	return vectorindex.NewBitsetMask(len(metadataBySlot), candidates), nil
}

func equals(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	if bs, ok := b.(string); ok {
		as, ok := a.(string)
		return ok && as == bs
	}
	return toFloat64(a) == toFloat64(b)
}

func compare(a, b interface{}) int {
	an, bn := toFloat64(a), toFloat64(b)
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return 0
	}
}
