package expr

import (
	"fmt"
	"strings"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is the in-memory attribute map an expression is evaluated against.
type Item = map[string]ddbtypes.AttributeValue

// SubstitutionContext carries the ExpressionAttributeNames/Values maps used to
// resolve #name and :value placeholders.
type SubstitutionContext struct {
	Names  map[string]string
	Values map[string]ddbtypes.AttributeValue
}

// resolveName turns a path element's raw name into the real attribute name,
// substituting it if it was given as a #placeholder.
func (c *SubstitutionContext) resolveName(raw string) (string, error) {
	if strings.HasPrefix(raw, "#") {
		name, ok := c.Names[raw]
		if !ok {
			return "", fmt.Errorf("no value provided for name placeholder %q", raw)
		}
		return name, nil
	}
	return raw, nil
}

// resolvePath walks a Path against item, returning the value found (or
// ok=false if any segment is missing).
func resolvePath(item Item, path Path, ctx *SubstitutionContext) (ddbtypes.AttributeValue, bool, error) {
	if len(path) == 0 {
		return nil, false, fmt.Errorf("empty path")
	}

	first, err := ctx.resolveName(path[0].Name)
	if err != nil {
		return nil, false, err
	}
	cur, ok := item[first]
	if !ok {
		return nil, false, nil
	}

	for _, elem := range path[1:] {
		if elem.IsIndex {
			list, ok := cur.(*ddbtypes.AttributeValueMemberL)
			if !ok || elem.Index < 0 || elem.Index >= len(list.Value) {
				return nil, false, nil
			}
			cur = list.Value[elem.Index]
			continue
		}
		name, err := ctx.resolveName(elem.Name)
		if err != nil {
			return nil, false, err
		}
		m, ok := cur.(*ddbtypes.AttributeValueMemberM)
		if !ok {
			return nil, false, nil
		}
		cur, ok = m.Value[name]
		if !ok {
			return nil, false, nil
		}
	}
	return cur, true, nil
}

// resolveOperand resolves an Operand (placeholder or path) against item.
func resolveOperand(item Item, op Operand, ctx *SubstitutionContext) (ddbtypes.AttributeValue, bool, error) {
	if op.isValue() {
		v, ok := ctx.Values[op.Placeholder]
		if !ok {
			return nil, false, fmt.Errorf("no value provided for value placeholder %q", op.Placeholder)
		}
		return v, true, nil
	}
	return resolvePath(item, op.Path, ctx)
}

// Evaluate evaluates a condition/filter expression AST against item.
func Evaluate(node *Node, item Item, ctx *SubstitutionContext) (bool, error) {
	switch node.Kind {
	case NodeAnd:
		l, err := Evaluate(node.Left, item, ctx)
		if err != nil {
			return false, err
		}
		if !l {
			return false, nil
		}
		return Evaluate(node.Right, item, ctx)

	case NodeOr:
		l, err := Evaluate(node.Left, item, ctx)
		if err != nil {
			return false, err
		}
		if l {
			return true, nil
		}
		return Evaluate(node.Right, item, ctx)

	case NodeNot:
		v, err := Evaluate(node.Operand, item, ctx)
		if err != nil {
			return false, err
		}
		return !v, nil

	case NodeCompare:
		lv, lok, err := resolveOperand(item, node.LHS, ctx)
		if err != nil {
			return false, err
		}
		rv, rok, err := resolveOperand(item, node.RHS, ctx)
		if err != nil {
			return false, err
		}
		if !lok || !rok {
			return false, nil
		}
		cmp := Compare(lv, rv)
		if cmp == -2 {
			return node.CompareOp == OpNe, nil
		}
		switch node.CompareOp {
		case OpEq:
			return cmp == 0, nil
		case OpNe:
			return cmp != 0, nil
		case OpLt:
			return cmp < 0, nil
		case OpLe:
			return cmp <= 0, nil
		case OpGt:
			return cmp > 0, nil
		case OpGe:
			return cmp >= 0, nil
		}
		return false, fmt.Errorf("unknown comparison operator %q", node.CompareOp)

	case NodeBetween:
		tv, tok, err := resolveOperand(item, node.Target, ctx)
		if err != nil {
			return false, err
		}
		lo, lok, err := resolveOperand(item, node.Low, ctx)
		if err != nil {
			return false, err
		}
		hi, hok, err := resolveOperand(item, node.High, ctx)
		if err != nil {
			return false, err
		}
		if !tok || !lok || !hok {
			return false, nil
		}
		return Compare(tv, lo) >= 0 && Compare(tv, hi) <= 0, nil

	case NodeIn:
		tv, tok, err := resolveOperand(item, node.Target, ctx)
		if err != nil {
			return false, err
		}
		if !tok {
			return false, nil
		}
		for _, cand := range node.Candidates {
			cv, ok, err := resolveOperand(item, cand, ctx)
			if err != nil {
				return false, err
			}
			if ok && Equal(tv, cv) {
				return true, nil
			}
		}
		return false, nil

	case NodeFunction:
		return evalFunction(node, item, ctx)
	}
	return false, fmt.Errorf("unknown node kind %d", node.Kind)
}

func evalFunction(node *Node, item Item, ctx *SubstitutionContext) (bool, error) {
	switch node.FuncName {
	case "attribute_exists":
		path, err := requirePath(node.Args[0])
		if err != nil {
			return false, err
		}
		_, ok, err := resolvePath(item, path, ctx)
		return ok, err

	case "attribute_not_exists":
		path, err := requirePath(node.Args[0])
		if err != nil {
			return false, err
		}
		_, ok, err := resolvePath(item, path, ctx)
		if err != nil {
			return false, err
		}
		return !ok, nil

	case "attribute_type":
		v, ok, err := resolveOperand(item, node.Args[0], ctx)
		if err != nil || !ok {
			return false, err
		}
		want, ok, err := resolveOperand(item, node.Args[1], ctx)
		if err != nil || !ok {
			return false, err
		}
		s, ok := want.(*ddbtypes.AttributeValueMemberS)
		if !ok {
			return false, fmt.Errorf("attribute_type expects a string type tag")
		}
		return typeTag(v) == s.Value, nil

	case "begins_with":
		v, ok, err := resolveOperand(item, node.Args[0], ctx)
		if err != nil || !ok {
			return false, err
		}
		prefix, ok, err := resolveOperand(item, node.Args[1], ctx)
		if err != nil || !ok {
			return false, err
		}
		vs, ok1 := v.(*ddbtypes.AttributeValueMemberS)
		ps, ok2 := prefix.(*ddbtypes.AttributeValueMemberS)
		if !ok1 || !ok2 {
			return false, nil
		}
		return strings.HasPrefix(vs.Value, ps.Value), nil

	case "contains":
		v, ok, err := resolveOperand(item, node.Args[0], ctx)
		if err != nil || !ok {
			return false, err
		}
		needle, ok, err := resolveOperand(item, node.Args[1], ctx)
		if err != nil || !ok {
			return false, err
		}
		return containsValue(v, needle), nil
	}
	return false, fmt.Errorf("unknown function %q", node.FuncName)
}

func requirePath(op Operand) (Path, error) {
	if op.isValue() {
		return nil, fmt.Errorf("expected a document path, got a value placeholder")
	}
	return op.Path, nil
}

func containsValue(v, needle ddbtypes.AttributeValue) bool {
	switch vv := v.(type) {
	case *ddbtypes.AttributeValueMemberS:
		if s, ok := needle.(*ddbtypes.AttributeValueMemberS); ok {
			return strings.Contains(vv.Value, s.Value)
		}
	case *ddbtypes.AttributeValueMemberSS:
		if s, ok := needle.(*ddbtypes.AttributeValueMemberS); ok {
			for _, item := range vv.Value {
				if item == s.Value {
					return true
				}
			}
		}
	case *ddbtypes.AttributeValueMemberNS:
		if n, ok := needle.(*ddbtypes.AttributeValueMemberN); ok {
			for _, item := range vv.Value {
				if item == n.Value {
					return true
				}
			}
		}
	case *ddbtypes.AttributeValueMemberL:
		for _, elem := range vv.Value {
			if Equal(elem, needle) {
				return true
			}
		}
	}
	return false
}

// EvaluateKeyCondition evaluates a parsed KeyCondition against item.
func EvaluateKeyCondition(kc *KeyCondition, item Item, ctx *SubstitutionContext) (bool, error) {
	pkVal, ok, err := resolveOperand(item, kc.PartitionVal, ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	pkItemVal, ok, err := resolveOperand(item, kc.PartitionKey, ctx)
	if err != nil || !ok {
		return false, err
	}
	if !Equal(pkItemVal, pkVal) {
		return false, nil
	}
	if !kc.HasSortKey {
		return true, nil
	}

	skItemVal, ok, err := resolveOperand(item, kc.SortKey, ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	switch {
	case kc.SortBetween:
		lo, ok1, err := resolveOperand(item, kc.SortLow, ctx)
		if err != nil {
			return false, err
		}
		hi, ok2, err := resolveOperand(item, kc.SortHigh, ctx)
		if err != nil {
			return false, err
		}
		if !ok1 || !ok2 {
			return false, nil
		}
		return Compare(skItemVal, lo) >= 0 && Compare(skItemVal, hi) <= 0, nil

	case kc.SortBeginsWith:
		prefix, ok, err := resolveOperand(item, kc.SortPrefix, ctx)
		if err != nil || !ok {
			return false, err
		}
		vs, ok1 := skItemVal.(*ddbtypes.AttributeValueMemberS)
		ps, ok2 := prefix.(*ddbtypes.AttributeValueMemberS)
		if !ok1 || !ok2 {
			return false, nil
		}
		return strings.HasPrefix(vs.Value, ps.Value), nil

	default:
		val, ok, err := resolveOperand(item, kc.SortVal, ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		cmp := Compare(skItemVal, val)
		if cmp == -2 {
			return false, nil
		}
		switch kc.SortOp {
		case OpEq:
			return cmp == 0, nil
		case OpLt:
			return cmp < 0, nil
		case OpLe:
			return cmp <= 0, nil
		case OpGt:
			return cmp > 0, nil
		case OpGe:
			return cmp >= 0, nil
		}
		return false, fmt.Errorf("unsupported sort key operator %q", kc.SortOp)
	}
}
