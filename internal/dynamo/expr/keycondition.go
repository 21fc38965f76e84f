package expr

import "fmt"

// KeyCondition is the parsed, validated form of a KeyConditionExpression:
// exactly one equality clause on the partition key and an optional clause on
// the sort key.
type KeyCondition struct {
	PartitionKey Operand // always a Path naming the partition key attribute
	PartitionVal Operand // always a Placeholder

	HasSortKey bool
	SortKey    Operand
	SortOp     CompareOp // valid when !SortBetween && !SortBeginsWith
	SortVal    Operand
	SortBetween bool
	SortLow     Operand
	SortHigh    Operand
	SortBeginsWith bool
	SortPrefix     Operand
}

// ParseKeyCondition parses a KeyConditionExpression. OR is never valid here;
// the grammar is a single partition-key equality, optionally ANDed with one
// sort-key clause. Because the underlying parser treats BETWEEN ... AND ...
// as part of a single atom, a top-level split on AND naturally never breaks a
// BETWEEN clause in two.
func ParseKeyCondition(s string) (*KeyCondition, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	node, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, fmt.Errorf("unexpected trailing token %q in key condition", p.peek().text)
	}

	var clauses []*Node
	flatten(node, &clauses)

	if len(clauses) < 1 || len(clauses) > 2 {
		return nil, fmt.Errorf("key condition expression must have 1 or 2 clauses, got %d", len(clauses))
	}

	kc := &KeyCondition{}

	first := clauses[0]
	if first.Kind != NodeCompare || first.CompareOp != OpEq {
		return nil, fmt.Errorf("key condition must start with a partition key equality")
	}
	kc.PartitionKey = first.LHS
	kc.PartitionVal = first.RHS

	if len(clauses) == 2 {
		kc.HasSortKey = true
		second := clauses[1]
		switch second.Kind {
		case NodeCompare:
			kc.SortKey = second.LHS
			kc.SortOp = second.CompareOp
			kc.SortVal = second.RHS
		case NodeBetween:
			kc.SortKey = second.Target
			kc.SortBetween = true
			kc.SortLow = second.Low
			kc.SortHigh = second.High
		case NodeFunction:
			if second.FuncName != "begins_with" {
				return nil, fmt.Errorf("unsupported sort key function %q in key condition", second.FuncName)
			}
			kc.SortKey = second.Args[0]
			kc.SortBeginsWith = true
			kc.SortPrefix = second.Args[1]
		default:
			return nil, fmt.Errorf("unsupported sort key clause in key condition")
		}
	}

	return kc, nil
}

// flatten walks a left-associative chain of NodeAnd nodes (as produced by
// parseAnd) into its individual clauses, in source order.
func flatten(n *Node, out *[]*Node) {
	if n.Kind == NodeAnd {
		flatten(n.Left, out)
		*out = append(*out, n.Right)
		return
	}
	*out = append(*out, n)
}
