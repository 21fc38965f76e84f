package expr

import (
	"bytes"
	"fmt"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// SetValueKind discriminates the right-hand side of a SET action.
type SetValueKind int

const (
	SetPlain SetValueKind = iota
	SetPlus
	SetMinus
	SetIfNotExists
	SetListAppend
)

// SetAction is one "path = value" clause of a SET update action.
type SetAction struct {
	Target Path
	Kind   SetValueKind
	A      Operand // right operand, or left operand of +/-/list_append/if_not_exists
	B      Operand // right operand of +/-/list_append/if_not_exists
}

// AddAction is one "path value" clause of an ADD update action.
type AddAction struct {
	Target Path
	Value  Operand
}

// DeleteAction is one "path value" clause of a DELETE update action.
type DeleteAction struct {
	Target Path
	Value  Operand
}

// UpdatePlan is a fully parsed UpdateExpression.
type UpdatePlan struct {
	Set    []SetAction
	Remove []Path
	Add    []AddAction
	Delete []DeleteAction
}

// ParseUpdate parses an UpdateExpression. Clauses (SET/REMOVE/ADD/DELETE) may
// appear in any order but each at most once, matching the DynamoDB grammar.
func ParseUpdate(s string) (*UpdatePlan, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	plan := &UpdatePlan{}
	seen := map[string]bool{}

	for !p.atEOF() {
		kw := p.advance()
		if kw.kind != tokKeyword {
			return nil, fmt.Errorf("expected SET/REMOVE/ADD/DELETE, got %q", kw.text)
		}
		if seen[kw.text] {
			return nil, fmt.Errorf("duplicate %s clause", kw.text)
		}
		seen[kw.text] = true

		switch kw.text {
		case "SET":
			actions, err := p.parseSetActions()
			if err != nil {
				return nil, err
			}
			plan.Set = actions
		case "REMOVE":
			paths, err := p.parseRemoveActions()
			if err != nil {
				return nil, err
			}
			plan.Remove = paths
		case "ADD":
			actions, err := p.parseAddActions()
			if err != nil {
				return nil, err
			}
			plan.Add = actions
		case "DELETE":
			actions, err := p.parseDeleteActions()
			if err != nil {
				return nil, err
			}
			plan.Delete = actions
		default:
			return nil, fmt.Errorf("unknown update clause %q", kw.text)
		}
	}
	return plan, nil
}

func (p *parser) atClauseBoundary() bool {
	t := p.peek()
	return t.kind == tokEOF || (t.kind == tokKeyword && (t.text == "SET" || t.text == "REMOVE" || t.text == "ADD" || t.text == "DELETE"))
}

func (p *parser) parseSetActions() ([]SetAction, error) {
	var actions []SetAction
	for {
		target, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp("="); err != nil {
			return nil, err
		}
		action, err := p.parseSetValue(target)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)

		if p.peek().kind == tokOp && p.peek().text == "," {
			p.advance()
			continue
		}
		if !p.atClauseBoundary() {
			return nil, fmt.Errorf("expected ',' or end of SET clause, got %q", p.peek().text)
		}
		break
	}
	return actions, nil
}

func (p *parser) parseSetValue(target Path) (SetAction, error) {
	t := p.peek()
	if t.kind == tokIdent && t.text == "if_not_exists" {
		p.advance()
		args, err := p.parseOperandList()
		if err != nil {
			return SetAction{}, err
		}
		if len(args) != 2 {
			return SetAction{}, fmt.Errorf("if_not_exists expects 2 arguments")
		}
		return SetAction{Target: target, Kind: SetIfNotExists, A: args[0], B: args[1]}, nil
	}
	if t.kind == tokIdent && t.text == "list_append" {
		p.advance()
		args, err := p.parseOperandList()
		if err != nil {
			return SetAction{}, err
		}
		if len(args) != 2 {
			return SetAction{}, fmt.Errorf("list_append expects 2 arguments")
		}
		return SetAction{Target: target, Kind: SetListAppend, A: args[0], B: args[1]}, nil
	}

	a, err := p.parseOperand()
	if err != nil {
		return SetAction{}, err
	}

	nt := p.peek()
	if nt.kind == tokOp && (nt.text == "+" || nt.text == "-") {
		p.advance()
		b, err := p.parseOperand()
		if err != nil {
			return SetAction{}, err
		}
		kind := SetPlus
		if nt.text == "-" {
			kind = SetMinus
		}
		return SetAction{Target: target, Kind: kind, A: a, B: b}, nil
	}

	return SetAction{Target: target, Kind: SetPlain, A: a}, nil
}

func (p *parser) parseRemoveActions() ([]Path, error) {
	var paths []Path
	for {
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
		if p.peek().kind == tokOp && p.peek().text == "," {
			p.advance()
			continue
		}
		if !p.atClauseBoundary() {
			return nil, fmt.Errorf("expected ',' or end of REMOVE clause, got %q", p.peek().text)
		}
		break
	}
	return paths, nil
}

func (p *parser) parseAddActions() ([]AddAction, error) {
	var actions []AddAction
	for {
		target, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		val, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		actions = append(actions, AddAction{Target: target, Value: val})
		if p.peek().kind == tokOp && p.peek().text == "," {
			p.advance()
			continue
		}
		if !p.atClauseBoundary() {
			return nil, fmt.Errorf("expected ',' or end of ADD clause, got %q", p.peek().text)
		}
		break
	}
	return actions, nil
}

func (p *parser) parseDeleteActions() ([]DeleteAction, error) {
	var actions []DeleteAction
	for {
		target, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		val, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		actions = append(actions, DeleteAction{Target: target, Value: val})
		if p.peek().kind == tokOp && p.peek().text == "," {
			p.advance()
			continue
		}
		if !p.atClauseBoundary() {
			return nil, fmt.Errorf("expected ',' or end of DELETE clause, got %q", p.peek().text)
		}
		break
	}
	return actions, nil
}

// Apply applies plan to item, returning a new item (item is not mutated) in
// SET, REMOVE, ADD, DELETE order, matching the order DynamoDB documents.
func Apply(item Item, plan *UpdatePlan, ctx *SubstitutionContext) (Item, error) {
	result := make(Item, len(item))
	for k, v := range item {
		result[k] = v
	}

	for _, action := range plan.Set {
		val, err := evalSetValue(result, action, ctx)
		if err != nil {
			return nil, err
		}
		if err := setPath(result, action.Target, val, ctx); err != nil {
			return nil, err
		}
	}
	for _, path := range plan.Remove {
		removePath(result, path, ctx)
	}
	for _, action := range plan.Add {
		if err := applyAdd(result, action, ctx); err != nil {
			return nil, err
		}
	}
	for _, action := range plan.Delete {
		if err := applyDelete(result, action, ctx); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func evalSetValue(item Item, action SetAction, ctx *SubstitutionContext) (ddbtypes.AttributeValue, error) {
	switch action.Kind {
	case SetPlain:
		v, ok, err := resolveOperand(item, action.A, ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("SET references a value that does not exist")
		}
		return v, nil

	case SetPlus, SetMinus:
		av, ok, err := resolveOperand(item, action.A, ctx)
		if err != nil {
			return nil, err
		}
		bv, ok2, err := resolveOperand(item, action.B, ctx)
		if err != nil {
			return nil, err
		}
		if !ok || !ok2 {
			return nil, fmt.Errorf("arithmetic SET references a value that does not exist")
		}
		an, ok1 := av.(*ddbtypes.AttributeValueMemberN)
		bn, ok2b := bv.(*ddbtypes.AttributeValueMemberN)
		if !ok1 || !ok2b {
			return nil, fmt.Errorf("arithmetic SET requires numeric operands")
		}
		if action.Kind == SetPlus {
			return addNumeric(an, bn)
		}
		return subNumeric(an, bn)

	case SetIfNotExists:
		existing, ok, err := resolveOperand(item, action.A, ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			return existing, nil
		}
		fallback, ok, err := resolveOperand(item, action.B, ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("if_not_exists fallback value does not exist")
		}
		return fallback, nil

	case SetListAppend:
		av, ok, err := resolveOperand(item, action.A, ctx)
		if err != nil {
			return nil, err
		}
		bv, ok2, err := resolveOperand(item, action.B, ctx)
		if err != nil {
			return nil, err
		}
		aList := []ddbtypes.AttributeValue{}
		if ok {
			if l, ok := av.(*ddbtypes.AttributeValueMemberL); ok {
				aList = l.Value
			}
		}
		bList := []ddbtypes.AttributeValue{}
		if ok2 {
			if l, ok := bv.(*ddbtypes.AttributeValueMemberL); ok {
				bList = l.Value
			}
		}
		combined := make([]ddbtypes.AttributeValue, 0, len(aList)+len(bList))
		combined = append(combined, aList...)
		combined = append(combined, bList...)
		return &ddbtypes.AttributeValueMemberL{Value: combined}, nil
	}
	return nil, fmt.Errorf("unknown SET value kind")
}

// setPath writes val at path within item. A missing (or non-map) intermediate
// segment is replaced by an empty map at any depth, and each map along the
// path is copied before it is written, so maps shared with the input item are
// left unchanged. List-index segments are not treated as list positions here.
func setPath(item Item, path Path, val ddbtypes.AttributeValue, ctx *SubstitutionContext) error {
	if len(path) == 1 && !path[0].IsIndex {
		name, err := ctx.resolveName(path[0].Name)
		if err != nil {
			return err
		}
		item[name] = val
		return nil
	}
	return setNestedPath(item, path, val, ctx)
}

func setNestedPath(item Item, path Path, val ddbtypes.AttributeValue, ctx *SubstitutionContext) error {
	name, err := ctx.resolveName(path[0].Name)
	if err != nil {
		return err
	}
	if len(path) == 1 {
		item[name] = val
		return nil
	}

	m := &ddbtypes.AttributeValueMemberM{Value: map[string]ddbtypes.AttributeValue{}}
	if child, isMap := item[name].(*ddbtypes.AttributeValueMemberM); isMap {
		for k, v := range child.Value {
			m.Value[k] = v
		}
	}
	item[name] = m
	return setPath(m.Value, path[1:], val, ctx)
}

func removePath(item Item, path Path, ctx *SubstitutionContext) {
	if len(path) == 0 {
		return
	}
	name, err := ctx.resolveName(path[0].Name)
	if err != nil {
		return
	}
	if len(path) == 1 {
		delete(item, name)
		return
	}
	child, ok := item[name].(*ddbtypes.AttributeValueMemberM)
	if !ok {
		return
	}
	copied := &ddbtypes.AttributeValueMemberM{Value: make(map[string]ddbtypes.AttributeValue, len(child.Value))}
	for k, v := range child.Value {
		copied.Value[k] = v
	}
	item[name] = copied
	removePath(copied.Value, path[1:], ctx)
}

func applyAdd(item Item, action AddAction, ctx *SubstitutionContext) error {
	val, ok, err := resolveOperand(item, action.Value, ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("ADD references a value that does not exist")
	}

	name, err := ctx.resolveName(action.Target[0].Name)
	if err != nil {
		return err
	}

	switch v := val.(type) {
	case *ddbtypes.AttributeValueMemberN:
		existing, ok := item[name].(*ddbtypes.AttributeValueMemberN)
		if !ok {
			item[name] = v
			return nil
		}
		sum, err := addNumeric(existing, v)
		if err != nil {
			return err
		}
		item[name] = sum
		return nil

	case *ddbtypes.AttributeValueMemberSS:
		item[name] = &ddbtypes.AttributeValueMemberSS{Value: unionStrings(stringSetOf(item[name]), v.Value)}
		return nil

	case *ddbtypes.AttributeValueMemberNS:
		item[name] = &ddbtypes.AttributeValueMemberNS{Value: unionStrings(numberSetOf(item[name]), v.Value)}
		return nil

	case *ddbtypes.AttributeValueMemberBS:
		item[name] = &ddbtypes.AttributeValueMemberBS{Value: unionBytes(byteSetOf(item[name]), v.Value)}
		return nil

	default:
		return fmt.Errorf("ADD requires a numeric or set value")
	}
}

func applyDelete(item Item, action DeleteAction, ctx *SubstitutionContext) error {
	val, ok, err := resolveOperand(item, action.Value, ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	name, err := ctx.resolveName(action.Target[0].Name)
	if err != nil {
		return err
	}

	switch v := val.(type) {
	case *ddbtypes.AttributeValueMemberSS:
		remaining := subtractStrings(stringSetOf(item[name]), v.Value)
		if len(remaining) == 0 {
			delete(item, name)
		} else {
			item[name] = &ddbtypes.AttributeValueMemberSS{Value: remaining}
		}
		return nil
	case *ddbtypes.AttributeValueMemberNS:
		remaining := subtractStrings(numberSetOf(item[name]), v.Value)
		if len(remaining) == 0 {
			delete(item, name)
		} else {
			item[name] = &ddbtypes.AttributeValueMemberNS{Value: remaining}
		}
		return nil
	case *ddbtypes.AttributeValueMemberBS:
		remaining := subtractBytes(byteSetOf(item[name]), v.Value)
		if len(remaining) == 0 {
			delete(item, name)
		} else {
			item[name] = &ddbtypes.AttributeValueMemberBS{Value: remaining}
		}
		return nil
	default:
		return fmt.Errorf("DELETE requires a set value")
	}
}

func stringSetOf(v ddbtypes.AttributeValue) []string {
	if ss, ok := v.(*ddbtypes.AttributeValueMemberSS); ok {
		return ss.Value
	}
	return nil
}

func numberSetOf(v ddbtypes.AttributeValue) []string {
	if ns, ok := v.(*ddbtypes.AttributeValueMemberNS); ok {
		return ns.Value
	}
	return nil
}

func byteSetOf(v ddbtypes.AttributeValue) [][]byte {
	if bs, ok := v.(*ddbtypes.AttributeValueMemberBS); ok {
		return bs.Value
	}
	return nil
}

func unionStrings(existing, add []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range existing {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range add {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func subtractStrings(existing, remove []string) []string {
	removeSet := map[string]bool{}
	for _, s := range remove {
		removeSet[s] = true
	}
	var out []string
	for _, s := range existing {
		if !removeSet[s] {
			out = append(out, s)
		}
	}
	return out
}

// unionBytes and subtractBytes mirror unionStrings/subtractStrings for a
// binary set, comparing on the raw bytes rather than a string key so a
// non-UTF8 blob still compares correctly.
func unionBytes(existing, add [][]byte) [][]byte {
	var out [][]byte
	for _, b := range existing {
		if !containsBytes(out, b) {
			out = append(out, b)
		}
	}
	for _, b := range add {
		if !containsBytes(out, b) {
			out = append(out, b)
		}
	}
	return out
}

func subtractBytes(existing, remove [][]byte) [][]byte {
	var out [][]byte
	for _, b := range existing {
		if !containsBytes(remove, b) {
			out = append(out, b)
		}
	}
	return out
}

func containsBytes(set [][]byte, b []byte) bool {
	for _, s := range set {
		if bytes.Equal(s, b) {
			return true
		}
	}
	return false
}
