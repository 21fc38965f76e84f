package expr

// PathElem is one segment of a document path: either a top-level/nested
// attribute name or a list index.
type PathElem struct {
	Name    string // set when this segment is an attribute name (after #-substitution)
	Index   int    // set when this segment is a list index ("[n]")
	IsIndex bool
}

// Path is a document path such as a.b[0].c.
type Path []PathElem

// Operand is either a document path or a value placeholder.
type Operand struct {
	Path        Path
	Placeholder string // ":value" form, empty if this operand is a Path
}

func (o Operand) isValue() bool { return o.Placeholder != "" }

// NodeKind discriminates Condition AST nodes.
type NodeKind int

const (
	NodeAnd NodeKind = iota
	NodeOr
	NodeNot
	NodeCompare
	NodeBetween
	NodeIn
	NodeFunction
)

// CompareOp enumerates the comparison operators condition expressions allow.
type CompareOp string

const (
	OpEq CompareOp = "="
	OpNe CompareOp = "<>"
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// Node is a condition/filter expression AST node.
type Node struct {
	Kind NodeKind

	// NodeAnd / NodeOr
	Left  *Node
	Right *Node

	// NodeNot
	Operand *Node

	// NodeCompare
	CompareOp  CompareOp
	LHS        Operand
	RHS        Operand

	// NodeBetween
	Target Operand
	Low    Operand
	High   Operand

	// NodeIn
	Candidates []Operand

	// NodeFunction: attribute_exists, attribute_not_exists, attribute_type,
	// begins_with, contains
	FuncName string
	Args     []Operand
}
