package ast

// Inspect traverses the tree rooted at node in depth-first order, calling
// fn for each node. If fn returns false for a node, its children are
// skipped.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *Program:
		Inspect(n.Body, fn)
	case *MemberAccess:
		Inspect(n.Object, fn)
	case *IndexAccess:
		Inspect(n.Object, fn)
		Inspect(n.Index, fn)
	case *UnaryExpr:
		Inspect(n.Operand, fn)
	case *BinaryExpr:
		Inspect(n.Left, fn)
		Inspect(n.Right, fn)
	case *LogicalExpr:
		Inspect(n.Left, fn)
		Inspect(n.Right, fn)
	case *FunctionCall:
		for _, arg := range n.Args {
			Inspect(arg, fn)
		}
	case *ArrayLiteral:
		for _, el := range n.Elements {
			Inspect(el, fn)
		}
	case *ObjectLiteral:
		for _, v := range n.Values {
			Inspect(v, fn)
		}
	}
}
