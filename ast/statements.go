package ast

func (*Noop) statementNode()     {}
func (*VarDecl) statementNode()  {}
func (*Block) statementNode()    {}
func (*If) statementNode()       {}
func (*While) statementNode()    {}
func (*Return) statementNode()   {}
func (*Throw) statementNode()    {}
func (*TryCatch) statementNode() {}
func (*Import) statementNode()   {}
func (*Export) statementNode()   {}

// Noop is the empty statement produced by a bare ';'.
type Noop struct{ BaseNode }

// VarDecl binds Variable in the current (innermost) scope frame.
// IsConst is parsed but — per spec — not enforced at runtime.
type VarDecl struct {
	BaseNode
	IsConst  bool
	Variable Variable
}

// Block pushes exactly one scope frame on entry and pops it on every
// exit path, including a propagated non-local-return or thrown value.
type Block struct {
	BaseNode
	Statements []Statement
}

// If runs Then if Cond is truthy, else Else (which may be nil).
type If struct {
	BaseNode
	Cond Expression
	Then Statement
	Else Statement // nil if absent
}

// While repeats Body while Cond is truthy.
type While struct {
	BaseNode
	Cond Expression
	Body Statement
}

// Return unwinds to the nearest enclosing function call via the
// non-local-return signal; Value is nil for a bare 'return;'.
type Return struct {
	BaseNode
	Value Expression // nil if absent
}

// Throw propagates Value as a user exception.
type Throw struct {
	BaseNode
	Value Expression
}

// TryCatch runs Try; if it throws, Catch runs with CatchName bound (when
// given) scoped to the catch block only; Finally (when present) runs on
// every exit path.
type TryCatch struct {
	BaseNode
	Try       Statement
	Catch     Statement // nil if no catch clause
	CatchName string    // "" if the catch binds nothing
	Finally   Statement // nil if absent
}

// ImportedObject is one `name` or `name as alias` in a named import list.
type ImportedObject struct {
	Name  string
	Alias string // equals Name if no alias was given
}

// Import must appear at block depth 0.
type Import struct {
	BaseNode
	DefaultName   string // "" if absent
	NamespaceName string // "" if absent (no `* as ns`)
	Objects       []ImportedObject
	FromFile      string
}

// ExportedObject is one `name` or `name as alias` in a named export list,
// where name may be the literal "default".
type ExportedObject struct {
	Name  string
	Alias string
}

// Export must appear at block depth 0. Exactly one of DefaultValue,
// VarDeclStmt, or FromFile is set, per the four export forms in spec.md §4.2.
type Export struct {
	BaseNode
	DefaultValue Expression // `export default expr;`
	VarDeclStmt  *VarDecl   // `export const|let ...;`
	FromFile     string     // set for `export {...} from '...'` and `export * from '...'`
	FromAll      bool       // `export * from '...'`
	FromNamed    []ExportedObject
}
