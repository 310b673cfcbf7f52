package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/xvr-lang/xvr/ast"
)

// astPrinter implements both visitor interfaces and builds a
// JSON-friendly representation of the AST using maps and slices. Each
// Visit method returns an object that can be marshaled to JSON.
type astPrinter struct{}

func (p astPrinter) VisitError(e ast.Error) any {
	return map[string]any{"type": "Error", "message": e.Message, "line": e.Line}
}

func (p astPrinter) VisitLiteral(l ast.Literal) any {
	return map[string]any{"type": "Literal", "value": l.Value.PrettyPrint()}
}

func (p astPrinter) VisitUnary(u ast.Unary) any {
	return map[string]any{
		"type":     "Unary",
		"operator": u.Operator.Lexeme,
		"right":    u.Right.Accept(p),
	}
}

func (p astPrinter) VisitBinary(b ast.Binary) any {
	return map[string]any{
		"type":     "Binary",
		"operator": b.Operator.Lexeme,
		"left":     b.Left.Accept(p),
		"right":    b.Right.Accept(p),
	}
}

func (p astPrinter) VisitTernary(t ast.Ternary) any {
	return map[string]any{
		"type":      "Ternary",
		"condition": t.Condition.Accept(p),
		"then":      t.Then.Accept(p),
		"else":      t.Else.Accept(p),
	}
}

func (p astPrinter) VisitGrouping(g ast.Grouping) any {
	return map[string]any{"type": "Grouping", "expression": g.Expression.Accept(p)}
}

func (p astPrinter) VisitVariable(variable ast.Variable) any {
	return map[string]any{"type": "Variable", "name": variable.Name.Lexeme}
}

func (p astPrinter) VisitAssign(a ast.Assign) any {
	return map[string]any{
		"type":     "Assign",
		"name":     a.Name.Lexeme,
		"operator": a.Operator.Lexeme,
		"value":    a.Value.Accept(p),
	}
}

func (p astPrinter) VisitPrefixIncDec(e ast.PrefixIncDec) any {
	return map[string]any{"type": "PrefixIncDec", "operator": e.Operator.Lexeme, "target": e.Target.Accept(p)}
}

func (p astPrinter) VisitPostfixIncDec(e ast.PostfixIncDec) any {
	return map[string]any{"type": "PostfixIncDec", "operator": e.Operator.Lexeme, "target": e.Target.Accept(p)}
}

func (p astPrinter) VisitIndex(i ast.Index) any {
	return map[string]any{
		"type":     "Index",
		"compound": i.Compound.Accept(p),
		"first":    nilOrAccept(i.First, p),
		"second":   nilOrAccept(i.Second, p),
		"third":    nilOrAccept(i.Third, p),
	}
}

func (p astPrinter) VisitIndexAssign(i ast.IndexAssign) any {
	return map[string]any{
		"type":     "IndexAssign",
		"operator": i.Operator.Lexeme,
		"target":   p.VisitIndex(i.Target),
		"value":    i.Value.Accept(p),
	}
}

func (p astPrinter) VisitArrayLiteral(a ast.ArrayLiteral) any {
	elems := make([]any, 0, len(a.Elements))
	for _, e := range a.Elements {
		elems = append(elems, e.Accept(p))
	}
	return map[string]any{"type": "ArrayLiteral", "elements": elems}
}

func (p astPrinter) VisitDictLiteral(d ast.DictLiteral) any {
	pairs := make([]any, 0, len(d.Pairs))
	for _, pair := range d.Pairs {
		pairs = append(pairs, map[string]any{"key": pair.Key.Accept(p), "value": pair.Value.Accept(p)})
	}
	return map[string]any{"type": "DictLiteral", "pairs": pairs}
}

func (p astPrinter) VisitFnCall(f ast.FnCall) any {
	args := make([]any, 0, len(f.Args))
	for _, a := range f.Args {
		args = append(args, a.Accept(p))
	}
	out := map[string]any{"type": "FnCall", "callee": f.Callee.Lexeme, "args": args, "isDot": f.IsDot}
	if f.IsDot {
		out["receiver"] = f.Receiver.Accept(p)
	}
	return out
}

func (p astPrinter) VisitTypeCast(t ast.TypeCast) any {
	return map[string]any{"type": "TypeCast", "value": t.Value.Accept(p), "target": t.Target.Accept(p)}
}

func (p astPrinter) VisitTypeOf(t ast.TypeOf) any {
	return map[string]any{"type": "TypeOf", "value": t.Value.Accept(p)}
}

func (p astPrinter) VisitTypeExpr(t ast.TypeExpr) any {
	subs := make([]any, 0, len(t.Subtypes))
	for _, s := range t.Subtypes {
		subs = append(subs, s.Accept(p))
	}
	return map[string]any{"type": "TypeExpr", "kind": string(t.Kind), "subtypes": subs, "const": t.Constant}
}

func (p astPrinter) VisitErrorStmt(e ast.ErrorStmt) any {
	return map[string]any{"type": "ErrorStmt", "message": e.Message, "line": e.Line}
}

func (p astPrinter) VisitExpressionStmt(s ast.ExpressionStmt) any {
	return map[string]any{"type": "ExpressionStmt", "expression": s.Expression.Accept(p)}
}

func (p astPrinter) VisitPrintStmt(s ast.PrintStmt) any {
	return map[string]any{"type": "PrintStmt", "expression": s.Expression.Accept(p)}
}

func (p astPrinter) VisitAssertStmt(s ast.AssertStmt) any {
	return map[string]any{
		"type":      "AssertStmt",
		"condition": s.Condition.Accept(p),
		"message":   nilOrAccept(s.Message, p),
	}
}

func (p astPrinter) VisitVarDecl(s ast.VarDecl) any {
	out := map[string]any{
		"type":        "VarDecl",
		"name":        s.Name.Lexeme,
		"const":       s.Const,
		"hasType":     s.HasType,
		"initializer": nilOrAccept(s.Initializer, p),
	}
	if s.HasType {
		out["declaredType"] = s.Type.Accept(p)
	}
	return out
}

func (p astPrinter) VisitBlock(s ast.Block) any {
	stmts := make([]any, 0, len(s.Statements))
	for _, stmt := range s.Statements {
		stmts = append(stmts, stmt.Accept(p))
	}
	return map[string]any{"type": "Block", "statements": stmts}
}

func (p astPrinter) VisitIf(s ast.If) any {
	out := map[string]any{"type": "If", "condition": s.Condition.Accept(p), "then": s.Then.Accept(p)}
	if s.Else != nil {
		out["else"] = s.Else.Accept(p)
	}
	return out
}

func (p astPrinter) VisitWhile(s ast.While) any {
	return map[string]any{"type": "While", "condition": s.Condition.Accept(p), "body": s.Body.Accept(p)}
}

func (p astPrinter) VisitFor(s ast.For) any {
	out := map[string]any{"type": "For", "body": s.Body.Accept(p)}
	if s.Init != nil {
		out["init"] = s.Init.Accept(p)
	}
	if s.Condition != nil {
		out["condition"] = s.Condition.Accept(p)
	}
	if s.Post != nil {
		out["post"] = s.Post.Accept(p)
	}
	return out
}

func (p astPrinter) VisitForeach(s ast.Foreach) any {
	out := map[string]any{
		"type":       "Foreach",
		"valueName":  s.ValueName.Lexeme,
		"of":         s.Of,
		"collection": s.Collection.Accept(p),
		"body":       s.Body.Accept(p),
	}
	if s.HasKey {
		out["keyName"] = s.KeyName.Lexeme
	}
	return out
}

func (p astPrinter) VisitBreak(s ast.Break) any       { return map[string]any{"type": "Break"} }
func (p astPrinter) VisitContinue(s ast.Continue) any { return map[string]any{"type": "Continue"} }
func (p astPrinter) VisitPass(s ast.Pass) any         { return map[string]any{"type": "Pass"} }

func (p astPrinter) VisitReturn(s ast.Return) any {
	vals := make([]any, 0, len(s.Values))
	for _, v := range s.Values {
		vals = append(vals, v.Accept(p))
	}
	return map[string]any{"type": "Return", "values": vals}
}

func (p astPrinter) VisitFnDecl(s ast.FnDecl) any {
	params := make([]any, 0, len(s.Params))
	for _, param := range s.Params {
		params = append(params, map[string]any{"name": param.Name.Lexeme, "type": param.Type.Accept(p)})
	}
	returns := make([]any, 0, len(s.ReturnTypes))
	for _, r := range s.ReturnTypes {
		returns = append(returns, r.Accept(p))
	}
	out := map[string]any{
		"type":         "FnDecl",
		"name":         s.Name.Lexeme,
		"params":       params,
		"returnTypes":  returns,
		"hasRestParam": s.HasRestParam,
		"body":         s.Body.Accept(p),
	}
	if s.HasRestParam {
		out["restParam"] = s.RestParam.Lexeme
	}
	return out
}

func (p astPrinter) VisitImport(s ast.Import) any {
	out := map[string]any{"type": "Import", "identifier": s.Identifier.Lexeme}
	if s.HasAlias {
		out["alias"] = s.Alias.Lexeme
	}
	return out
}

func (p astPrinter) VisitExport(s ast.Export) any {
	return map[string]any{"type": "Export", "decl": s.Decl.Accept(p)}
}

// nilOrAccept returns nil if expr is nil, otherwise it continues
// processing the expression and returns the result.
func nilOrAccept(expr ast.Expression, p ast.ExpressionVisitor) any {
	if expr == nil {
		return nil
	}
	return expr.Accept(p)
}

// PrintASTJSON converts a slice of statements into a prettified JSON string
// and echoes it to stdout in yellow, for use as a debug flag on the xvr CLI.
func PrintASTJSON(statements []ast.Stmt) (string, error) {
	printer := astPrinter{}
	out := make([]any, 0, len(statements))
	for _, s := range statements {
		out = append(out, s.Accept(printer))
	}
	bytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}

	jsonStr := string(bytes)
	yellow := color.New(color.FgYellow)
	yellow.Println("----- AST JSON -----")
	yellow.Println(jsonStr)
	yellow.Println("-----")
	fmt.Println("")
	return jsonStr, nil
}

// WriteASTJSONToFile writes the prettified AST JSON to the given file path.
func WriteASTJSONToFile(statements []ast.Stmt, path string) error {
	s, err := PrintASTJSON(statements)
	if err != nil {
		return err
	}
	fDescriptor, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating AST file: %s", err.Error())
	}
	defer fDescriptor.Close()

	if _, err := fDescriptor.Write([]byte(s)); err != nil {
		return fmt.Errorf("error writing AST to file: %s", err.Error())
	}
	return nil
}
