// Package scan extracts symbols and call sites from workspace source files.
package scan

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"path/filepath"

	"github.com/starford/raido/internal/models"
)

// SymbolInfo pairs one extracted symbol with the call sites found in its body.
type SymbolInfo struct {
	Symbol models.Symbol
	Calls  []models.CallSite
}

// Result holds the output of scanning one file.
type Result struct {
	Lang    string
	Symbols []SymbolInfo
}

// File scans raw file bytes. Go sources yield symbols and call sites;
// any other extension yields a body-only result (searchable, no symbols).
func File(path string, data []byte) *Result {
	if filepath.Ext(path) == ".go" {
		if res, err := goFile(path, data); err == nil {
			return res
		}
		// Unparsable Go still gets indexed for text search.
	}
	return &Result{Lang: "text"}
}

// goFile parses Go source and walks top-level declarations.
func goFile(path string, data []byte) (*Result, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, data, 0)
	if err != nil {
		return nil, err
	}

	res := &Result{Lang: "go"}

	res.Symbols = append(res.Symbols, SymbolInfo{
		Symbol: models.Symbol{
			Name: file.Name.Name,
			Kind: models.KindPackage,
			Loc:  location(fset, path, file.Name.Pos(), file.Name.End()),
		},
	})

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			res.Symbols = append(res.Symbols, funcSymbol(fset, path, d))
		case *ast.GenDecl:
			res.Symbols = append(res.Symbols, genSymbols(fset, path, d)...)
		}
	}
	return res, nil
}

func funcSymbol(fset *token.FileSet, path string, d *ast.FuncDecl) SymbolInfo {
	kind := models.KindFunction
	name := d.Name.Name
	if d.Recv != nil && len(d.Recv.List) > 0 {
		kind = models.KindMethod
		name = receiverName(d.Recv.List[0].Type) + "." + name
	}

	info := SymbolInfo{
		Symbol: models.Symbol{
			Name:   name,
			Kind:   kind,
			Detail: exprString(fset, d.Type),
			Loc:    location(fset, path, d.Pos(), d.End()),
		},
	}

	if d.Body != nil {
		ast.Inspect(d.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			callee := calleeName(call.Fun)
			if callee == "" {
				return true
			}
			p := fset.Position(call.Pos())
			info.Calls = append(info.Calls, models.CallSite{
				Callee: callee,
				Pos:    models.Position{Line: p.Line, Column: p.Column},
			})
			return true
		})
	}
	return info
}

func genSymbols(fset *token.FileSet, path string, d *ast.GenDecl) []SymbolInfo {
	var out []SymbolInfo
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			kind := models.KindType
			switch s.Type.(type) {
			case *ast.StructType:
				kind = models.KindStruct
			case *ast.InterfaceType:
				kind = models.KindInterface
			}
			out = append(out, SymbolInfo{
				Symbol: models.Symbol{
					Name: s.Name.Name,
					Kind: kind,
					Loc:  location(fset, path, s.Pos(), s.End()),
				},
			})
		case *ast.ValueSpec:
			kind := models.KindVariable
			if d.Tok == token.CONST {
				kind = models.KindConstant
			}
			for _, name := range s.Names {
				if name.Name == "_" {
					continue
				}
				out = append(out, SymbolInfo{
					Symbol: models.Symbol{
						Name: name.Name,
						Kind: kind,
						Loc:  location(fset, path, name.Pos(), name.End()),
					},
				})
			}
		}
	}
	return out
}

// calleeName reduces a call target expression to a bare name:
// foo() -> "foo", pkg.Foo() / recv.Foo() -> "Foo".
func calleeName(fun ast.Expr) string {
	switch e := fun.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.ParenExpr:
		return calleeName(e.X)
	}
	return ""
}

// receiverName extracts the base type name from a method receiver.
func receiverName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return receiverName(e.X)
	case *ast.Ident:
		return e.Name
	case *ast.IndexExpr:
		return receiverName(e.X)
	case *ast.IndexListExpr:
		return receiverName(e.X)
	}
	return ""
}

func location(fset *token.FileSet, path string, pos, end token.Pos) models.Location {
	p, e := fset.Position(pos), fset.Position(end)
	return models.Location{
		Path: path,
		Range: models.Range{
			Start: models.Position{Line: p.Line, Column: p.Column},
			End:   models.Position{Line: e.Line, Column: e.Column},
		},
	}
}

func exprString(fset *token.FileSet, node ast.Node) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, node); err != nil {
		return ""
	}
	return buf.String()
}
