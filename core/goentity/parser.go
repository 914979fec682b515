// Package goentity reads persistent class declarations from Go source files.
//
// Mapping annotations are written as //orm: comment directives. The directive
// name is the snake_case annotation kind and its attributes are key="value"
// pairs; dotted keys address nested annotations:
//
//	//orm:entity
//	//orm:secondary_table name="CUST_DETAIL" foreign_key.name="FK_CUST_DETAIL"
//	type Customer struct {
//		Audited // anonymous field without directive: the supertype
//
//		//orm:embedded_id
//		Key CustomerKey
//
//		Name string // no directive: a basic attribute
//
//		//orm:one_to_many
//		//orm:map_key_column
//		Images map[string]*Image
//	}
//
//	//orm:column table="CUST_DETAIL"
//	func (c *Customer) Bio() string { ... }
//
// A struct is a persistent class when its type declaration carries at least
// one directive. Methods carrying directives become accessor members of the
// receiver class; they follow the fields in member order.
package goentity

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"log/slog"

	"github.com/stokaro/ormeta/core/annotation"
	"github.com/stokaro/ormeta/core/decl"
	"github.com/stokaro/ormeta/core/goentity/internal/parseutils"
)

type accessor struct {
	receiver string
	member   decl.Member
}

type fileResult struct {
	classes   []*decl.Class
	accessors []accessor
}

type fileParser struct {
	fset     *token.FileSet
	filename string
}

func (p *fileParser) pos(pos token.Pos) decl.Position {
	return decl.Position{File: p.filename, Line: p.fset.Position(pos).Line}
}

// directives converts the //orm: comments of a comment group into annotations,
// keeping their order. Other comments are ignored.
func (p *fileParser) directives(doc *ast.CommentGroup) ([]annotation.Annotation, error) {
	if doc == nil {
		return nil, nil
	}
	var anns []annotation.Annotation
	for _, comment := range doc.List {
		name, attrs, ok := parseutils.ParseDirective(comment.Text)
		if !ok {
			continue
		}
		s, err := annotation.LookupDirective(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.pos(comment.Pos()), err)
		}
		values := make(map[string]any, len(attrs))
		for k, v := range attrs {
			values[k] = v
		}
		a, err := annotation.FromMap(s.Kind, values)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.pos(comment.Pos()), err)
		}
		anns = append(anns, a)
	}
	return anns, nil
}

func parseFile(filename string) (*fileResult, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filename, err)
	}
	p := &fileParser{fset: fset, filename: filename}

	result := &fileResult{}
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := typeSpec.Doc
				if doc == nil && len(d.Specs) == 1 {
					doc = d.Doc
				}
				class, err := p.class(typeSpec, doc)
				if err != nil {
					return nil, err
				}
				if class != nil {
					result.classes = append(result.classes, class)
				}
			}
		case *ast.FuncDecl:
			if d.Recv == nil || len(d.Recv.List) == 0 {
				continue
			}
			anns, err := p.directives(d.Doc)
			if err != nil {
				return nil, err
			}
			if len(anns) == 0 {
				continue
			}
			result.accessors = append(result.accessors, accessor{
				receiver: receiverName(d.Recv.List[0].Type),
				member: decl.Member{
					Name:        d.Name.Name,
					Element:     decl.ElementAccessor,
					Type:        resultType(d.Type),
					Annotations: anns,
					Pos:         p.pos(d.Pos()),
				},
			})
		}
	}
	return result, nil
}

func (p *fileParser) class(typeSpec *ast.TypeSpec, doc *ast.CommentGroup) (*decl.Class, error) {
	anns, err := p.directives(doc)
	if err != nil {
		return nil, err
	}
	if len(anns) == 0 {
		return nil, nil
	}
	structType, ok := typeSpec.Type.(*ast.StructType)
	if !ok {
		slog.Warn("Ignoring mapping directives on non-struct type", "type", typeSpec.Name.Name, "position", p.pos(typeSpec.Pos()).String())
		return nil, nil
	}

	class := &decl.Class{Name: typeSpec.Name.Name, Annotations: anns, Pos: p.pos(typeSpec.Pos())}
	for _, field := range structType.Fields.List {
		fieldAnns, err := p.directives(field.Doc)
		if err != nil {
			return nil, err
		}
		typ := types.ExprString(field.Type)

		if len(field.Names) == 0 {
			name, qualified := embeddedName(field.Type)
			switch {
			case len(fieldAnns) > 0:
				class.Members = append(class.Members, decl.Member{
					Name: name, Element: decl.ElementField, Type: typ, Annotations: fieldAnns, Pos: p.pos(field.Pos()),
				})
			case qualified:
				slog.Debug("Skipping embedded type from another package", "class", class.Name, "type", typ)
			case class.Super != "":
				return nil, fmt.Errorf("%s: %s embeds both %s and %s without directives; only one supertype is allowed",
					p.pos(field.Pos()), class.Name, class.Super, name)
			default:
				class.Super = name
			}
			continue
		}

		for _, n := range field.Names {
			if n.Name == "_" {
				continue
			}
			class.Members = append(class.Members, decl.Member{
				Name: n.Name, Element: decl.ElementField, Type: typ, Annotations: fieldAnns, Pos: p.pos(n.Pos()),
			})
		}
	}
	return class, nil
}

// embeddedName returns the type name of an anonymous field and whether it is
// qualified by a package.
func embeddedName(expr ast.Expr) (string, bool) {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, false
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name, true
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	default:
		return types.ExprString(expr), false
	}
}

func receiverName(expr ast.Expr) string {
	name, _ := embeddedName(expr)
	return name
}

func resultType(ft *ast.FuncType) string {
	if ft.Results == nil || len(ft.Results.List) == 0 {
		return ""
	}
	return types.ExprString(ft.Results.List[0].Type)
}

// merge joins parsed files: class names must be unique, and accessors are
// attached to their receiver class. Accessors of unmapped receivers are
// ignored with a warning.
func merge(results ...*fileResult) ([]*decl.Class, error) {
	var classes []*decl.Class
	byName := map[string]*decl.Class{}
	for _, r := range results {
		for _, class := range r.classes {
			if prev, ok := byName[class.Name]; ok {
				return nil, fmt.Errorf("class %s declared twice: %s and %s", class.Name, prev.Pos, class.Pos)
			}
			byName[class.Name] = class
			classes = append(classes, class)
		}
	}

	for _, r := range results {
		for _, acc := range r.accessors {
			class, ok := byName[acc.receiver]
			if !ok {
				slog.Warn("Ignoring mapping directives on method of unmapped type",
					"receiver", acc.receiver, "method", acc.member.Name, "position", acc.member.Pos.String())
				continue
			}
			class.Members = append(class.Members, acc.member)
		}
	}
	return classes, nil
}

// ParseFile parses one Go source file and returns the persistent classes it
// declares, in source order.
func ParseFile(filename string) ([]*decl.Class, error) {
	result, err := parseFile(filename)
	if err != nil {
		return nil, err
	}
	return merge(result)
}
