// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/devac-dev/codegraph/internal/identity"
	"github.com/devac-dev/codegraph/internal/seedstore"
)

// TypeScriptParser is the tree-sitter-backed structural parser for
// TypeScript/TSX, grounded on the teacher's TreeSitterParser for
// pkg/ingestion/parser_typescript.go, generalized to this system's
// Node/Edge/ExternalRef schema and reusing the $anon_N naming convention
// introduced for Go closures.
type TypeScriptParser struct {
	tsx bool // true selects the .tsx grammar
}

// NewTypeScriptParser constructs a parser for plain .ts/.mts/.cts files.
func NewTypeScriptParser() *TypeScriptParser { return &TypeScriptParser{} }

// NewTSXParser constructs a parser for .tsx files (JSX-aware grammar).
func NewTSXParser() *TypeScriptParser { return &TypeScriptParser{tsx: true} }

func (p *TypeScriptParser) Language() string {
	if p.tsx {
		return "tsx"
	}
	return "typescript"
}

func (p *TypeScriptParser) Extensions() []string {
	if p.tsx {
		return []string{".tsx"}
	}
	return []string{".ts", ".mts", ".cts"}
}

func (p *TypeScriptParser) Version() string { return "ts-treesitter-v1" }

type tsWalkCtx struct {
	source     []byte
	filePath   string
	pkgCtx     PackageContext
	funcByName map[string]identity.EntityID
	anonCount  int
}

func (p *TypeScriptParser) Parse(filePath string, source []byte, pkgCtx PackageContext) (Result, error) {
	sp := sitter.NewParser()
	if p.tsx {
		sp.SetLanguage(tsx.GetLanguage())
	} else {
		sp.SetLanguage(typescript.GetLanguage())
	}

	tree, err := sp.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return Result{ParseErrors: []ParseError{{File: filePath, Message: fmt.Sprintf("tree-sitter parse failed: %v", err)}}}, nil
	}
	root := tree.RootNode()

	wc := &tsWalkCtx{source: source, filePath: filePath, pkgCtx: pkgCtx, funcByName: make(map[string]identity.EntityID)}
	result := Result{}

	walkTSDecls(root, "", wc, &result)
	walkTSCalls(root, wc, &result)

	return result, nil
}

func walkTSDecls(n *sitter.Node, enclosingClass string, wc *tsWalkCtx, result *Result) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_declaration":
			extractTSFunction(child, wc, result, "")
		case "class_declaration", "abstract_class_declaration":
			className := tsNodeName(child, wc)
			extractTSClassOrInterface(child, wc, result, identity.KindClass)
			walkTSClassBody(child, className, wc, result)
			continue // body already walked with class context
		case "interface_declaration":
			extractTSClassOrInterface(child, wc, result, identity.KindInterface)
		case "import_statement":
			extractTSImport(child, wc, result)
		}
		walkTSDecls(child, enclosingClass, wc, result)
	}
}

func walkTSClassBody(classNode *sitter.Node, className string, wc *tsWalkCtx, result *Result) {
	body := classNode.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() == "method_definition" {
			extractTSFunction(member, wc, result, className)
		}
	}
}

func tsNodeName(n *sitter.Node, wc *tsWalkCtx) string {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return nameNode.Content(wc.source)
}

func extractTSFunction(node *sitter.Node, wc *tsWalkCtx, result *Result, className string) {
	name := tsNodeName(node, wc)
	qualifiedName := name
	kind := identity.KindFunction
	if className != "" {
		qualifiedName = className + "." + name
		kind = identity.KindMethod
	}

	line := int(node.StartPoint().Row) + 1
	col := int(node.StartPoint().Column) + 1
	canonicalPath := wc.filePath + "#" + qualifiedName
	id := identity.New(wc.pkgCtx.Repo, wc.pkgCtx.Package, kind, canonicalPath)

	visibility := "public"
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, "#") {
		visibility = "private"
	}

	result.Nodes = append(result.Nodes, seedstore.Node{
		EntityID:      id.String(),
		Name:          qualifiedName,
		QualifiedName: qualifiedName,
		Kind:          string(kind),
		Visibility:    visibility,
		SourceFile:    wc.filePath,
		Line:          int32(line),
		Column:        int32(col),
		Repo:          wc.pkgCtx.Repo,
		Package:       wc.pkgCtx.Package,
		Branch:        wc.pkgCtx.Branch,
	})

	wc.funcByName[qualifiedName] = id
	if className == "" {
		wc.funcByName[name] = id
	}
}

func extractTSClassOrInterface(node *sitter.Node, wc *tsWalkCtx, result *Result, kind identity.Kind) {
	name := tsNodeName(node, wc)
	if name == "" {
		return
	}
	line := int(node.StartPoint().Row) + 1
	canonicalPath := wc.filePath + "#" + name
	id := identity.New(wc.pkgCtx.Repo, wc.pkgCtx.Package, kind, canonicalPath)

	result.Nodes = append(result.Nodes, seedstore.Node{
		EntityID:      id.String(),
		Name:          name,
		QualifiedName: name,
		Kind:          string(kind),
		Visibility:    "public",
		SourceFile:    wc.filePath,
		Line:          int32(line),
		Repo:          wc.pkgCtx.Repo,
		Package:       wc.pkgCtx.Package,
		Branch:        wc.pkgCtx.Branch,
	})

	// EXTENDS / IMPLEMENTS edges from heritage clauses, when present.
	for i := 0; i < int(node.NamedChildCount()); i++ {
		clause := node.NamedChild(i)
		if clause.Type() != "class_heritage" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			heritageItem := clause.NamedChild(j)
			edgeType := seedstore.EdgeExtends
			if heritageItem.Type() == "implements_clause" {
				edgeType = seedstore.EdgeImplements
			}
			result.Edges = append(result.Edges, seedstore.Edge{
				SourceEntityID: id.String(),
				TargetEntityID: identity.Unresolved,
				EdgeType:       edgeType,
				SourceFilePath: wc.filePath,
				SourceLine:     int32(line),
				PropertiesJSON: fmt.Sprintf(`{"unresolved_name":%q}`, heritageItem.Content(wc.source)),
				Branch:         wc.pkgCtx.Branch,
			})
		}
	}
}

func extractTSImport(node *sitter.Node, wc *tsWalkCtx, result *Result) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	modulePath := strings.Trim(sourceNode.Content(wc.source), "\"'`")
	line := int(node.StartPoint().Row) + 1

	var clause *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if c := node.NamedChild(i); c.Type() == "import_clause" {
			clause = c
			break
		}
	}
	if clause == nil {
		// Side-effect import: `import "module";`
		result.ExternalRefs = append(result.ExternalRefs, seedstore.ExternalRef{
			SourceFile:      wc.filePath,
			Line:            int32(line),
			Name:            modulePath,
			ImportStyle:     "side-effect",
			ModuleSpecifier: modulePath,
			Resolution:      seedstore.ResolutionUnresolved,
			Branch:          wc.pkgCtx.Branch,
		})
		return
	}

	walkTSImportClause(clause, modulePath, line, wc, result)
}

func walkTSImportClause(n *sitter.Node, modulePath string, line int, wc *tsWalkCtx, result *Result) {
	switch n.Type() {
	case "identifier":
		emitTSImportName(n.Content(wc.source), "default", modulePath, line, wc, result)
	case "namespace_import":
		emitTSImportName(n.Content(wc.source), "namespace", modulePath, line, wc, result)
	case "named_imports":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			spec := n.NamedChild(i)
			nameNode := spec.ChildByFieldName("name")
			alias := ""
			if aliasNode := spec.ChildByFieldName("alias"); aliasNode != nil {
				alias = aliasNode.Content(wc.source)
			}
			if nameNode != nil {
				ref := seedstore.ExternalRef{
					SourceFile:      wc.filePath,
					Line:            int32(line),
					Name:            nameNode.Content(wc.source),
					ImportStyle:     "named",
					ModuleSpecifier: modulePath,
					Alias:           alias,
					Resolution:      seedstore.ResolutionUnresolved,
					Branch:          wc.pkgCtx.Branch,
				}
				result.ExternalRefs = append(result.ExternalRefs, ref)
			}
		}
	default:
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walkTSImportClause(n.NamedChild(i), modulePath, line, wc, result)
		}
	}
}

func emitTSImportName(name, style, modulePath string, line int, wc *tsWalkCtx, result *Result) {
	result.ExternalRefs = append(result.ExternalRefs, seedstore.ExternalRef{
		SourceFile:      wc.filePath,
		Line:            int32(line),
		Name:            name,
		ImportStyle:     style,
		ModuleSpecifier: modulePath,
		Resolution:      seedstore.ResolutionUnresolved,
		Branch:          wc.pkgCtx.Branch,
	})
}

func walkTSCalls(n *sitter.Node, wc *tsWalkCtx, result *Result) {
	switch n.Type() {
	case "function_declaration", "method_definition":
		callerName := tsCallerName(n, wc)
		if callerID, ok := wc.funcByName[callerName]; ok {
			walkTSCallExpressions(bodyOf(n), wc, result, callerID)
		}
	case "arrow_function", "function_expression":
		wc.anonCount++
		anonName := fmt.Sprintf("$anon_%d", wc.anonCount)
		canonicalPath := wc.filePath + "#" + anonName
		id := identity.New(wc.pkgCtx.Repo, wc.pkgCtx.Package, identity.KindFunction, canonicalPath)
		line := int(n.StartPoint().Row) + 1
		result.Nodes = append(result.Nodes, seedstore.Node{
			EntityID:   id.String(),
			Name:       anonName,
			SourceFile: wc.filePath,
			Line:       int32(line),
			Kind:       string(identity.KindFunction),
			Visibility: "private",
			Repo:       wc.pkgCtx.Repo,
			Package:    wc.pkgCtx.Package,
			Branch:     wc.pkgCtx.Branch,
		})
		walkTSCallExpressions(bodyOf(n), wc, result, id)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		walkTSCalls(n.Child(i), wc, result)
	}
}

func bodyOf(n *sitter.Node) *sitter.Node {
	if body := n.ChildByFieldName("body"); body != nil {
		return body
	}
	return n
}

func tsCallerName(n *sitter.Node, wc *tsWalkCtx) string {
	name := tsNodeName(n, wc)
	return name
}

func walkTSCallExpressions(n *sitter.Node, wc *tsWalkCtx, result *Result, callerID identity.EntityID) {
	if n == nil {
		return
	}
	if n.Type() == "arrow_function" || n.Type() == "function_expression" {
		return // handled independently by walkTSCalls
	}
	if n.Type() == "call_expression" {
		fnNode := n.ChildByFieldName("function")
		if fnNode != nil {
			emitTSCall(fnNode, n, wc, result, callerID)
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walkTSCallExpressions(n.Child(i), wc, result, callerID)
	}
}

func emitTSCall(fnNode, callNode *sitter.Node, wc *tsWalkCtx, result *Result, callerID identity.EntityID) {
	line := int(callNode.StartPoint().Row) + 1
	col := int(callNode.StartPoint().Column) + 1

	switch fnNode.Type() {
	case "identifier":
		calleeName := fnNode.Content(wc.source)
		if calleeID, ok := wc.funcByName[calleeName]; ok {
			result.Edges = append(result.Edges, seedstore.Edge{
				SourceEntityID: callerID.String(),
				TargetEntityID: calleeID.String(),
				EdgeType:       seedstore.EdgeCalls,
				SourceFilePath: wc.filePath,
				SourceLine:     int32(line),
				SourceColumn:   int32(col),
				Branch:         wc.pkgCtx.Branch,
			})
			return
		}
		result.Edges = append(result.Edges, seedstore.Edge{
			SourceEntityID: callerID.String(),
			TargetEntityID: identity.Unresolved,
			EdgeType:       seedstore.EdgeCalls,
			SourceFilePath: wc.filePath,
			SourceLine:     int32(line),
			SourceColumn:   int32(col),
			PropertiesJSON: fmt.Sprintf(`{"unresolved_name":%q}`, calleeName),
			Branch:         wc.pkgCtx.Branch,
		})
	case "member_expression":
		object := fnNode.ChildByFieldName("object")
		property := fnNode.ChildByFieldName("property")
		if object == nil || property == nil {
			return
		}
		qualifier := object.Content(wc.source)
		calleeName := property.Content(wc.source)
		result.Edges = append(result.Edges, seedstore.Edge{
			SourceEntityID: callerID.String(),
			TargetEntityID: identity.Unresolved,
			EdgeType:       seedstore.EdgeCalls,
			SourceFilePath: wc.filePath,
			SourceLine:     int32(line),
			SourceColumn:   int32(col),
			PropertiesJSON: fmt.Sprintf(`{"qualifier":%q,"unresolved_name":%q}`, qualifier, calleeName),
			Branch:         wc.pkgCtx.Branch,
		})
	}
}
