// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/devac-dev/codegraph/internal/identity"
	"github.com/devac-dev/codegraph/internal/seedstore"
)

// GoParser is the tree-sitter-backed structural parser for Go source,
// grounded on the teacher's TreeSitterParser in pkg/ingestion/parser_go.go
// (walkGoAST, extractGoCallsFromNodeV2, extractGoImports, extractGoTypes),
// generalized to emit this system's Node/Edge/ExternalRef schema instead
// of the teacher's flat Function/Call/Import structs.
type GoParser struct{}

// NewGoParser constructs a GoParser. Construction itself does no I/O; a
// fresh tree-sitter parser is created per Parse call since sitter.Parser
// is not declared safe for concurrent reuse across goroutines.
func NewGoParser() *GoParser { return &GoParser{} }

func (p *GoParser) Language() string     { return "go" }
func (p *GoParser) Extensions() []string { return []string{".go"} }
func (p *GoParser) Version() string      { return "go-treesitter-v1" }

type goWalkCtx struct {
	source     []byte
	filePath   string
	pkgCtx     PackageContext
	funcByName map[string]identity.EntityID // unqualified func/method name -> id, for same-file resolution
	anonCount  int
}

// Parse implements StructuralParser for Go source files.
func (p *GoParser) Parse(filePath string, source []byte, pkgCtx PackageContext) (Result, error) {
	sp := sitter.NewParser()
	sp.SetLanguage(golang.GetLanguage())

	tree, err := sp.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return Result{ParseErrors: []ParseError{{File: filePath, Message: fmt.Sprintf("tree-sitter parse failed: %v", err)}}}, nil
	}
	root := tree.RootNode()
	result := Result{}
	if root.HasError() {
		// Tolerant of syntax errors: keep walking, but record a diagnostic
		// (§4.4 "parse errors are returned, not thrown").
		result.ParseErrors = append(result.ParseErrors, ParseError{File: filePath, Message: "syntax error; declarations taken from a partial parse tree"})
	}

	wc := &goWalkCtx{source: source, filePath: filePath, pkgCtx: pkgCtx, funcByName: make(map[string]identity.EntityID)}

	// Pass 1: declarations (functions, methods, types, imports) so that
	// pass 2's call-extraction can resolve same-file references.
	walkGoDecls(root, wc, &result)
	// Pass 2: calls and references within each function body.
	walkGoCalls(root, wc, &result)

	return result, nil
}

func walkGoDecls(n *sitter.Node, wc *goWalkCtx, result *Result) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_declaration":
			extractGoFunction(child, wc, result, "")
		case "method_declaration":
			recv := extractGoReceiverType(child, wc)
			extractGoFunction(child, wc, result, recv)
		case "type_declaration":
			extractGoTypeDecl(child, wc, result)
		case "import_declaration":
			extractGoImportDecl(child, wc, result)
		}
		walkGoDecls(child, wc, result)
	}
}

func extractGoReceiverType(methodNode *sitter.Node, wc *goWalkCtx) string {
	recvList := methodNode.ChildByFieldName("receiver")
	if recvList == nil {
		return ""
	}
	for i := 0; i < int(recvList.NamedChildCount()); i++ {
		param := recvList.NamedChild(i)
		typeNode := param.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		return extractGoBaseTypeName(typeNode, wc)
	}
	return ""
}

func extractGoBaseTypeName(typeNode *sitter.Node, wc *goWalkCtx) string {
	switch typeNode.Type() {
	case "pointer_type":
		inner := typeNode.NamedChild(0)
		if inner != nil {
			return extractGoBaseTypeName(inner, wc)
		}
	case "generic_type":
		inner := typeNode.ChildByFieldName("type")
		if inner != nil {
			return extractGoBaseTypeName(inner, wc)
		}
	}
	return typeNode.Content(wc.source)
}

func extractGoFunction(node *sitter.Node, wc *goWalkCtx, result *Result, receiverType string) {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(wc.source)
	}
	qualifiedName := name
	kind := identity.KindFunction
	if receiverType != "" {
		qualifiedName = receiverType + "." + name
		kind = identity.KindMethod
	}

	line := int(node.StartPoint().Row) + 1
	col := int(node.StartPoint().Column) + 1
	canonicalPath := wc.filePath + "#" + qualifiedName
	id := identity.New(wc.pkgCtx.Repo, wc.pkgCtx.Package, kind, canonicalPath)

	visibility := "private"
	if name != "" && strings.ToUpper(name[:1]) == name[:1] {
		visibility = "public"
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
	if receiverType == "" {
		// Also index by bare name so pass 2 can resolve same-file calls
		// that name the function by its bare identifier.
		wc.funcByName[name] = id
	}
}

func extractGoTypeDecl(node *sitter.Node, wc *goWalkCtx, result *Result) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		spec := node.NamedChild(i)
		if spec.Type() != "type_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nameNode.Content(wc.source)
		kind := determineGoTypeKind(spec)

		line := int(spec.StartPoint().Row) + 1
		canonicalPath := wc.filePath + "#" + name
		id := identity.New(wc.pkgCtx.Repo, wc.pkgCtx.Package, kind, canonicalPath)

		visibility := "private"
		if name != "" && strings.ToUpper(name[:1]) == name[:1] {
			visibility = "public"
		}

		result.Nodes = append(result.Nodes, seedstore.Node{
			EntityID:      id.String(),
			Name:          name,
			QualifiedName: name,
			Kind:          string(kind),
			Visibility:    visibility,
			SourceFile:    wc.filePath,
			Line:          int32(line),
			Repo:          wc.pkgCtx.Repo,
			Package:       wc.pkgCtx.Package,
			Branch:        wc.pkgCtx.Branch,
		})
	}
}

func determineGoTypeKind(spec *sitter.Node) identity.Kind {
	typeNode := spec.ChildByFieldName("type")
	if typeNode == nil {
		return identity.KindTypeAlias
	}
	switch typeNode.Type() {
	case "struct_type":
		return identity.KindStruct
	case "interface_type":
		return identity.KindInterface
	default:
		return identity.KindTypeAlias
	}
}

func extractGoImportDecl(node *sitter.Node, wc *goWalkCtx, result *Result) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		spec := node.NamedChild(i)
		extractGoImportSpec(spec, wc, result)
	}
}

func extractGoImportSpec(spec *sitter.Node, wc *goWalkCtx, result *Result) {
	if spec.Type() == "import_spec_list" {
		for i := 0; i < int(spec.NamedChildCount()); i++ {
			extractGoImportSpec(spec.NamedChild(i), wc, result)
		}
		return
	}
	if spec.Type() != "import_spec" {
		return
	}

	pathNode := spec.ChildByFieldName("path")
	if pathNode == nil {
		return
	}
	modulePath := strings.Trim(pathNode.Content(wc.source), "\"")

	alias := ""
	if nameNode := spec.ChildByFieldName("name"); nameNode != nil {
		alias = nameNode.Content(wc.source)
	}

	style := "named"
	switch alias {
	case "_":
		style = "side-effect"
	case ".":
		style = "namespace"
	}

	line := int(spec.StartPoint().Row) + 1
	result.ExternalRefs = append(result.ExternalRefs, seedstore.ExternalRef{
		SourceFile:      wc.filePath,
		Line:            int32(line),
		Name:            modulePath,
		ImportStyle:     style,
		ModuleSpecifier: modulePath,
		Alias:           alias,
		Resolution:      seedstore.ResolutionUnresolved,
		Branch:          wc.pkgCtx.Branch,
	})
}

func walkGoCalls(n *sitter.Node, wc *goWalkCtx, result *Result) {
	switch n.Type() {
	case "function_declaration", "method_declaration":
		callerName := goCallerNameFromDecl(n, wc)
		if callerID, ok := wc.funcByName[callerName]; ok {
			walkGoCallExpressions(n, wc, result, callerID, callerName)
		}
	case "func_literal":
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
		walkGoCallExpressions(n, wc, result, id, anonName)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		walkGoCalls(n.Child(i), wc, result)
	}
}

func goCallerNameFromDecl(n *sitter.Node, wc *goWalkCtx) string {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := nameNode.Content(wc.source)
	if n.Type() == "method_declaration" {
		recv := extractGoReceiverType(n, wc)
		if recv != "" {
			return recv + "." + name
		}
	}
	return name
}

// walkGoCallExpressions finds call_expression nodes within the function
// body (not descending into nested function_declaration/func_literal,
// which are walked independently by walkGoCalls's own recursion).
func walkGoCallExpressions(n *sitter.Node, wc *goWalkCtx, result *Result, callerID identity.EntityID, callerName string) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	walkGoCallExpressionsRec(body, wc, result, callerID, callerName)
}

func walkGoCallExpressionsRec(n *sitter.Node, wc *goWalkCtx, result *Result, callerID identity.EntityID, callerName string) {
	if n.Type() == "func_literal" {
		return // handled by its own top-level walk
	}
	if n.Type() == "call_expression" {
		fnNode := n.ChildByFieldName("function")
		if fnNode != nil {
			emitGoCall(fnNode, n, wc, result, callerID, callerName)
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walkGoCallExpressionsRec(n.Child(i), wc, result, callerID, callerName)
	}
}

func emitGoCall(fnNode, callNode *sitter.Node, wc *goWalkCtx, result *Result, callerID identity.EntityID, callerName string) {
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
		// Unresolved same-package or builtin call: emit with sentinel
		// target so C5 can attempt cross-file resolution.
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
	case "selector_expression":
		operand := fnNode.ChildByFieldName("operand")
		field := fnNode.ChildByFieldName("field")
		if operand == nil || field == nil {
			return
		}
		qualifier := operand.Content(wc.source)
		calleeName := field.Content(wc.source)
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
		result.ExternalRefs = append(result.ExternalRefs, seedstore.ExternalRef{
			SourceFile:      wc.filePath,
			Line:            int32(line),
			Name:            calleeName,
			ImportStyle:     "named",
			ModuleSpecifier: qualifier,
			Resolution:      seedstore.ResolutionUnresolved,
			Branch:          wc.pkgCtx.Branch,
		})
	}
}
