// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/devac-dev/codegraph/internal/identity"
	"github.com/devac-dev/codegraph/internal/seedstore"
)

// PythonParser is the tree-sitter-backed structural parser for Python.
// The teacher pack carries no Python parser; this one follows the same
// two-pass (declarations, then calls) shape as GoParser and
// TypeScriptParser, substituting Python's grammar node names and its
// "lambda" anonymous-function form for $anon_N naming.
type PythonParser struct{}

func NewPythonParser() *PythonParser { return &PythonParser{} }

func (p *PythonParser) Language() string     { return "python" }
func (p *PythonParser) Extensions() []string { return []string{".py", ".pyi"} }
func (p *PythonParser) Version() string      { return "python-treesitter-v1" }

type pyWalkCtx struct {
	source     []byte
	filePath   string
	pkgCtx     PackageContext
	funcByName map[string]identity.EntityID
	anonCount  int
}

func (p *PythonParser) Parse(filePath string, source []byte, pkgCtx PackageContext) (Result, error) {
	sp := sitter.NewParser()
	sp.SetLanguage(python.GetLanguage())

	tree, err := sp.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return Result{ParseErrors: []ParseError{{File: filePath, Message: fmt.Sprintf("tree-sitter parse failed: %v", err)}}}, nil
	}
	root := tree.RootNode()

	wc := &pyWalkCtx{source: source, filePath: filePath, pkgCtx: pkgCtx, funcByName: make(map[string]identity.EntityID)}
	result := Result{}

	walkPyDecls(root, "", wc, &result)
	walkPyCalls(root, wc, &result)

	return result, nil
}

func walkPyDecls(n *sitter.Node, enclosingClass string, wc *pyWalkCtx, result *Result) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_definition":
			extractPyFunction(child, wc, result, enclosingClass)
		case "class_definition":
			className := pyNodeName(child, wc)
			extractPyClass(child, wc, result)
			if body := child.ChildByFieldName("body"); body != nil {
				walkPyDecls(body, className, wc, result)
			}
			continue
		case "import_statement", "import_from_statement":
			extractPyImport(child, wc, result)
		}
		walkPyDecls(child, enclosingClass, wc, result)
	}
}

func pyNodeName(n *sitter.Node, wc *pyWalkCtx) string {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return nameNode.Content(wc.source)
}

func extractPyFunction(node *sitter.Node, wc *pyWalkCtx, result *Result, className string) {
	name := pyNodeName(node, wc)
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
	if strings.HasPrefix(name, "_") {
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

func extractPyClass(node *sitter.Node, wc *pyWalkCtx, result *Result) {
	name := pyNodeName(node, wc)
	if name == "" {
		return
	}
	line := int(node.StartPoint().Row) + 1
	canonicalPath := wc.filePath + "#" + name
	id := identity.New(wc.pkgCtx.Repo, wc.pkgCtx.Package, identity.KindClass, canonicalPath)

	result.Nodes = append(result.Nodes, seedstore.Node{
		EntityID:      id.String(),
		Name:          name,
		QualifiedName: name,
		Kind:          string(identity.KindClass),
		Visibility:    "public",
		SourceFile:    wc.filePath,
		Line:          int32(line),
		Repo:          wc.pkgCtx.Repo,
		Package:       wc.pkgCtx.Package,
		Branch:        wc.pkgCtx.Branch,
	})

	if argList := node.ChildByFieldName("superclasses"); argList != nil {
		for i := 0; i < int(argList.NamedChildCount()); i++ {
			base := argList.NamedChild(i)
			result.Edges = append(result.Edges, seedstore.Edge{
				SourceEntityID: id.String(),
				TargetEntityID: identity.Unresolved,
				EdgeType:       seedstore.EdgeExtends,
				SourceFilePath: wc.filePath,
				SourceLine:     int32(line),
				PropertiesJSON: fmt.Sprintf(`{"unresolved_name":%q}`, base.Content(wc.source)),
				Branch:         wc.pkgCtx.Branch,
			})
		}
	}
}

func extractPyImport(node *sitter.Node, wc *pyWalkCtx, result *Result) {
	line := int(node.StartPoint().Row) + 1

	if node.Type() == "import_from_statement" {
		moduleNode := node.ChildByFieldName("module_name")
		modulePath := ""
		if moduleNode != nil {
			modulePath = moduleNode.Content(wc.source)
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			item := node.NamedChild(i)
			if item.Type() != "dotted_name" && item.Type() != "aliased_import" && item.Type() != "identifier" {
				continue
			}
			if item == moduleNode {
				continue
			}
			name := item.Content(wc.source)
			alias := ""
			if item.Type() == "aliased_import" {
				if n := item.ChildByFieldName("name"); n != nil {
					name = n.Content(wc.source)
				}
				if a := item.ChildByFieldName("alias"); a != nil {
					alias = a.Content(wc.source)
				}
			}
			result.ExternalRefs = append(result.ExternalRefs, seedstore.ExternalRef{
				SourceFile:      wc.filePath,
				Line:            int32(line),
				Name:            name,
				ImportStyle:     "named",
				ModuleSpecifier: modulePath,
				Alias:           alias,
				Resolution:      seedstore.ResolutionUnresolved,
				Branch:          wc.pkgCtx.Branch,
			})
		}
		return
	}

	// import_statement: `import a.b.c` or `import a.b.c as x`
	for i := 0; i < int(node.NamedChildCount()); i++ {
		item := node.NamedChild(i)
		modulePath := item.Content(wc.source)
		alias := ""
		if item.Type() == "aliased_import" {
			if n := item.ChildByFieldName("name"); n != nil {
				modulePath = n.Content(wc.source)
			}
			if a := item.ChildByFieldName("alias"); a != nil {
				alias = a.Content(wc.source)
			}
		}
		result.ExternalRefs = append(result.ExternalRefs, seedstore.ExternalRef{
			SourceFile:      wc.filePath,
			Line:            int32(line),
			Name:            modulePath,
			ImportStyle:     "named",
			ModuleSpecifier: modulePath,
			Alias:           alias,
			Resolution:      seedstore.ResolutionUnresolved,
			Branch:          wc.pkgCtx.Branch,
		})
	}
}

func walkPyCalls(n *sitter.Node, wc *pyWalkCtx, result *Result) {
	switch n.Type() {
	case "function_definition":
		callerName := tsFunctionCallerName(n, wc)
		if callerID, ok := wc.funcByName[callerName]; ok {
			if body := n.ChildByFieldName("body"); body != nil {
				walkPyCallExpressions(body, wc, result, callerID)
			}
		}
	case "lambda":
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
		if body := n.ChildByFieldName("body"); body != nil {
			walkPyCallExpressions(body, wc, result, id)
		}
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		walkPyCalls(n.Child(i), wc, result)
	}
}

func tsFunctionCallerName(n *sitter.Node, wc *pyWalkCtx) string {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return nameNode.Content(wc.source)
}

func walkPyCallExpressions(n *sitter.Node, wc *pyWalkCtx, result *Result, callerID identity.EntityID) {
	if n.Type() == "lambda" {
		return // handled independently
	}
	if n.Type() == "call" {
		fnNode := n.ChildByFieldName("function")
		if fnNode != nil {
			emitPyCall(fnNode, n, wc, result, callerID)
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walkPyCallExpressions(n.Child(i), wc, result, callerID)
	}
}

func emitPyCall(fnNode, callNode *sitter.Node, wc *pyWalkCtx, result *Result, callerID identity.EntityID) {
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
	case "attribute":
		object := fnNode.ChildByFieldName("object")
		attr := fnNode.ChildByFieldName("attribute")
		if object == nil || attr == nil {
			return
		}
		qualifier := object.Content(wc.source)
		calleeName := attr.Content(wc.source)
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
