package annotation

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax

// TypeDocs holds the element declarations found on the fields of one struct.
type TypeDocs struct {
	PkgPath  string
	PkgName  string
	Dir      string
	TypeName string
	// Fields maps a field name to its documentation text.
	Fields map[string]string
	// Elems are the element types named by the declarations that are
	// structs of the same package.
	Elems []string
}

// Load parses the packages matching patterns (relative to dir) and returns
// every struct that has at least one field documented with an @elem
// declaration, sorted by package and type name.
func Load(ctx context.Context, dir string, patterns ...string) ([]TypeDocs, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    loadMode,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	var out []TypeDocs
	for _, pkg := range pkgs {
		pkgDir := ""
		if len(pkg.GoFiles) > 0 {
			pkgDir = filepath.Dir(pkg.GoFiles[0])
		}
		declared := map[string]bool{}
		var found []TypeDocs
		for _, file := range pkg.Syntax {
			for _, td := range fileDocs(file, declared) {
				td.PkgPath = pkg.PkgPath
				td.PkgName = pkg.Name
				td.Dir = pkgDir
				found = append(found, td)
			}
		}
		for i := range found {
			found[i].Elems = localElems(found[i].Fields, declared)
		}
		out = append(out, found...)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].PkgPath != out[j].PkgPath {
			return out[i].PkgPath < out[j].PkgPath
		}
		return out[i].TypeName < out[j].TypeName
	})

	return out, nil
}

// fileDocs also records every struct type name of the file in declared.
func fileDocs(file *ast.File, declared map[string]bool) []TypeDocs {
	var out []TypeDocs
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok || ts.TypeParams != nil {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			declared[ts.Name.Name] = true
			fields := structDocs(st)
			if len(fields) == 0 {
				continue
			}
			out = append(out, TypeDocs{TypeName: ts.Name.Name, Fields: fields})
		}
	}
	return out
}

func structDocs(st *ast.StructType) map[string]string {
	fields := map[string]string{}
	for _, f := range st.Fields.List {
		doc := strings.TrimSpace(f.Doc.Text() + f.Comment.Text())
		if !strings.Contains(doc, Tag) {
			continue
		}
		for _, name := range f.Names {
			if name.IsExported() {
				fields[name.Name] = doc
			}
		}
	}
	return fields
}

func localElems(fields map[string]string, declared map[string]bool) []string {
	var elems []string
	for _, doc := range fields {
		name, _, err := ParseElem(doc)
		if err != nil || !declared[name] || slices.Contains(elems, name) {
			continue
		}
		elems = append(elems, name)
	}
	sort.Strings(elems)
	return elems
}
