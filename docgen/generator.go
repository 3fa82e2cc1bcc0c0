// Package docgen generates a Go file that registers field documentation
// (the @elem list declarations) with the descriptor registry, so that list
// element types declared in comments are known at run time.
package docgen

import (
	"context"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/imports"

	"github.com/Yamashou/jsoncoder/annotation"
	"github.com/Yamashou/jsoncoder/config"
)

// Generator renders and writes the registration file described by a config.
type Generator struct {
	cfg       *config.Config
	formatter *CodeFormatter
}

// New creates a Generator for cfg.
func New(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg, formatter: NewCodeFormatter()}
}

// Generate loads the configured packages, writes the output file and
// returns its path.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	docs, err := annotation.Load(ctx, g.cfg.Dir, g.cfg.Packages...)
	if err != nil {
		return "", fmt.Errorf("load packages: %w", err)
	}

	selected := docs[:0:0]
	for _, td := range docs {
		if g.cfg.WantsType(td.TypeName) {
			selected = append(selected, td)
		}
	}
	Logger().Debug("documented types", zap.Int("found", len(docs)), zap.Int("selected", len(selected)))

	outPath, err := filepath.Abs(g.cfg.OutputPath())
	if err != nil {
		return "", fmt.Errorf("resolve output: %w", err)
	}

	src := g.Render(filepath.Dir(outPath), selected)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}

	formatted, err := imports.Process(outPath, nil, nil)
	if err != nil {
		return "", fmt.Errorf("go imports: %w", err)
	}
	if err := os.WriteFile(outPath, formatted, 0o644); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}

	Logger().Info("generated", zap.String("file", outPath), zap.Int("types", len(selected)))
	return outPath, nil
}

// Render builds the source of the registration file. Types whose package
// directory is outDir are referred to unqualified; others are imported
// under their package name. Unexported types of other packages cannot be
// referred to and are skipped.
func (g *Generator) Render(outDir string, docs []annotation.TypeDocs) []byte {
	importsByPath := map[string]string{}
	usedAliases := map[string]bool{g.cfg.Output.Package: true}
	alias := func(td annotation.TypeDocs) string {
		if a, ok := importsByPath[td.PkgPath]; ok {
			return a
		}
		a := td.PkgName
		for i := 2; usedAliases[a] || a == "reflect" || a == "descriptor"; i++ {
			a = td.PkgName + strconv.Itoa(i)
		}
		usedAliases[a] = true
		importsByPath[td.PkgPath] = a
		return a
	}

	var body strings.Builder
	for _, td := range docs {
		qualifier := ""
		if !sameDir(td.Dir, outDir) {
			if !token.IsExported(td.TypeName) {
				Logger().Warn("skipping unexported type of another package",
					zap.String("package", td.PkgPath), zap.String("type", td.TypeName))
				continue
			}
			qualifier = alias(td) + "."
		}

		body.WriteString(g.formatter.FormatFieldDocs(qualifier+td.TypeName, td.Fields))
		for _, elem := range td.Elems {
			if qualifier != "" && !token.IsExported(elem) {
				continue
			}
			body.WriteString(g.formatter.FormatRegisterType(qualifier + elem))
		}
	}

	var buf strings.Builder
	buf.WriteString(g.formatter.FormatHeader(g.cfg.Output.Package, importsByPath))
	buf.WriteString("func init() {\n")
	buf.WriteString(body.String())
	buf.WriteString("}\n")

	return []byte(buf.String())
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
