package docgen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CodeFormatter は生成コードの各部分を文字列にフォーマットする。
type CodeFormatter struct{}

// NewCodeFormatter は新しい CodeFormatter を作成する。
func NewCodeFormatter() *CodeFormatter {
	return &CodeFormatter{}
}

// FormatHeader はファイル先頭のコメント、package 句、import 宣言をフォーマットする。
//
// imports は import path から alias への対応。alias が path の最後の要素と同じでも
// 常に明示する。
func (f *CodeFormatter) FormatHeader(pkgName string, imports map[string]string) string {
	var buf strings.Builder

	buf.WriteString("// Code generated by jsoncoder; DO NOT EDIT.\n\n")
	buf.WriteString(fmt.Sprintf("package %s\n\n", pkgName))
	buf.WriteString("import (\n")
	buf.WriteString("\t\"reflect\"\n\n")
	buf.WriteString("\t\"github.com/Yamashou/jsoncoder/descriptor\"\n")

	paths := make([]string, 0, len(imports))
	for p := range imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		buf.WriteString(fmt.Sprintf("\t%s %s\n", imports[p], strconv.Quote(p)))
	}
	buf.WriteString(")\n\n")

	return buf.String()
}

// FormatFieldDocs は 1 つの型のフィールドドキュメント登録呼び出しをフォーマットする。
//
// 戻り値の例:
//
//	descriptor.RegisterFieldDocs(reflect.TypeFor[Order](), map[string]string{
//		"Items": "@elem []Item",
//	})
func (f *CodeFormatter) FormatFieldDocs(typeExpr string, fields map[string]string) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("\tdescriptor.RegisterFieldDocs(reflect.TypeFor[%s](), map[string]string{\n", typeExpr))

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		buf.WriteString(fmt.Sprintf("\t\t%s: %s,\n", strconv.Quote(name), strconv.Quote(fields[name])))
	}
	buf.WriteString("\t})\n")

	return buf.String()
}

// FormatRegisterType は list の要素型を名前で引けるようにする登録呼び出しをフォーマットする。
func (f *CodeFormatter) FormatRegisterType(typeExpr string) string {
	return fmt.Sprintf("\tdescriptor.RegisterType[%s]()\n", typeExpr)
}
