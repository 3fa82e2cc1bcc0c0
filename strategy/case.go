package strategy

import (
	"fmt"
	"strings"

	"github.com/99designs/gqlgen/codegen/templates"
	"github.com/ettle/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CaseFormat names a word-based key format.
type CaseFormat string

const (
	CaseAda      CaseFormat = "ada"      // Some_Value
	CaseCamel    CaseFormat = "camel"    // someValue
	CaseCobol    CaseFormat = "cobol"    // SOME-VALUE
	CaseKebab    CaseFormat = "kebab"    // some-value
	CaseMacro    CaseFormat = "macro"    // SOME_VALUE
	CasePascal   CaseFormat = "pascal"   // SomeValue
	CaseSentence CaseFormat = "sentence" // Some value
	CaseSnake    CaseFormat = "snake"    // some_value
	CaseTitle    CaseFormat = "title"    // Some Value
	CaseTrain    CaseFormat = "train"    // Some-Value
)

var caseFormats = []CaseFormat{
	CaseAda, CaseCamel, CaseCobol, CaseKebab, CaseMacro,
	CasePascal, CaseSentence, CaseSnake, CaseTitle, CaseTrain,
}

// ParseCaseFormat validates a format name.
func ParseCaseFormat(s string) (CaseFormat, error) {
	f := CaseFormat(strings.ToLower(s))
	for _, known := range caseFormats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown case format %q", s)
}

// Case converts keys by splitting the field name into words (case changes,
// acronym ends, '_', '-', '.' and spaces) and joining them in the given
// format. Camel and Pascal follow Go initialism rules (userId -> UserID).
type Case struct {
	Format CaseFormat
}

// NewCase returns a Case for a format name.
func NewCase(format string) (Case, error) {
	f, err := ParseCaseFormat(format)
	if err != nil {
		return Case{}, err
	}
	return Case{Format: f}, nil
}

func (c Case) Key(name string) string {
	switch c.Format {
	case CaseCamel:
		return templates.ToGoPrivate(name)
	case CasePascal:
		return templates.ToGo(name)
	case CaseAda:
		return strcase.ToCase(name, strcase.TitleCase, '_')
	case CaseCobol:
		return strcase.ToKEBAB(name)
	case CaseKebab:
		return strcase.ToKebab(name)
	case CaseMacro:
		return strcase.ToSNAKE(name)
	case CaseSnake:
		return strcase.ToSnake(name)
	case CaseTitle:
		// Casers are stateful, so one per call.
		return cases.Title(language.Und).String(strcase.ToCase(name, strcase.LowerCase, ' '))
	case CaseTrain:
		return strcase.ToCase(name, strcase.TitleCase, '-')
	case CaseSentence:
		return UpperFirst{}.Key(strcase.ToCase(name, strcase.LowerCase, ' '))
	default:
		return name
	}
}
