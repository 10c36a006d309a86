package match

import (
	"strings"

	"github.com/masmgr/codetracker-go/internal/model"
)

// identityFunc decides whether candidate denotes the same logical entity as
// target. Both arguments have the same kind and candidate is present.
type identityFunc func(target, candidate model.CodeElement) bool

var identities = map[model.ElementKind]identityFunc{
	model.KindMethod:     sameMethod,
	model.KindClass:      sameNamed,
	model.KindAttribute:  sameNamed,
	model.KindVariable:   sameVariable,
	model.KindAnnotation: sameAnnotation,
	model.KindComment:    sameComment,
}

func sameNamed(target, candidate model.CodeElement) bool {
	return target.Container == candidate.Container && target.Name == candidate.Name
}

func sameMethod(target, candidate model.CodeElement) bool {
	if !sameNamed(target, candidate) {
		return false
	}
	if target.Signature == "" || candidate.Signature == "" {
		return true
	}
	return NormalizeParameters(target.Signature) == NormalizeParameters(candidate.Signature)
}

func sameVariable(target, candidate model.CodeElement) bool {
	if !sameNamed(target, candidate) {
		return false
	}
	if target.Span.IsZero() || candidate.Span.IsZero() {
		return true
	}
	return target.Span.StartLine == candidate.Span.StartLine
}

func sameAnnotation(target, candidate model.CodeElement) bool {
	return sameVariable(target, candidate)
}

func sameComment(target, candidate model.CodeElement) bool {
	if target.Container != candidate.Container {
		return false
	}
	if target.Span.IsZero() || candidate.Span.IsZero() {
		return strings.TrimSpace(target.Signature) == strings.TrimSpace(candidate.Signature)
	}
	return target.Span == candidate.Span
}

// NormalizeParameters reduces a method signature to its parameter type list,
// e.g. "f(final List<String> xs, int... n)" becomes "(List,int[])".
// Parameter names, the final modifier, generic arguments and whitespace are
// dropped; varargs are written as arrays.
func NormalizeParameters(signature string) string {
	open := strings.IndexByte(signature, '(')
	closing := strings.LastIndexByte(signature, ')')
	if open < 0 || closing < open {
		return "()"
	}

	params := splitParameters(stripGenerics(signature[open+1 : closing]))
	types := make([]string, 0, len(params))
	for _, p := range params {
		if t := parameterType(p); t != "" {
			types = append(types, t)
		}
	}
	return "(" + strings.Join(types, ",") + ")"
}

func stripGenerics(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func splitParameters(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// parameterType extracts the type of one declared parameter.
func parameterType(param string) string {
	param = strings.ReplaceAll(param, "...", " [] ")

	var tokens []string
	for _, f := range strings.Fields(param) {
		switch {
		case f == "final" || strings.HasPrefix(f, "@"):
			continue
		case strings.HasPrefix(f, "[") && len(tokens) > 0:
			tokens[len(tokens)-1] += f
		default:
			tokens = append(tokens, f)
		}
	}

	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return tokens[0]
	default:
		// "Type name" or "Type[] name": the trailing token is the name.
		return strings.Join(tokens[:len(tokens)-1], "")
	}
}
