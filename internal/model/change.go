package model

import (
	"fmt"
	"sort"
	"strings"
)

// ChangeKind classifies a structural transformation between two versions.
type ChangeKind int

const (
	ChangeIntroduced ChangeKind = iota
	ChangeNone
	ChangeBody
	ChangeRename
	ChangeMove
	ChangeContainer
	ChangeModifier
	ChangeParameter
	ChangeReturnType
	ChangeException
	ChangeDocumentation
	ChangeAnnotation
	ChangeType
	ChangeMerge
	ChangeSplit
	ChangeRemoved
)

var changeLabels = map[ChangeKind]string{
	ChangeIntroduced:    "Introduced",
	ChangeNone:          "No Change",
	ChangeBody:          "Body Change",
	ChangeRename:        "Rename",
	ChangeMove:          "Move",
	ChangeContainer:     "Container Change",
	ChangeModifier:      "Modifier Change",
	ChangeParameter:     "Parameter Change",
	ChangeReturnType:    "Return Type Change",
	ChangeException:     "Exception Change",
	ChangeDocumentation: "Documentation Change",
	ChangeAnnotation:    "Annotation Change",
	ChangeType:          "Type Change",
	ChangeMerge:         "Merge",
	ChangeSplit:         "Split",
	ChangeRemoved:       "Removed",
}

// String returns the report label, e.g. "Body Change".
func (k ChangeKind) String() string {
	if s, ok := changeLabels[k]; ok {
		return s
	}
	return "Unknown"
}

// Cosmetic reports whether the change leaves the element's behaviour alone.
func (k ChangeKind) Cosmetic() bool {
	switch k {
	case ChangeNone, ChangeRename, ChangeMove, ChangeContainer:
		return true
	default:
		return false
	}
}

// ParseChangeKind accepts report labels ("Body Change") and short forms
// ("body", "return_type").
func ParseChangeKind(s string) (ChangeKind, error) {
	norm := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
	norm = strings.TrimSuffix(norm, "change")

	switch norm {
	case "introduced", "added", "add":
		return ChangeIntroduced, nil
	case "no", "none", "unchanged":
		return ChangeNone, nil
	case "body":
		return ChangeBody, nil
	case "rename":
		return ChangeRename, nil
	case "move":
		return ChangeMove, nil
	case "container":
		return ChangeContainer, nil
	case "modifier":
		return ChangeModifier, nil
	case "parameter", "param":
		return ChangeParameter, nil
	case "returntype", "return":
		return ChangeReturnType, nil
	case "exception":
		return ChangeException, nil
	case "documentation", "doc":
		return ChangeDocumentation, nil
	case "annotation":
		return ChangeAnnotation, nil
	case "type":
		return ChangeType, nil
	case "merge":
		return ChangeMerge, nil
	case "split":
		return ChangeSplit, nil
	case "removed", "remove":
		return ChangeRemoved, nil
	default:
		return 0, fmt.Errorf("unknown change kind %q", s)
	}
}

// Change is one classified transformation. Description is kept for
// reporting only.
type Change struct {
	Kind        ChangeKind
	Description string
}

// SameKinds reports whether two change lists carry the same set of kinds.
func SameKinds(a, b []Change) bool {
	ka, kb := Kinds(a), Kinds(b)
	if len(ka) != len(kb) {
		return false
	}
	for i := range ka {
		if ka[i] != kb[i] {
			return false
		}
	}
	return true
}

// Kinds returns the distinct kinds of changes in ascending order.
func Kinds(changes []Change) []ChangeKind {
	seen := make(map[ChangeKind]bool, len(changes))
	kinds := make([]ChangeKind, 0, len(changes))
	for _, c := range changes {
		if seen[c.Kind] {
			continue
		}
		seen[c.Kind] = true
		kinds = append(kinds, c.Kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// HasKind reports whether any change has kind k.
func HasKind(changes []Change, k ChangeKind) bool {
	for _, c := range changes {
		if c.Kind == k {
			return true
		}
	}
	return false
}
