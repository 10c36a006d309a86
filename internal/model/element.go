// Package model holds the value types shared by the tracker, the graph and the
// report layer: versions, code elements and the changes between them.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Version is one commit snapshot in the repository's ancestry.
type Version struct {
	ID   string
	Time time.Time
}

// IsZero reports whether the version carries no commit identifier.
func (v Version) IsZero() bool {
	return v.ID == ""
}

// Short returns an abbreviated commit identifier for display.
func (v Version) Short() string {
	if len(v.ID) > 8 {
		return v.ID[:8]
	}
	return v.ID
}

// ElementKind discriminates the kinds of source entity that can be tracked.
type ElementKind string

const (
	KindMethod     ElementKind = "method"
	KindClass      ElementKind = "class"
	KindAttribute  ElementKind = "attribute"
	KindVariable   ElementKind = "variable"
	KindAnnotation ElementKind = "annotation"
	KindComment    ElementKind = "comment"
)

// ElementKinds lists every kind in a fixed order.
var ElementKinds = []ElementKind{
	KindMethod,
	KindClass,
	KindAttribute,
	KindVariable,
	KindAnnotation,
	KindComment,
}

// ParseElementKind converts a user-supplied kind name to an ElementKind.
func ParseElementKind(s string) (ElementKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "method", "function", "func":
		return KindMethod, nil
	case "class", "type":
		return KindClass, nil
	case "attribute", "field", "attr":
		return KindAttribute, nil
	case "variable", "var", "local":
		return KindVariable, nil
	case "annotation":
		return KindAnnotation, nil
	case "comment", "doc":
		return KindComment, nil
	default:
		names := make([]string, len(ElementKinds))
		for i, k := range ElementKinds {
			names[i] = string(k)
		}
		return "", fmt.Errorf("unknown element kind %q (valid: %s)", s, strings.Join(names, ", "))
	}
}

// Span is a source line range. A zero Span means the location is unknown.
type Span struct {
	StartLine int `json:"startLine" yaml:"start"`
	EndLine   int `json:"endLine" yaml:"end"`
}

// IsZero reports whether the span is unknown.
func (s Span) IsZero() bool {
	return s.StartLine == 0 && s.EndLine == 0
}

func (s Span) String() string {
	if s.EndLine == 0 || s.EndLine == s.StartLine {
		return strconv.Itoa(s.StartLine)
	}
	return strconv.Itoa(s.StartLine) + "-" + strconv.Itoa(s.EndLine)
}

// CodeElement is the state of one tracked entity at one Version.
//
// Values are never mutated after creation; a change between two versions
// always produces a new CodeElement.
type CodeElement struct {
	Kind ElementKind
	Name string
	// Container is the identity of the enclosing container: the package for
	// classes, the class for members, the method for local variables.
	Container string
	// Signature disambiguates elements sharing a name, e.g. "f(int)" for
	// methods or the comment text digest for comments.
	Signature string
	Path      string
	Span      Span
	Version   Version
	// Absent marks the anchor of an Introduced or Removed edge: the element
	// does not exist at Version.
	Absent bool
}

// ContainerRef identifies the container version an element belongs to.
type ContainerRef struct {
	Name    string
	Version Version
}

func (r ContainerRef) String() string {
	if r.Version.IsZero() {
		return r.Name
	}
	return r.Name + "@" + r.Version.Short()
}

// ContainerRef returns the back-reference to the enclosing container version.
func (e CodeElement) ContainerRef() ContainerRef {
	return ContainerRef{Name: e.Container, Version: e.Version}
}

// Key returns the structural identity key, independent of Version.
func (e CodeElement) Key() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteByte('|')
	b.WriteString(e.Container)
	b.WriteByte('|')
	b.WriteString(e.Name)
	b.WriteByte('|')
	b.WriteString(e.Signature)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(e.Span.StartLine))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(e.Span.EndLine))
	return b.String()
}

// NodeKey identifies the element at its Version. Two values with equal
// NodeKeys denote the same graph node.
func (e CodeElement) NodeKey() string {
	k := e.Key() + "@" + e.Version.ID
	if e.Absent {
		k += "!absent"
	}
	return k
}

// At returns a copy of the element bound to v.
func (e CodeElement) At(v Version) CodeElement {
	e.Version = v
	return e
}

// AsAbsent returns a copy marked as absent at v.
func (e CodeElement) AsAbsent(v Version) CodeElement {
	e.Version = v
	e.Absent = true
	return e
}

// String renders the element the way reports display it, e.g. "pkg/Main#f(int)".
func (e CodeElement) String() string {
	switch e.Kind {
	case KindMethod:
		sig := e.Signature
		if sig == "" {
			sig = e.Name + "()"
		}
		return joinNonEmpty(e.Container, "#", sig)
	case KindClass:
		return joinNonEmpty(e.Container, "/", e.Name)
	case KindAttribute:
		return joinNonEmpty(e.Container, "#", e.Name)
	case KindVariable:
		name := e.Name
		if e.Span.StartLine > 0 {
			name += "@" + strconv.Itoa(e.Span.StartLine)
		}
		return joinNonEmpty(e.Container, "$", name)
	case KindAnnotation:
		return joinNonEmpty(e.Container, "@", e.Name)
	case KindComment:
		return joinNonEmpty(e.Container, "#comment@", e.Span.String())
	default:
		return e.Name
	}
}

func joinNonEmpty(container, sep, name string) string {
	if container == "" {
		return name
	}
	return container + sep + name
}
