package model

import (
	"strings"
	"testing"
	"time"
)

func TestCodeElement_String(t *testing.T) {
	tests := []struct {
		name     string
		elem     CodeElement
		expected string
	}{
		{name: "Method", elem: CodeElement{Kind: KindMethod, Container: "pkg/Main", Name: "f", Signature: "f(int)"}, expected: "pkg/Main#f(int)"},
		{name: "Method without signature", elem: CodeElement{Kind: KindMethod, Container: "pkg/Main", Name: "f"}, expected: "pkg/Main#f()"},
		{name: "Class", elem: CodeElement{Kind: KindClass, Container: "pkg", Name: "Main"}, expected: "pkg/Main"},
		{name: "Attribute", elem: CodeElement{Kind: KindAttribute, Container: "pkg/Main", Name: "count"}, expected: "pkg/Main#count"},
		{name: "Variable", elem: CodeElement{Kind: KindVariable, Container: "pkg/Main#f(int)", Name: "x", Span: Span{StartLine: 12}}, expected: "pkg/Main#f(int)$x@12"},
		{name: "Annotation", elem: CodeElement{Kind: KindAnnotation, Container: "pkg/Main#f(int)", Name: "Override"}, expected: "pkg/Main#f(int)@Override"},
		{name: "Comment", elem: CodeElement{Kind: KindComment, Container: "pkg/Main", Span: Span{StartLine: 3, EndLine: 5}}, expected: "pkg/Main#comment@3-5"},
		{name: "No container", elem: CodeElement{Kind: KindClass, Name: "Main"}, expected: "Main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.elem.String(); got != tt.expected {
				t.Errorf("String() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestCodeElement_KeysIgnoreVersion(t *testing.T) {
	e := CodeElement{Kind: KindMethod, Container: "pkg/Main", Name: "f", Signature: "f(int)"}
	a := e.At(Version{ID: "c1", Time: time.Unix(100, 0)})
	b := e.At(Version{ID: "c2", Time: time.Unix(200, 0)})

	if a.Key() != b.Key() {
		t.Errorf("Key differs across versions: %q vs %q", a.Key(), b.Key())
	}
	if a.NodeKey() == b.NodeKey() {
		t.Errorf("NodeKey should differ across versions, both %q", a.NodeKey())
	}
	if a.NodeKey() == a.AsAbsent(a.Version).NodeKey() {
		t.Errorf("absent anchor shares NodeKey with present element")
	}
	if e.Version.ID != "" {
		t.Errorf("At mutated the receiver")
	}
}

func TestParseElementKind(t *testing.T) {
	tests := []struct {
		input   string
		want    ElementKind
		wantErr bool
	}{
		{input: "method", want: KindMethod},
		{input: "Field", want: KindAttribute},
		{input: " var ", want: KindVariable},
		{input: "class", want: KindClass},
		{input: "annotation", want: KindAnnotation},
		{input: "comment", want: KindComment},
		{input: "module", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseElementKind(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				for _, k := range ElementKinds {
					if !strings.Contains(err.Error(), string(k)) {
						t.Errorf("error %q does not list kind %q", err, k)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseElementKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseChangeKind(t *testing.T) {
	tests := []struct {
		input   string
		want    ChangeKind
		wantErr bool
	}{
		{input: "Body Change", want: ChangeBody},
		{input: "body", want: ChangeBody},
		{input: "return_type", want: ChangeReturnType},
		{input: "Return Type Change", want: ChangeReturnType},
		{input: "No Change", want: ChangeNone},
		{input: "introduced", want: ChangeIntroduced},
		{input: "Container Change", want: ChangeContainer},
		{input: "merge", want: ChangeMerge},
		{input: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseChangeKind(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseChangeKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestChangeKind_RoundTripLabels(t *testing.T) {
	for k := ChangeIntroduced; k <= ChangeRemoved; k++ {
		got, err := ParseChangeKind(k.String())
		if err != nil {
			t.Fatalf("ParseChangeKind(%q): %v", k.String(), err)
		}
		if got != k {
			t.Errorf("label %q parsed to %v, expected %v", k.String(), got, k)
		}
	}
}

func TestSameKinds(t *testing.T) {
	a := []Change{{Kind: ChangeBody}, {Kind: ChangeModifier, Description: "public -> private"}}
	b := []Change{{Kind: ChangeModifier}, {Kind: ChangeBody}, {Kind: ChangeBody}}
	c := []Change{{Kind: ChangeBody}}

	if !SameKinds(a, b) {
		t.Errorf("SameKinds(a, b) = false, expected true")
	}
	if SameKinds(a, c) {
		t.Errorf("SameKinds(a, c) = true, expected false")
	}
}

func TestChangeKind_Cosmetic(t *testing.T) {
	cosmetic := []ChangeKind{ChangeNone, ChangeRename, ChangeMove, ChangeContainer}
	for _, k := range cosmetic {
		if !k.Cosmetic() {
			t.Errorf("%v.Cosmetic() = false, expected true", k)
		}
	}
	for _, k := range []ChangeKind{ChangeIntroduced, ChangeBody, ChangeMerge, ChangeParameter} {
		if k.Cosmetic() {
			t.Errorf("%v.Cosmetic() = true, expected false", k)
		}
	}
}
