package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/reoring/xtl/decl"
)

const universe = `
types:
  - {name: A, kind: class, size: 4, align: 4}
  - {name: X, kind: class, size: 1, align: 1, bases: [{name: A, virtual: true}]}
  - {name: Y, kind: class, size: 2, align: 2, bases: [{name: A, virtual: true}]}
  - {name: Z, kind: class, size: 1, align: 1, bases: [{name: X}, {name: Y}]}
  - {name: V, kind: sum, alternatives: [double, int]}
`

func loadTemp(t *testing.T) *decl.Universe {
	t.Helper()
	path := filepath.Join(t.TempDir(), "u.yaml")
	if err := os.WriteFile(path, []byte(universe), 0o644); err != nil {
		t.Fatal(err)
	}
	u, err := decl.Load(path, decl.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return u
}

func TestCheck(t *testing.T) {
	u := loadTemp(t)
	var buf bytes.Buffer
	if !check(&buf, u, "Z", "A", false) {
		t.Fatalf("Z -> A should be castable: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "Z <: A: true") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
	buf.Reset()
	if check(&buf, u, "char", "V", false) {
		t.Fatalf("char is not in V")
	}
	if !strings.Contains(buf.String(), "not a subtype") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestLayout(t *testing.T) {
	u := loadTemp(t)
	var buf bytes.Buffer
	if err := layout(&buf, u, "Z"); err != nil {
		t.Fatal(err)
	}
	var l decl.Layout
	if err := json.Unmarshal(buf.Bytes(), &l); err != nil {
		t.Fatalf("layout output is not JSON: %v", err)
	}
	if l.Type != "Z" || l.Size != 48 || len(l.VBTables) != 2 {
		t.Fatalf("unexpected layout: %+v", l)
	}
	if err := layout(&buf, u, "V"); err == nil {
		t.Fatalf("sums have no layout")
	}
}

func TestCast(t *testing.T) {
	u := loadTemp(t)
	var buf bytes.Buffer
	found, err := cast(&buf, u, "Z", "A", "Y")
	if err != nil || !found {
		t.Fatalf("Z viewed as A must come back as Y: %v %s", err, buf.String())
	}
	if !strings.Contains(buf.String(), "upcast:   A*(Z+40)") || !strings.Contains(buf.String(), "downcast: Y*(Z+16)") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
	buf.Reset()
	found, err = cast(&buf, u, "X", "A", "Y")
	if err != nil || found {
		t.Fatalf("an X has no Y: %v %s", err, buf.String())
	}
}
