package xtl

import (
	"strconv"
	"strings"
)

// Path builds JSON Pointer paths into declaration documents in a chain-safe
// way and creates Issues at them. The zero Path is the document root.
type Path struct {
	parts []string
}

// Root returns the empty path.
func Root() Path { return Path{} }

// Field appends an object key, escaping it per RFC 6901.
func (p Path) Field(name string) Path {
	if name == "" {
		return p
	}
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return Path{parts: append(append([]string{}, p.parts...), esc)}
}

// Index appends an array index.
func (p Path) Index(i int) Path {
	return Path{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

// Pointer renders the path, "/" for the root.
func (p Path) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

func (p Path) String() string { return p.Pointer() }

// Issue creates an Issue at p.
func (p Path) Issue(code, msg string) Issue {
	return IssueAt(p, code, msg)
}

// IssueAt creates an Issue at the given path with provided code and message.
func IssueAt(p Path, code, msg string) Issue {
	return Issue{Path: p.Pointer(), Code: code, Message: msg}
}
