package xtl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/xtl/i18n"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeNotSubtype    = "not_subtype"
	CodeAmbiguousBase = "ambiguous_base"
	CodeUnwiredBase   = "unwired_base"
	CodeConflictBase  = "conflicting_base"
	CodeNotInjectable = "not_injectable"
	// Declared universes (package decl)
	CodeInvalidDecl         = "invalid_decl"
	CodeInvalidName         = "invalid_name"
	CodeUnknownType         = "unknown_type"
	CodeDuplicateType       = "duplicate_type"
	CodeCyclicBase          = "cyclic_base"
	CodeIncompatibleVersion = "incompatible_version"
)

// Error reports a relation that cannot be used for a cast, or an object whose
// virtual bases are not wired. It is the build-time failure of the package:
// Relate returns it, MustRelate and Cast panic with it.
type Error struct {
	Code string
	From string // Source type (or complete type for wiring errors).
	To   string // Target type (or virtual base type).
	// Paths lists the competing routes of an ambiguous base.
	Paths []string
}

func (e *Error) Error() string {
	msg := "xtl: " + i18n.T(e.Code, map[string]string{"from": e.From, "to": e.To})
	if len(e.Paths) > 0 {
		msg += " (" + strings.Join(e.Paths, "; ") + ")"
	}
	return msg
}

// Issue represents a single diagnostic about a declaration.
type Issue struct {
	Path    string // JSON Pointer into the declaration (for example: /types/2/bases/0).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error.
}

// Issues is a collection of diagnostics that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. unknown_type at /types/3/bases/0
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
