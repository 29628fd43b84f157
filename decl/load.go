package decl

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	xtl "github.com/reoring/xtl"
)

// LoadYAML reads a (possibly multi-document) YAML stream of universe files and
// builds the Universe. Unknown keys are rejected.
func LoadYAML(data []byte, opts Options) (*Universe, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var files []File
	for {
		var f File
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, decodeIssue(len(files), err)
		}
		files = append(files, f)
	}
	return Build(opts, files...)
}

// LoadJSON reads one JSON universe file. Unknown keys are rejected.
func LoadJSON(data []byte, opts Options) (*Universe, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, decodeIssue(0, err)
	}
	return Build(opts, f)
}

// Load reads the universe stored at path, as JSON when the extension is
// ".json" and as YAML otherwise.
func Load(path string, opts Options) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(data, opts)
	}
	return LoadYAML(data, opts)
}

func decodeIssue(doc int, err error) error {
	it := xtl.Root().Index(doc).Issue(xtl.CodeInvalidDecl, err.Error())
	it.Cause = err
	return xtl.Issues{it}
}
