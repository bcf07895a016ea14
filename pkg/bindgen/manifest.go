package bindgen

import (
	"bytes"
	"fmt"
	"go/token"
	"io"
	"unicode"

	"gopkg.in/yaml.v3"

	"jsbind/pkg/handle"
	"jsbind/pkg/member"
)

// Manifest describes the wrapper methods to generate for one handle kind.
//
//	handle: Array
//	methods:
//	  - js: slice
//	    go: Slice
//	    returns: Array
//	    params: [start, end]
//	  - js: push
//	    go: Push
//	    returns: Number
//	    params: [items]
//	    variadic: true
type Manifest struct {
	Package  string   `yaml:"package,omitempty"`
	Handle   string   `yaml:"handle"`
	Registry string   `yaml:"registry,omitempty"`
	Methods  []Method `yaml:"methods"`
}

// Method is one wrapper. JS is a member path relative to the receiver, Go
// the exported function name. Returns names the handle kind the result is
// re-wrapped as; empty means Object.
type Method struct {
	JS       string   `yaml:"js"`
	Go       string   `yaml:"go"`
	Returns  string   `yaml:"returns,omitempty"`
	Params   []string `yaml:"params,omitempty"`
	Variadic bool     `yaml:"variadic,omitempty"`
	Doc      string   `yaml:"doc,omitempty"`
}

// LoadManifest decodes and validates a YAML manifest.
func LoadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("bindgen: decoding manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseManifest is LoadManifest over a byte slice.
func ParseManifest(data []byte) (*Manifest, error) {
	return LoadManifest(bytes.NewReader(data))
}

// Validate checks kinds, names and paths, and that no two methods declare
// the same path with different result kinds.
func (m *Manifest) Validate() error {
	if _, err := handle.ParseKind(m.Handle); err != nil {
		return fmt.Errorf("bindgen: handle: %w", err)
	}
	if m.Registry != "" && !isGoIdent(m.Registry) {
		return fmt.Errorf("bindgen: registry %q is not a Go identifier", m.Registry)
	}
	if len(m.Methods) == 0 {
		return fmt.Errorf("bindgen: manifest for %s declares no methods", m.Handle)
	}

	reg := handle.NewRegistry()
	seen := make(map[string]bool)
	for i, meth := range m.Methods {
		where := fmt.Sprintf("bindgen: methods[%d] (%s)", i, meth.JS)
		path, err := member.Parse(meth.JS)
		if err != nil {
			return fmt.Errorf("%s: %w", where, err)
		}
		kind, err := meth.resultKind()
		if err != nil {
			return fmt.Errorf("%s: %w", where, err)
		}
		if err := reg.Register(path, kind); err != nil {
			return fmt.Errorf("%s: %w", where, err)
		}
		if !isGoIdent(meth.Go) || !unicode.IsUpper([]rune(meth.Go)[0]) {
			return fmt.Errorf("%s: go name %q must be an exported identifier", where, meth.Go)
		}
		if seen[meth.Go] {
			return fmt.Errorf("%s: duplicate go name %q", where, meth.Go)
		}
		seen[meth.Go] = true
		params := make(map[string]bool)
		for _, p := range meth.Params {
			if !isGoIdent(p) || reservedParams[p] || params[p] {
				return fmt.Errorf("%s: bad parameter name %q", where, p)
			}
			params[p] = true
		}
		if meth.Variadic && len(meth.Params) == 0 {
			return fmt.Errorf("%s: variadic method needs at least one parameter", where)
		}
	}
	return nil
}

// reservedParams are the receiver and the locals of generated wrappers.
var reservedParams = map[string]bool{"h": true, "list": true, "res": true, "out": true, "err": true}

func (meth Method) resultKind() (handle.Kind, error) {
	if meth.Returns == "" {
		return handle.KindObject, nil
	}
	return handle.ParseKind(meth.Returns)
}

func isGoIdent(s string) bool {
	if s == "" || s == "_" || token.IsKeyword(s) {
		return false
	}
	for i, r := range s {
		if r != '_' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
