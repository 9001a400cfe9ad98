// Package depsbom turns a parsed PE's import table into a minimal
// CycloneDX-shaped component list: one component per imported DLL,
// carrying its resolved entries as properties. It is not a full SBOM
// generator (no hashes, no license detection, no SPDX output) — just
// enough structure for a caller to see what a binary declares it needs.
package depsbom

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gogo2464/LIEF/pefmt"
)

// ComponentType mirrors CycloneDX's component type enum, narrowed to
// the one value this package ever emits.
type ComponentType string

const ComponentTypeLibrary ComponentType = "library"

// Property is a CycloneDX name/value property.
type Property struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Component is one CycloneDX component entry.
type Component struct {
	Type       ComponentType `json:"type" yaml:"type"`
	BOMRef     string        `json:"bom-ref" yaml:"bom-ref"`
	Name       string        `json:"name" yaml:"name"`
	Properties []Property    `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// BOM is the top-level CycloneDX document this package produces.
type BOM struct {
	BOMFormat   string      `json:"bomFormat" yaml:"bomFormat"`
	SpecVersion string      `json:"specVersion" yaml:"specVersion"`
	Components  []Component `json:"components" yaml:"components"`
}

// FromPE builds a BOM with one component per imported library. Ordinal
// imports are recorded as "#<ordinal>" properties since they carry no
// name to report.
func FromPE(bin *pefmt.Binary) *BOM {
	bom := &BOM{BOMFormat: "CycloneDX", SpecVersion: "1.5"}

	for _, lib := range bin.Imports {
		comp := Component{
			Type:   ComponentTypeLibrary,
			BOMRef: "pkg:dll/" + lib.Name,
			Name:   lib.Name,
		}
		for _, entry := range lib.Entries {
			value := entry.Name
			if entry.IsOrdinal {
				value = fmt.Sprintf("#%d", entry.Ordinal)
			}
			comp.Properties = append(comp.Properties, Property{Name: "import", Value: value})
		}
		bom.Components = append(bom.Components, comp)
	}

	return bom
}

// WriteJSON writes the BOM as indented JSON.
func (b *BOM) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// WriteYAML writes the BOM as YAML.
func (b *BOM) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(b)
}

// ComponentCount returns the number of components in the BOM, for
// callers that just want a quick dependency count without walking the
// slice themselves.
func (b *BOM) ComponentCount() int { return len(b.Components) }
