// Package siteconf models hadoop-style site configuration files (an ordered
// list of name/value properties) and provides insert-or-overwrite mutation of
// single properties. Mutation is a pure value transform; persistence is a
// separate explicit step.
package siteconf

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// Property is one named entry in a site configuration file. Final and
// Description are carried through untouched when present.
type Property struct {
	Name        string `xml:"name"`
	Value       string `xml:"value"`
	Final       string `xml:"final,omitempty"`
	Description string `xml:"description,omitempty"`
}

// Document is a site configuration file: an ordered collection of properties.
// The cluster owns the file; the agent only ever touches the properties it
// publishes and rewrites the rest verbatim.
type Document struct {
	XMLName    xml.Name   `xml:"configuration"`
	Properties []Property `xml:"property"`
}

// Parse reads a site configuration document.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading site config: %w", err)
	}
	var d Document
	if err := xml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing site config: %w", err)
	}
	return &d, nil
}

// LoadFile parses the site configuration at path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening site config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Render serializes the full document as XML with a declaration header.
func (d *Document) Render(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing site config header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding site config: %w", err)
	}
	return enc.Close()
}

// SaveFile rewrites the full document to path.
func (d *Document) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing site config: %w", err)
	}
	if err := d.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Get returns the value of the property with the given name.
func (d *Document) Get(name string) (string, bool) {
	for i := range d.Properties {
		if d.Properties[i].Name == name {
			return d.Properties[i].Value, true
		}
	}
	return "", false
}
