package weights

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Artifact is the persisted weight document for one workload. The cluster's
// weighting mechanism consumes it, so the format is stable: one root element
// tagged with the workload, one node element per datanode.
type Artifact struct {
	XMLName  xml.Name    `xml:"anodeWeights"`
	Workload string      `xml:"workload,attr"`
	Nodes    []NodeEntry `xml:"node"`
}

// NodeEntry carries one node's published values. Weight is rounded to six
// decimals; capacity is the raw score, kept for operator inspection.
type NodeEntry struct {
	Name     string `xml:"name,attr"`
	Weight   string `xml:"weight,attr"`
	Capacity string `xml:"capacity,attr"`
}

// NewArtifact builds an artifact from computed weights. Node entries are
// sorted by name so repeated runs over identical inputs produce identical
// documents.
func NewArtifact(workload string, nodeWeights map[string]NodeWeight) *Artifact {
	a := &Artifact{Workload: workload}
	for _, nw := range nodeWeights {
		a.Nodes = append(a.Nodes, NodeEntry{
			Name:     nw.Node,
			Weight:   formatWeight(nw.Weight),
			Capacity: formatCapacity(nw.Capacity),
		})
	}
	sort.Slice(a.Nodes, func(i, j int) bool { return a.Nodes[i].Name < a.Nodes[j].Name })
	return a
}

// formatWeight renders a weight rounded to six decimal digits, with trailing
// zeros trimmed.
func formatWeight(w float64) string {
	return strconv.FormatFloat(math.Round(w*1e6)/1e6, 'f', -1, 64)
}

// formatCapacity renders the unrounded capacity score.
func formatCapacity(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

// Write serializes the artifact as XML with a declaration header.
func (a *Artifact) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing artifact header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}
	return enc.Close()
}

// WriteFile writes the artifact to path, replacing any existing file.
func (a *Artifact) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating artifact file: %w", err)
	}
	if err := a.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read parses a weight artifact.
func Read(r io.Reader) (*Artifact, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	var a Artifact
	if err := xml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing artifact: %w", err)
	}
	return &a, nil
}

// ReadFile parses the weight artifact at path.
func ReadFile(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening artifact file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// InlinePairs joins the artifact's entries as "name:weight,name:weight,..."
// in entry order, the value published to the inline config property.
func (a *Artifact) InlinePairs() string {
	pairs := make([]string, 0, len(a.Nodes))
	for _, n := range a.Nodes {
		if n.Name == "" || n.Weight == "" {
			continue
		}
		pairs = append(pairs, n.Name+":"+n.Weight)
	}
	return strings.Join(pairs, ",")
}

// NodeWeights decodes the artifact's entries back into computed form.
func (a *Artifact) NodeWeights() (map[string]NodeWeight, error) {
	out := make(map[string]NodeWeight, len(a.Nodes))
	for _, n := range a.Nodes {
		w, err := strconv.ParseFloat(n.Weight, 64)
		if err != nil {
			return nil, fmt.Errorf("node %s: invalid weight %q", n.Name, n.Weight)
		}
		c, err := strconv.ParseFloat(n.Capacity, 64)
		if err != nil {
			return nil, fmt.Errorf("node %s: invalid capacity %q", n.Name, n.Capacity)
		}
		out[n.Name] = NodeWeight{Node: n.Name, Weight: w, Capacity: c}
	}
	return out, nil
}
