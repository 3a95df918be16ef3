package history

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Extract parses one raw history document into execution records. The format
// is auto-detected: documents whose first non-whitespace byte is '<' are
// parsed as XML, everything else as JSON. Individual malformed elements are
// skipped (with reasons) rather than aborting the document; only a wholly
// unparseable document returns an error.
func Extract(raw []byte) (*Extraction, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty history document")
	}
	if trimmed[0] == '<' {
		return extractXML(trimmed)
	}
	return extractJSON(trimmed)
}

// element is a schema-agnostic XML tree node. History schemas vary across
// cluster software versions, so extraction walks this generic tree instead of
// binding to a fixed structure.
type element struct {
	XMLName  xml.Name
	Text     string    `xml:",chardata"`
	Children []element `xml:",any"`
}

// findAll returns every descendant element with the given local name.
func (e *element) findAll(name string) []*element {
	var found []*element
	for i := range e.Children {
		child := &e.Children[i]
		if child.XMLName.Local == name {
			found = append(found, child)
		}
		found = append(found, child.findAll(name)...)
	}
	return found
}

// childText returns the text of the first direct child matching any of the
// names, in alias order. Empty text falls through to the next alias.
func (e *element) childText(names ...string) string {
	for _, name := range names {
		for i := range e.Children {
			child := &e.Children[i]
			if child.XMLName.Local == name {
				if text := strings.TrimSpace(child.Text); text != "" {
					return text
				}
			}
		}
	}
	return ""
}

// xmlMatcher is one schema shape to try against a parsed document. Matchers
// are attempted in order; the first one producing any records wins.
type xmlMatcher struct {
	name  string
	match func(root *element) *Extraction
}

var xmlMatchers = []xmlMatcher{
	{name: "taskAttempt", match: matchTaskAttempts},
	{name: "map", match: matchMapTasks},
}

func extractXML(raw []byte) (*Extraction, error) {
	var root element
	if err := xml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("parsing history XML: %w", err)
	}

	result := &Extraction{}
	for _, m := range xmlMatchers {
		out := m.match(&root)
		result.Skipped = append(result.Skipped, out.Skipped...)
		if len(out.Records) > 0 {
			result.Records = out.Records
			return result, nil
		}
	}
	return result, nil
}

// matchTaskAttempts extracts the primary schema: taskAttempt elements with
// required start/finish times. Elements missing or mangling a required field
// are skipped.
func matchTaskAttempts(root *element) *Extraction {
	out := &Extraction{}
	for _, t := range root.findAll("taskAttempt") {
		start, err := requiredInt(t, "startTime", "start")
		if err != nil {
			out.Skipped = append(out.Skipped, Skip{Element: "taskAttempt", Reason: err.Error()})
			continue
		}
		finish, err := requiredInt(t, "finishTime", "finish")
		if err != nil {
			out.Skipped = append(out.Skipped, Skip{Element: "taskAttempt", Reason: err.Error()})
			continue
		}
		bytesRead, err := optionalInt(t, 0, "hdfsBytesRead", "hdfs_bytes_read")
		if err != nil {
			out.Skipped = append(out.Skipped, Skip{Element: "taskAttempt", Reason: err.Error()})
			continue
		}
		node := t.childText("trackerName", "node")
		if node == "" {
			node = "unknown"
		}
		out.Records = append(out.Records, ExecutionRecord{
			Node:       node,
			StartTime:  start,
			FinishTime: finish,
			BytesRead:  bytesRead,
		})
	}
	return out
}

// matchMapTasks extracts the fallback schema seen in older history formats:
// map elements with the same field aliases, where missing numeric fields
// default to zero instead of invalidating the element.
func matchMapTasks(root *element) *Extraction {
	out := &Extraction{}
	for _, m := range root.findAll("map") {
		start, err := optionalInt(m, 0, "startTime", "start")
		if err != nil {
			out.Skipped = append(out.Skipped, Skip{Element: "map", Reason: err.Error()})
			continue
		}
		finish, err := optionalInt(m, 0, "finishTime", "finish")
		if err != nil {
			out.Skipped = append(out.Skipped, Skip{Element: "map", Reason: err.Error()})
			continue
		}
		bytesRead, err := optionalInt(m, 0, "hdfsBytesRead", "hdfs_bytes_read")
		if err != nil {
			out.Skipped = append(out.Skipped, Skip{Element: "map", Reason: err.Error()})
			continue
		}
		node := m.childText("trackerName", "node")
		if node == "" {
			node = "unknown"
		}
		out.Records = append(out.Records, ExecutionRecord{
			Node:       node,
			StartTime:  start,
			FinishTime: finish,
			BytesRead:  bytesRead,
		})
	}
	return out
}

// requiredInt reads an integer field by its aliases; missing is an error.
func requiredInt(e *element, names ...string) (int64, error) {
	text := e.childText(names...)
	if text == "" {
		return 0, fmt.Errorf("missing field %s", names[0])
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: invalid integer %q", names[0], text)
	}
	return v, nil
}

// optionalInt reads an integer field by its aliases; missing yields the
// default, but present-and-malformed is still an error.
func optionalInt(e *element, def int64, names ...string) (int64, error) {
	text := e.childText(names...)
	if text == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: invalid integer %q", names[0], text)
	}
	return v, nil
}

// jsonTask is the JSON history schema: either a top-level array of these, or
// an object with a "taskAttempts" array. Field aliases mirror the XML shapes.
type jsonTask struct {
	Node          string `json:"node"`
	TrackerName   string `json:"trackerName"`
	StartTime     *int64 `json:"startTime"`
	FinishTime    *int64 `json:"finishTime"`
	BytesRead     *int64 `json:"bytesRead"`
	HDFSBytesRead *int64 `json:"hdfsBytesRead"`
}

func extractJSON(raw []byte) (*Extraction, error) {
	var tasks []json.RawMessage

	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &tasks); err != nil {
			return nil, fmt.Errorf("parsing history JSON array: %w", err)
		}
	case '{':
		var doc struct {
			TaskAttempts []json.RawMessage `json:"taskAttempts"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing history JSON object: %w", err)
		}
		tasks = doc.TaskAttempts
	default:
		return nil, fmt.Errorf("unrecognized history document format")
	}

	out := &Extraction{}
	for _, rawTask := range tasks {
		record, err := parseJSONTask(rawTask)
		if err != nil {
			out.Skipped = append(out.Skipped, Skip{Element: "task", Reason: err.Error()})
			continue
		}
		out.Records = append(out.Records, record)
	}
	return out, nil
}

// parseJSONTask coerces one JSON task entry into an ExecutionRecord.
func parseJSONTask(raw json.RawMessage) (ExecutionRecord, error) {
	var t jsonTask
	if err := json.Unmarshal(raw, &t); err != nil {
		return ExecutionRecord{}, fmt.Errorf("malformed task entry: %v", err)
	}
	if t.StartTime == nil {
		return ExecutionRecord{}, fmt.Errorf("missing field startTime")
	}
	if t.FinishTime == nil {
		return ExecutionRecord{}, fmt.Errorf("missing field finishTime")
	}

	node := t.Node
	if node == "" {
		node = t.TrackerName
	}
	if node == "" {
		return ExecutionRecord{}, fmt.Errorf("missing field node")
	}

	var bytesRead int64
	if t.BytesRead != nil {
		bytesRead = *t.BytesRead
	} else if t.HDFSBytesRead != nil {
		bytesRead = *t.HDFSBytesRead
	}

	return ExecutionRecord{
		Node:       node,
		StartTime:  *t.StartTime,
		FinishTime: *t.FinishTime,
		BytesRead:  bytesRead,
	}, nil
}
