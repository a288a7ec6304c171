// Package definition walks the graph documents stored as job and pipeline definitions.
//
// A document is kept opaque except for its "graph" array. Every node of that array
// flagged with "vertex": true is a stage; the stage "value" object may carry a
// jobName/jobId pair or a pipelineName/pipelineId pair naming the entity it invokes.
package definition

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	GraphField        = "graph"
	VertexField       = "vertex"
	ValueField        = "value"
	StageIDField      = "id"
	StageNameField    = "name"
	JobNameField      = "jobName"
	JobIDField        = "jobId"
	PipelineNameField = "pipelineName"
	PipelineIDField   = "pipelineId"
)

type Kind string

const (
	KindJob      Kind = "job"
	KindPipeline Kind = "pipeline"
)

func (k Kind) nameField() string {
	if k == KindPipeline {
		return PipelineNameField
	}
	return JobNameField
}

func (k Kind) idField() string {
	if k == KindPipeline {
		return PipelineIDField
	}
	return JobIDField
}

// Reference is the nested entity a stage invokes.
type Reference struct {
	Kind Kind
	Name string
	ID   string
}

// Document is a parsed definition. It marshals back to the same JSON object,
// unknown fields and number literals included.
type Document map[string]any

func (d *Document) UnmarshalJSON(data []byte) error {
	m, err := decodeObject(data)
	if err != nil {
		return err
	}
	*d = m
	return nil
}

// Object is an opaque JSON object, such as job params or a connection value.
// Numbers are kept as json.Number so large integers survive a round trip.
type Object map[string]any

func (o *Object) UnmarshalJSON(data []byte) error {
	m, err := decodeObject(data)
	if err != nil {
		return err
	}
	*o = m
	return nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// Graph returns the raw node list, or nil when the document has none.
func (d Document) Graph() []any {
	if d == nil {
		return nil
	}
	nodes, _ := d[GraphField].([]any)
	return nodes
}

// IsRunnable reports whether the document carries a non-empty graph.
func (d Document) IsRunnable() bool {
	return len(d.Graph()) > 0
}

// Stages returns the vertex nodes of the graph. Stages share their maps with the
// document, so SetID mutates the document in place.
func (d Document) Stages() []Stage {
	var stages []Stage
	for _, raw := range d.Graph() {
		node, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if vertex, _ := node[VertexField].(bool); !vertex {
			continue
		}
		value, ok := node[ValueField].(map[string]any)
		if !ok {
			continue
		}
		stages = append(stages, Stage{id: stringOf(node[StageIDField]), value: value})
	}
	return stages
}

// ReferencedIDs lists, without duplicates and in graph order, the ids of the
// entities of the given kind invoked by the document's stages.
func (d Document) ReferencedIDs(kind Kind) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, stage := range d.Stages() {
		id := stage.field(kind.idField())
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// ReferencedNames is ReferencedIDs for the name fields.
func (d Document) ReferencedNames(kind Kind) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, stage := range d.Stages() {
		ref, ok := stage.Reference()
		if !ok || ref.Kind != kind {
			continue
		}
		if _, ok := seen[ref.Name]; ok {
			continue
		}
		seen[ref.Name] = struct{}{}
		names = append(names, ref.Name)
	}
	return names
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(map[string]any(d)).(map[string]any)
}

type Stage struct {
	id    string
	value map[string]any
}

func (s Stage) ID() string {
	return s.id
}

// Name is the stage display name, falling back to the node id.
func (s Stage) Name() string {
	if name := s.field(StageNameField); name != "" {
		return name
	}
	return s.id
}

// Reference returns the entity the stage invokes by name. A job name takes
// precedence over a pipeline name.
func (s Stage) Reference() (Reference, bool) {
	for _, kind := range []Kind{KindJob, KindPipeline} {
		if name := s.field(kind.nameField()); name != "" {
			return Reference{Kind: kind, Name: name, ID: s.field(kind.idField())}, true
		}
	}
	return Reference{}, false
}

// SetID replaces the id of the invoked entity of the given kind.
func (s Stage) SetID(kind Kind, id string) {
	s.value[kind.idField()] = id
}

func (s Stage) field(key string) string {
	return stringOf(s.value[key])
}

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = cloneValue(val)
		}
		return s
	default:
		return t
	}
}
