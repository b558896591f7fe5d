package entities

// Resource type discriminators routed to specialized policy modules.
// Any other type is handled by the generic fallback policy.
const (
	ResourceDataset  = "dataset"
	ResourcePipeline = "pipeline"
	ResourceTwin     = "dt"
	ResourceTopic    = "topic"
	ResourceUserdata = "userdata"
)

// Resource represents the thing being accessed.
type Resource struct {
	Type       string                 // resource type discriminator
	ID         string                 // resource identifier (for topics, the literal topic string)
	Attributes map[string]interface{} // module-specific attributes
}

// StringAttribute returns the named attribute when it is a string.
func (r *Resource) StringAttribute(name string) string {
	if r == nil || r.Attributes == nil {
		return ""
	}
	v, _ := r.Attributes[name].(string)
	return v
}

// StringListAttribute returns the named attribute coerced to a string list.
// Both []string and []interface{} shapes are accepted since attributes
// frequently arrive from decoded JSON.
func (r *Resource) StringListAttribute(name string) []string {
	if r == nil || r.Attributes == nil {
		return nil
	}
	switch v := r.Attributes[name].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Action represents the requested operation.
type Action struct {
	Name    string                 // read, write, admin, publish, subscribe, transition, ...
	Context map[string]interface{} // action-specific context (e.g. from_state/to_state)
}

// StringContext returns the named context value when it is a string.
func (a *Action) StringContext(name string) string {
	if a == nil || a.Context == nil {
		return ""
	}
	v, _ := a.Context[name].(string)
	return v
}
