package policy

import "github.com/celine-platform/policies/internal/entities"

// Router dispatches an evaluation to the policy module registered for the
// resource type, or to the generic fallback when none is.
type Router struct {
	modules  map[string]Module
	fallback Module
}

// NewRouter creates a router with the given fallback; specialized modules
// are added with Register.
func NewRouter(fallback Module) *Router {
	return &Router{
		modules:  make(map[string]Module),
		fallback: fallback,
	}
}

// Register binds a resource type to a module. Later registrations for the
// same type win; rule tables are static so this only happens at startup.
func (r *Router) Register(resourceType string, m Module) {
	r.modules[resourceType] = m
}

// Route returns the module handling the resource type. An unregistered type
// is not an error: it routes to the fallback.
func (r *Router) Route(resourceType string) Module {
	if m, ok := r.modules[resourceType]; ok {
		return m
	}
	return r.fallback
}

// Evaluate dispatches the triple to the responsible module. Structurally
// malformed requests are soft denials, never errors.
func (r *Router) Evaluate(subject *entities.Subject, resource *entities.Resource, action *entities.Action) *entities.Decision {
	if resource == nil || resource.Type == "" || action == nil || action.Name == "" {
		return entities.Deny(ReasonInvalidRequest)
	}
	return r.Route(resource.Type).Evaluate(subject, resource, action)
}

// NewDefaultRouter wires the five platform policy modules plus the generic
// fallback. rules may be nil when the MQTT module runs the derived-scope
// strategy.
func NewDefaultRouter(strategy MqttStrategy, rules RuleProvider) *Router {
	r := NewRouter(NewFallbackModule())
	r.Register(entities.ResourceDataset, NewDatasetModule())
	r.Register(entities.ResourcePipeline, NewPipelineModule())
	r.Register(entities.ResourceTwin, NewTwinModule())
	r.Register(entities.ResourceTopic, NewMqttModule(strategy, rules))
	r.Register(entities.ResourceUserdata, NewUserdataModule())
	return r
}
