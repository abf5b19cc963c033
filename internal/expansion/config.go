// Package expansion implements the declarative object-expansion engine:
// TypeRoutes name how to fetch a related object by service call, TypeExpansions
// bind a route to a specific object type's field, and the Converter compiles
// a caller's requested dotted-path expansions into a forest the engine walks.
// file: internal/expansion/config.go
package expansion

import "github.com/dkoosis/gosoa/internal/soaerrors"

// TypeRoute names how to fetch one related object: which service/action to
// call and which request/response field carries the ID/object, registered
// once globally per logical type, mirroring the route-level half of
// pysoa.client.expander's configuration (ExpansionNode.service/action/
// request_field/response_field).
type TypeRoute struct {
	Service       string
	Action        string
	RequestField  string
	ResponseField string
	// DestType names the logical object type the route's ResponseField
	// yields, so further dotted-path segments past this one know which
	// type's expansions to look up. Not present in the original's
	// configuration as a distinct field (it infers the type from the
	// service/action wiring); made explicit here for an unambiguous Go tree
	// compiler. See DESIGN.md.
	DestType string
}

// TypeExpansion binds a registered route, by name, to one object type's
// source/destination fields: "for an object of type X, expanding via name N
// means take X[SourceField], call the route, and splice the result into
// X[DestField]". Mirrors the per-type-expansion half of the original's
// configuration.
type TypeExpansion struct {
	RouteName         string
	SourceField       string
	DestField         string
	RaiseActionErrors bool
}

// Converter holds the full expansion configuration: the global route
// registry, plus each object type's named expansions, and compiles a
// caller's requested dotted paths into a tree forest. Mirrors
// pysoa.client.expander.ExpansionConverter.
type Converter struct {
	Routes     map[string]TypeRoute
	Expansions map[string]map[string]TypeExpansion // typeName -> expansionName -> TypeExpansion
}

// NewConverter constructs an empty Converter.
func NewConverter() *Converter {
	return &Converter{
		Routes:     make(map[string]TypeRoute),
		Expansions: make(map[string]map[string]TypeExpansion),
	}
}

// AddRoute registers a TypeRoute under name.
func (c *Converter) AddRoute(name string, route TypeRoute) *Converter {
	c.Routes[name] = route
	return c
}

// AddExpansion registers a TypeExpansion under (typeName, expansionName).
func (c *Converter) AddExpansion(typeName, expansionName string, exp TypeExpansion) *Converter {
	if c.Expansions[typeName] == nil {
		c.Expansions[typeName] = make(map[string]TypeExpansion)
	}
	c.Expansions[typeName][expansionName] = exp
	return c
}

// lookup resolves (typeName, expansionName) to its TypeExpansion and the
// TypeRoute it names, returning InvalidExpansionKey if either is missing.
func (c *Converter) lookup(typeName, expansionName string) (TypeExpansion, TypeRoute, error) {
	byName, ok := c.Expansions[typeName]
	if !ok {
		return TypeExpansion{}, TypeRoute{}, &soaerrors.InvalidExpansionKey{TypeName: typeName, ExpansionName: expansionName}
	}
	exp, ok := byName[expansionName]
	if !ok {
		return TypeExpansion{}, TypeRoute{}, &soaerrors.InvalidExpansionKey{TypeName: typeName, ExpansionName: expansionName}
	}
	route, ok := c.Routes[exp.RouteName]
	if !ok {
		return TypeExpansion{}, TypeRoute{}, &soaerrors.InvalidExpansionKey{TypeName: typeName, ExpansionName: exp.RouteName}
	}
	return exp, route, nil
}
