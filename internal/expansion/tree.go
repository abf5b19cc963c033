// file: internal/expansion/tree.go
package expansion

import "strings"

// TypeNode is one node in the compiled expansion forest: the logical object
// type it applies to, and the set of expansions (by name) requested for
// objects of that type. Mirrors pysoa.client.expander.TypeNode.
type TypeNode struct {
	TypeName string
	Children map[string]*ExpansionNode
}

// NewTypeNode constructs an empty TypeNode for typeName.
func NewTypeNode(typeName string) *TypeNode {
	return &TypeNode{TypeName: typeName, Children: make(map[string]*ExpansionNode)}
}

// AddChild registers child under its own Name, merging with (returning) an
// already-registered node of the same name rather than overwriting it, the
// same de-duplication pysoa.client.expander.TypeNode.add_expansion performs
// so that "owner.manager" and "owner.department" share one "owner" node.
func (n *TypeNode) AddChild(child *ExpansionNode) *ExpansionNode {
	if existing, ok := n.Children[child.Name]; ok {
		return existing
	}
	n.Children[child.Name] = child
	return child
}

// FindObjects walks obj (a decoded JSON value: maps, slices, or scalars)
// looking for maps whose "_type" field equals n.TypeName. Once a match is
// found, its subtree is not searched further for the same type — a nested
// object of the same type one level down is assumed to belong to a
// different expansion path and is reached via that match's own children
// instead. Mirrors pysoa.client.expander.TypeNode.find_objects.
func (n *TypeNode) FindObjects(obj interface{}) []map[string]interface{} {
	var found []map[string]interface{}
	var walk func(v interface{})
	walk = func(v interface{}) {
		switch vv := v.(type) {
		case map[string]interface{}:
			if t, ok := vv["_type"].(string); ok && t == n.TypeName {
				found = append(found, vv)
				return
			}
			for _, child := range vv {
				walk(child)
			}
		case []interface{}:
			for _, item := range vv {
				walk(item)
			}
		}
	}
	walk(obj)
	return found
}

// ExpansionNode is a TypeNode reached via one specific named expansion off
// of a parent type, carrying the route details needed to actually perform
// the expansion call. Mirrors pysoa.client.expander.ExpansionNode.
type ExpansionNode struct {
	TypeNode

	Name              string
	SourceField       string
	DestField         string
	Service           string
	Action            string
	RequestField      string
	ResponseField     string
	RaiseActionErrors bool
}

// newExpansionNode builds an ExpansionNode for destType reached via exp/route.
func newExpansionNode(name, destType string, exp TypeExpansion, route TypeRoute) *ExpansionNode {
	return &ExpansionNode{
		TypeNode:          *NewTypeNode(destType),
		Name:              name,
		SourceField:       exp.SourceField,
		DestField:         exp.DestField,
		Service:           route.Service,
		Action:            route.Action,
		RequestField:      route.RequestField,
		ResponseField:     route.ResponseField,
		RaiseActionErrors: exp.RaiseActionErrors,
	}
}

// DictToTrees compiles requested (typeName -> dotted expansion paths, e.g.
// {"task": {"owner", "owner.manager"}}) into one root TypeNode per requested
// type, with each dotted path's segments becoming nested ExpansionNodes,
// duplicate prefixes merged. Mirrors
// pysoa.client.expander.ExpansionConverter.dict_to_trees.
func (c *Converter) DictToTrees(requested map[string][]string) (map[string]*TypeNode, error) {
	roots := make(map[string]*TypeNode)
	for typeName, paths := range requested {
		root, ok := roots[typeName]
		if !ok {
			root = NewTypeNode(typeName)
			roots[typeName] = root
		}
		for _, path := range paths {
			if err := c.graft(root, typeName, strings.Split(path, ".")); err != nil {
				return nil, err
			}
		}
	}
	return roots, nil
}

// graft walks segments, creating/merging ExpansionNode children under
// current (whose logical type is currentType) one segment at a time.
func (c *Converter) graft(current *TypeNode, currentType string, segments []string) error {
	if len(segments) == 0 {
		return nil
	}
	name := segments[0]
	exp, route, err := c.lookup(currentType, name)
	if err != nil {
		return err
	}
	node := current.AddChild(newExpansionNode(name, route.DestType, exp, route))
	return c.graft(&node.TypeNode, node.TypeName, segments[1:])
}
