// file: internal/expansion/tree_test.go
package expansion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/gosoa/internal/soaerrors"
)

func newTestConverter() *Converter {
	c := NewConverter()
	c.AddRoute("owner_route", TypeRoute{
		Service: "user", Action: "get_user",
		RequestField: "id", ResponseField: "user", DestType: "user",
	})
	c.AddRoute("manager_route", TypeRoute{
		Service: "user", Action: "get_user",
		RequestField: "id", ResponseField: "user", DestType: "user",
	})
	c.AddExpansion("task", "owner", TypeExpansion{RouteName: "owner_route", SourceField: "owner_id", DestField: "owner"})
	c.AddExpansion("user", "manager", TypeExpansion{RouteName: "manager_route", SourceField: "manager_id", DestField: "manager"})
	return c
}

func TestDictToTreesMergesDuplicatePrefixes(t *testing.T) {
	c := newTestConverter()

	roots, err := c.DictToTrees(map[string][]string{"task": {"owner", "owner.manager"}})
	require.NoError(t, err)

	root, ok := roots["task"]
	require.True(t, ok)
	require.Len(t, root.Children, 1, "owner and owner.manager must share one owner node")

	ownerNode := root.Children["owner"]
	require.NotNil(t, ownerNode)
	assert.Equal(t, "user", ownerNode.TypeName)
	require.Len(t, ownerNode.Children, 1)
	assert.Contains(t, ownerNode.Children, "manager")
}

func TestDictToTreesReturnsInvalidExpansionKeyForUnknownExpansion(t *testing.T) {
	c := newTestConverter()

	_, err := c.DictToTrees(map[string][]string{"task": {"nonexistent"}})
	require.Error(t, err)
	var invalidKey *soaerrors.InvalidExpansionKey
	assert.ErrorAs(t, err, &invalidKey)
}

func TestFindObjectsMatchesByTypeMarkerWithoutDescendingIntoMatches(t *testing.T) {
	node := NewTypeNode("user")

	doc := map[string]interface{}{
		"_type": "user",
		"name":  "alice",
		"manager": map[string]interface{}{
			"_type": "user",
			"name":  "bob",
		},
	}

	found := node.FindObjects(doc)
	require.Len(t, found, 1, "a matched object's own subtree is not searched for further matches")
	assert.Equal(t, "alice", found[0]["name"])
}

func TestFindObjectsWalksListsAndNestedMaps(t *testing.T) {
	node := NewTypeNode("task")

	doc := map[string]interface{}{
		"tasks": []interface{}{
			map[string]interface{}{"_type": "task", "id": "1"},
			map[string]interface{}{"_type": "task", "id": "2"},
		},
	}

	found := node.FindObjects(doc)
	assert.Len(t, found, 2)
}

func TestAddChildReturnsExistingNodeRatherThanOverwriting(t *testing.T) {
	node := NewTypeNode("task")
	first := node.AddChild(&ExpansionNode{TypeNode: *NewTypeNode("user"), Name: "owner"})
	second := node.AddChild(&ExpansionNode{TypeNode: *NewTypeNode("other"), Name: "owner"})

	assert.Same(t, first, second)
	assert.Equal(t, "user", node.Children["owner"].TypeName)
}
