// file: internal/stub/interceptor_test.go
package stub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/gosoa/internal/soaerrors"
)

func TestInterceptFallsBackWhenNothingStubbed(t *testing.T) {
	i := NewInterceptor()
	_, _, found := i.Intercept(context.Background(), "users", "get_user", nil)
	assert.False(t, found)
}

func TestInterceptReturnsStubbedResponse(t *testing.T) {
	i := NewInterceptor()
	exit := i.StubFixed("users", "get_user", map[string]interface{}{"name": "alice"}, nil)
	defer exit()

	body, errs, found := i.Intercept(context.Background(), "users", "get_user", map[string]interface{}{"id": "1"})
	require.True(t, found)
	assert.Empty(t, errs)
	assert.Equal(t, "alice", body["name"])
}

func TestInnermostNestedStubWins(t *testing.T) {
	i := NewInterceptor()
	exitOuter := i.StubFixed("users", "get_user", map[string]interface{}{"name": "outer"}, nil)
	defer exitOuter()

	exitInner := i.StubFixed("users", "get_user", map[string]interface{}{"name": "inner"}, nil)

	body, _, found := i.Intercept(context.Background(), "users", "get_user", nil)
	require.True(t, found)
	assert.Equal(t, "inner", body["name"])

	exitInner()

	body, _, found = i.Intercept(context.Background(), "users", "get_user", nil)
	require.True(t, found)
	assert.Equal(t, "outer", body["name"])
}

func TestInterceptRecordsEachCall(t *testing.T) {
	i := NewInterceptor()
	defer i.StubFixed("users", "get_user", map[string]interface{}{}, nil)()

	_, _, _ = i.Intercept(context.Background(), "users", "get_user", map[string]interface{}{"id": "1"})
	_, _, _ = i.Intercept(context.Background(), "users", "get_user", map[string]interface{}{"id": "2"})

	assert.Equal(t, 2, i.Recorder().CallCount("users", "get_user"))
	bodies := i.Recorder().CallBodies("users", "get_user")
	require.Len(t, bodies, 2)
	assert.Equal(t, "1", bodies[0]["id"])
	assert.Equal(t, "2", bodies[1]["id"])
}

func TestStubCanReturnErrors(t *testing.T) {
	i := NewInterceptor()
	defer i.StubFixed("users", "get_user", nil, []soaerrors.Error{soaerrors.NewMissing("id", "required")})()

	_, errs, found := i.Intercept(context.Background(), "users", "get_user", nil)
	require.True(t, found)
	require.Len(t, errs, 1)
	assert.Equal(t, soaerrors.CodeMissing, errs[0].Code)
}
