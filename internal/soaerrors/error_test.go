// file: internal/soaerrors/error_test.go
package soaerrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsSetCorrectCallerFaultDefault(t *testing.T) {
	assert.True(t, NewInvalid("field", "bad").IsCallerError)
	assert.True(t, NewMissing("field", "required").IsCallerError)
	assert.True(t, NewUnknownAction("frobnicate").IsCallerError)
	assert.False(t, NewServerError("boom", "").IsCallerError)
	assert.True(t, NewNotAuthorized("nope", []string{"admin"}).IsCallerError)
	assert.False(t, NewResponseTooLarge("too big").IsCallerError)
}

func TestNewUnknownActionNamesTheAction(t *testing.T) {
	err := NewUnknownAction("do_thing")
	assert.Equal(t, CodeUnknown, err.Code)
	assert.Contains(t, err.Message, "do_thing")
	assert.Equal(t, "action", err.Field)
}

func TestJobErrorFormatsMessage(t *testing.T) {
	err := &JobError{Errors: []Error{NewServerError("kaboom", "")}}
	assert.Contains(t, err.Error(), "kaboom")
}

func TestCallActionErrorFormatsPerAction(t *testing.T) {
	resp := fakeActionResponse{action: "get_user", errs: []Error{NewMissing("id", "required")}}
	err := &CallActionError{ActionResponses: []ActionResponseLike{resp}}
	assert.Contains(t, err.Error(), "get_user")
	assert.Contains(t, err.Error(), "required")
}

type fakeActionResponse struct {
	action string
	errs   []Error
}

func (f fakeActionResponse) GetAction() string  { return f.action }
func (f fakeActionResponse) GetErrors() []Error { return f.errs }
