// file: internal/soaclient/codec.go
package soaclient

import (
	"github.com/dkoosis/gosoa/internal/message"
	"github.com/dkoosis/gosoa/internal/soaerrors"
)

func decodeActionResponse(m map[string]interface{}) message.ActionResponse {
	var resp message.ActionResponse
	if action, ok := m["action"].(string); ok {
		resp.Action = action
	}
	if body, ok := m["body"].(map[string]interface{}); ok {
		resp.Body = body
	}
	if errsRaw, ok := m["errors"].([]interface{}); ok {
		for _, raw := range errsRaw {
			if em, ok := raw.(map[string]interface{}); ok {
				resp.Errors = append(resp.Errors, decodeError(em))
			}
		}
	}
	return resp
}

func decodeError(m map[string]interface{}) soaerrors.Error {
	var e soaerrors.Error
	if code, ok := m["code"].(string); ok {
		e.Code = soaerrors.Code(code)
	}
	if msg, ok := m["message"].(string); ok {
		e.Message = msg
	}
	if field, ok := m["field"].(string); ok {
		e.Field = field
	}
	if tb, ok := m["traceback"].(string); ok {
		e.Traceback = tb
	}
	if vars, ok := m["variables"].(map[string]interface{}); ok {
		e.Variables = vars
	}
	if denied, ok := m["denied_permissions"].([]interface{}); ok {
		for _, d := range denied {
			if s, ok := d.(string); ok {
				e.DeniedPermissions = append(e.DeniedPermissions, s)
			}
		}
	}
	if isCaller, ok := m["is_caller_error"].(bool); ok {
		e.IsCallerError = isCaller
	}
	return e
}
