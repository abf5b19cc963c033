// file: internal/expansion/engine.go
package expansion

import (
	"context"

	"github.com/dkoosis/gosoa/internal/message"
	"github.com/dkoosis/gosoa/internal/soaclient"
	"github.com/dkoosis/gosoa/internal/soaerrors"
)

// Engine drives the expansion dispatch loop over a compiled forest, using
// client to issue the per-expansion service calls. Mirrors the expansion
// half of pysoa.client.router.ClientRouter.call_action (the `while
// objs_to_expand or any(outstanding)` loop).
type Engine struct {
	converter *Converter
	client    *soaclient.Client
}

// NewEngine constructs an Engine over converter, issuing calls through client.
func NewEngine(converter *Converter, client *soaclient.Client) *Engine {
	return &Engine{converter: converter, client: client}
}

// pendingExpansion is one (object, expansion-node) pair still to be issued
// or still awaiting its response.
type pendingExpansion struct {
	obj  map[string]interface{}
	node *ExpansionNode
}

// Expand mutates objs in place, splicing each requested expansion's result
// into its destination field (and deleting the now-redundant source field),
// alternating an issue phase and a collect phase until nothing is left
// in-flight. requested maps a root type name to the dotted expansion paths
// wanted for objects of that type, the same shape
// ExpansionConverter.dict_to_trees expects.
func (e *Engine) Expand(ctx context.Context, objs []interface{}, requested map[string][]string) error {
	roots, err := e.converter.DictToTrees(requested)
	if err != nil {
		return err
	}

	var queue []pendingExpansion
	for _, root := range roots {
		for _, top := range objs {
			for _, matched := range root.FindObjects(top) {
				for _, child := range root.Children {
					queue = append(queue, pendingExpansion{obj: matched, node: child})
				}
			}
		}
	}

	outstanding := make(map[string]map[int]pendingExpansion)

	for len(queue) > 0 || anyOutstanding(outstanding) {
		issued := queue
		queue = nil

		for _, pe := range issued {
			if _, alreadyPopulated := pe.obj[pe.node.DestField]; alreadyPopulated {
				continue
			}
			sourceValue, ok := pe.obj[pe.node.SourceField]
			if !ok {
				continue
			}
			body := map[string]interface{}{pe.node.RequestField: sourceValue}
			requestID, err := e.client.SendRequest(ctx, pe.node.Service, []message.ActionRequest{{Action: pe.node.Action, Body: body}})
			if err != nil {
				return err
			}
			if outstanding[pe.node.Service] == nil {
				outstanding[pe.node.Service] = make(map[int]pendingExpansion)
			}
			outstanding[pe.node.Service][requestID] = pe
		}

		for serviceName, byID := range outstanding {
			if len(byID) == 0 {
				continue
			}
			next, err := e.client.GetAllResponses(ctx, serviceName)
			if err != nil {
				return err
			}
			for {
				requestID, response, ok, err := next()
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				pe, known := byID[requestID]
				if !known {
					continue
				}
				delete(byID, requestID)

				if err := e.collect(pe, response); err != nil {
					return err
				}
				if resultMap, enqueued := e.childExpansions(pe); enqueued {
					queue = append(queue, resultMap...)
				}
			}
		}
	}
	return nil
}

// collect applies one expansion's response to its object, or silently
// abandons the expansion (leaving the source field intact, no destination
// field, no child expansion) if RaiseActionErrors is false, mirroring the
// original's raise_action_errors handling.
func (e *Engine) collect(pe pendingExpansion, response message.JobResponse) error {
	if response.HasErrors() {
		if pe.node.RaiseActionErrors {
			return &soaerrors.JobError{Errors: response.Errors}
		}
		return nil
	}
	if len(response.Actions) == 0 {
		return nil
	}
	action := response.Actions[0]
	if len(action.Errors) > 0 {
		if pe.node.RaiseActionErrors {
			return &soaerrors.CallActionError{ActionResponses: []soaerrors.ActionResponseLike{action}}
		}
		return nil
	}
	result, ok := action.Body[pe.node.ResponseField]
	if !ok {
		return nil
	}
	pe.obj[pe.node.DestField] = result
	delete(pe.obj, pe.node.SourceField)
	return nil
}

// childExpansions returns the newly-enqueueable child pendingExpansions for
// pe's destination value, if that value was populated and is itself an
// object that can carry further nested expansions.
func (e *Engine) childExpansions(pe pendingExpansion) ([]pendingExpansion, bool) {
	result, ok := pe.obj[pe.node.DestField]
	if !ok || len(pe.node.Children) == 0 {
		return nil, false
	}
	resultMap, ok := result.(map[string]interface{})
	if !ok {
		return nil, false
	}
	var out []pendingExpansion
	for _, child := range pe.node.Children {
		out = append(out, pendingExpansion{obj: resultMap, node: child})
	}
	return out, len(out) > 0
}

func anyOutstanding(outstanding map[string]map[int]pendingExpansion) bool {
	for _, byID := range outstanding {
		if len(byID) > 0 {
			return true
		}
	}
	return false
}
