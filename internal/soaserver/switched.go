// file: internal/soaserver/switched.go
package soaserver

import (
	"github.com/cockroachdb/errors"

	"github.com/dkoosis/gosoa/internal/switches"
)

// defaultSwitchSentinel is this package's analogue of the original's
// _DefaultAction sentinel: a value that never matches a real switch, so an
// entry keyed by DefaultSwitch is only ever selected as the fallback.
type defaultSwitchSentinel struct{}

// DefaultSwitch marks a SwitchedActionEntry as the fallback chosen when no
// other entry's switch is active, mirroring
// pysoa.server.action.switched._DefaultAction.
var DefaultSwitch = defaultSwitchSentinel{}

// SwitchedActionEntry pairs a switch (or DefaultSwitch) with the concrete
// Action to run when it is selected.
type SwitchedActionEntry struct {
	Switch interface{}
	Action Action
}

// SwitchedAction resolves to one of several concrete actions based on which
// feature-flag switch is active on the current request, mirroring
// pysoa.server.action.switched.SwitchedAction. It does not itself implement
// Action: the Server resolves through it (see SwitchResolver) and then runs
// the resolved action's own schema/validate/run pipeline, the same way the
// original's __call__ delegates to get_uninitialized_action(...)(settings)(request)
// rather than wrapping itself in another layer of base.Action.__call__.
type SwitchedAction struct {
	entries []SwitchedActionEntry
}

// NewSwitchedAction validates and constructs a SwitchedAction. At least two
// entries are required, mirroring _SwitchedActionMetaClass's class-creation-time
// check that switch_to_action_map has 2+ entries.
func NewSwitchedAction(entries ...SwitchedActionEntry) (*SwitchedAction, error) {
	if len(entries) < 2 {
		return nil, errors.New("NewSwitchedAction: requires at least 2 (switch, action) entries")
	}
	for _, e := range entries {
		if e.Action == nil {
			return nil, errors.New("NewSwitchedAction: entry has a nil action")
		}
	}
	return &SwitchedAction{entries: entries}, nil
}

// Resolve implements SwitchResolver: the first entry whose switch is active
// wins; if none match, the entry keyed by DefaultSwitch is used; if neither
// applies, the last entry is used, mirroring
// SwitchedAction.get_uninitialized_action's exact fallback order.
func (s *SwitchedAction) Resolve(sw switches.Set) (Action, error) {
	var defaultAction Action
	var lastAction Action
	for _, e := range s.entries {
		lastAction = e.Action
		if _, isDefault := e.Switch.(defaultSwitchSentinel); isDefault {
			defaultAction = e.Action
			continue
		}
		if sw.Contains(e.Switch) {
			return e.Action, nil
		}
	}
	if defaultAction != nil {
		return defaultAction, nil
	}
	return lastAction, nil
}
