package naru

import (
	"fmt"

	"github.com/insidewhy/naru/internal/config"
)

// action is one of the closed set of identifiers the binding table can
// dispatch to. Modeled as an enumerated tag rather than a stored function
// value or method reference (see the teacher's function-pointer table):
// the action set is closed, so a tag dispatched through a small switch
// keeps the binding table free of any dynamic-dispatch machinery.
type action string

const (
	actionSelectPrev action = "select-prev"
	actionSelectNext action = "select-next"
	actionBackspace  action = "backspace"
)

// defaultBindings are inserted only where the user's config hasn't already
// claimed the key, per §4.4.
var defaultBindings = map[string]action{
	"\x1b[A": actionSelectPrev,
	"\x1bOA": actionSelectPrev,
	"\x1b[B": actionSelectNext,
	"\x1bOB": actionSelectNext,
	"\x0b":   actionSelectPrev, // ^K
	"\x05":   actionSelectPrev, // ^E
	"\x0a":   actionSelectNext, // ^J (shadowed in practice by the accept check)
	"\x0e":   actionSelectNext, // ^N
	"\x08":   actionBackspace,  // ^H
	"\x7f":   actionBackspace,  // DEL
}

// resolveAction maps a config-file action name to its tag. An unknown name
// is a fatal configuration error, surfaced before any terminal I/O happens.
func resolveAction(name string) (action, bool) {
	switch action(name) {
	case actionSelectPrev, actionSelectNext, actionBackspace:
		return action(name), true
	default:
		return "", false
	}
}

// assembleBindings merges user-supplied bindings (config keys spelled
// "c-<letter>") over the built-in defaults, user bindings winning on
// conflict. Config key syntax has already been validated by the config
// package; this function is responsible for validating action names,
// which is where the action set itself is defined.
func assembleBindings(userBindings map[string]string) (map[string]action, error) {
	bindings := make(map[string]action, len(defaultBindings)+len(userBindings))

	for key, name := range userBindings {
		ctrl, ok := config.ControlByte(key)
		if !ok {
			return nil, fmt.Errorf("naru: malformed binding key %q", key)
		}
		act, ok := resolveAction(name)
		if !ok {
			return nil, fmt.Errorf("naru: unknown action %q for key %q", name, key)
		}
		bindings[string(ctrl)] = act
	}

	for seq, act := range defaultBindings {
		if _, taken := bindings[seq]; !taken {
			bindings[seq] = act
		}
	}

	return bindings, nil
}
