package fsm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TransitionHint describes one expected transition in a config file.
type TransitionHint struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Guard string `yaml:"guard,omitempty"`
}

// Config carries advisory extraction hints. Every field is optional; the
// zero Config is valid and means "no hints".
//
// A state_var hint is accepted only when the content provides at least
// minHintScore points of evidence for it, so a stale config cannot force
// a variable the logic never treats as state.
type Config struct {
	StateVar            string                      `yaml:"state_var,omitempty"`
	PhysicalVars        []string                    `yaml:"physical_vars,omitempty"`
	ExplicitStates      []string                    `yaml:"explicit_states,omitempty"`
	ExpectedStates      map[string][]string         `yaml:"expected_states,omitempty"`
	ExpectedTransitions map[string][]TransitionHint `yaml:"expected_transitions,omitempty"`
}

// configFile is the on-disk shape: hints are grouped per controller with
// "default" applying when no controller-specific entry exists.
type configFile struct {
	Controllers map[string]Config `yaml:"controllers"`
}

// LoadConfig reads extraction hints for the named controller from a YAML
// file, falling back to the "default" entry. A missing file is an error;
// callers treat it as missing optional context (warn and continue with
// the zero Config).
func LoadConfig(path, controller string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read fsm config: %w", err)
	}

	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parse fsm config %s: %w", path, err)
	}

	if cfg, ok := file.Controllers[controller]; ok {
		return cfg, nil
	}
	return file.Controllers["default"], nil
}
