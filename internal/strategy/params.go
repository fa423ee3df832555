package strategy

import "fmt"

// ParamType identifies the value type of a strategy parameter.
type ParamType string

const (
	ParamInt   ParamType = "int"
	ParamFloat ParamType = "float"
)

// ParamSpec declares one recognized strategy parameter: its type, default and
// allowed range. Callers render input controls and validate values from
// these specs.
type ParamSpec struct {
	Name    string    `json:"name"`
	Type    ParamType `json:"type"`
	Default any       `json:"default"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
}

// ParameterError reports an invalid strategy parameter value. It is fatal to
// the run (or sweep combination) it belongs to, never to the whole sweep.
type ParameterError struct {
	Strategy string
	Param    string
	Reason   string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("strategy %s: parameter %q: %s", e.Strategy, e.Param, e.Reason)
}

// intParam resolves an integer parameter against its spec, applying the
// default when absent and enforcing the allowed range.
func intParam(strategyName string, params map[string]any, spec ParamSpec) (int, error) {
	raw, ok := params[spec.Name]
	if !ok {
		raw = spec.Default
	}

	var v int
	switch n := raw.(type) {
	case int:
		v = n
	case int64:
		v = int(n)
	case float64:
		if n != float64(int(n)) {
			return 0, &ParameterError{Strategy: strategyName, Param: spec.Name, Reason: fmt.Sprintf("expected integer, got %v", n)}
		}
		v = int(n)
	default:
		return 0, &ParameterError{Strategy: strategyName, Param: spec.Name, Reason: fmt.Sprintf("expected integer, got %T", raw)}
	}

	if float64(v) < spec.Min || float64(v) > spec.Max {
		return 0, &ParameterError{Strategy: strategyName, Param: spec.Name, Reason: fmt.Sprintf("%d outside allowed range [%g, %g]", v, spec.Min, spec.Max)}
	}
	return v, nil
}

// floatParam resolves a float parameter against its spec.
func floatParam(strategyName string, params map[string]any, spec ParamSpec) (float64, error) {
	raw, ok := params[spec.Name]
	if !ok {
		raw = spec.Default
	}

	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	default:
		return 0, &ParameterError{Strategy: strategyName, Param: spec.Name, Reason: fmt.Sprintf("expected number, got %T", raw)}
	}

	if v < spec.Min || v > spec.Max {
		return 0, &ParameterError{Strategy: strategyName, Param: spec.Name, Reason: fmt.Sprintf("%g outside allowed range [%g, %g]", v, spec.Min, spec.Max)}
	}
	return v, nil
}

// rejectUnknown fails when params contains a key no spec declares. Catches
// typos in sweep grids before they silently backtest defaults.
func rejectUnknown(strategyName string, params map[string]any, specs []ParamSpec) error {
	known := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		known[spec.Name] = struct{}{}
	}
	for name := range params {
		if _, ok := known[name]; !ok {
			return &ParameterError{Strategy: strategyName, Param: name, Reason: "unknown parameter"}
		}
	}
	return nil
}
