package knownbad

import "fmt"

// ConfigurationError reports a known-bad source that is missing, unparsable
// or structurally invalid. It is fatal: callers abort before collecting.
type ConfigurationError struct {
	Source string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "invalid known-bad list"
	if e.Source != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Source)
	}
	msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErr(reason string, err error) *ConfigurationError {
	return &ConfigurationError{Reason: reason, Err: err}
}
