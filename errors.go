package loadbench

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// ConfigError reports an invalid or missing configuration value. It is
// returned before any operation is issued against the backend.
type ConfigError struct {
	Param string
	Value string
	Err   error
}

func (self *ConfigError) Error() string {
	if len(self.Value) == 0 {
		return fmt.Sprintf("invalid config %s: %s", self.Param, self.Err)
	}
	return fmt.Sprintf("invalid config %s=%q: %s", self.Param, self.Value, self.Err)
}

func (self *ConfigError) Unwrap() error {
	return self.Err
}

func NewConfigError(param, value string, err error) *ConfigError {
	return &ConfigError{
		Param: param,
		Value: value,
		Err:   err,
	}
}

func newConfigErrorf(param, value string, format string, args ...interface{}) *ConfigError {
	return NewConfigError(param, value, errors.Errorf(format, args...))
}

// BackendError wraps an error returned by the database binding.
type BackendError struct {
	Op    string
	Table string
	Key   string
	Err   error
}

func (self *BackendError) Error() string {
	if len(self.Key) == 0 {
		return fmt.Sprintf("%s %s failed: %s", self.Op, self.Table, self.Err)
	}
	return fmt.Sprintf("%s %s %s failed: %s", self.Op, self.Table, self.Key, self.Err)
}

func (self *BackendError) Unwrap() error {
	return self.Err
}

func NewBackendError(op, table, key string, err error) *BackendError {
	return &BackendError{
		Op:    op,
		Table: table,
		Key:   key,
		Err:   err,
	}
}

// UnknownPhaseError reports a phase name other than "load" and "run".
type UnknownPhaseError struct {
	Phase string
}

func (self *UnknownPhaseError) Error() string {
	return fmt.Sprintf("unknown phase %q, expected %q or %q", self.Phase, PhaseLoad, PhaseRun)
}

// configErrors collects several ConfigErrors so they can be reported at once.
type configErrors struct {
	result *multierror.Error
}

func (self *configErrors) add(err error) {
	if err != nil {
		self.result = multierror.Append(self.result, err)
	}
}

func (self *configErrors) errorOrNil() error {
	if self.result == nil {
		return nil
	}
	if len(self.result.Errors) == 1 {
		return self.result.Errors[0]
	}
	return self.result
}
