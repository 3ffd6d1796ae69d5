// Package errors provides standardized error handling for filecat.
// It defines the error kinds raised by scanning, exporting and summarizing,
// plus helper functions for consistent creation, wrapping and inspection.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	FileCreateFailed
	FileOperationFailed
	InvalidOperation
	// Config error kinds
	InvalidConfig
	ConfigNotSet
	// Scan outcome kinds
	InvalidInputData
	EmptyResult
	// Remote service kinds
	RemoteServiceFailed
)

// String returns a short name for the kind, used in user-facing messages.
func (k ErrorKind) String() string {
	switch k {
	case FileNotFound:
		return "file_not_found"
	case FileAccessDenied:
		return "file_access_denied"
	case FileCreateFailed:
		return "file_create_failed"
	case FileOperationFailed:
		return "file_operation_failed"
	case InvalidOperation:
		return "invalid_operation"
	case InvalidConfig:
		return "invalid_config"
	case ConfigNotSet:
		return "config_not_set"
	case InvalidInputData:
		return "invalid_input"
	case EmptyResult:
		return "empty_result"
	case RemoteServiceFailed:
		return "remote_service_failed"
	default:
		return "unknown"
	}
}

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileNotFound
	}
	return false
}


// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsConfigNotSet checks if the error reports a required setting that is missing
func IsConfigNotSet(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == ConfigNotSet
	}
	return false
}

// InvalidInputError is returned when a scan root is missing or is not a directory.
type InvalidInputError struct {
	ApplicationError
	context map[string]interface{}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(msg string, err error) *InvalidInputError {
	return &InvalidInputError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: InvalidInputData,
		},
		context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the invalid input error
func (e *InvalidInputError) WithContext(key string, value interface{}) *InvalidInputError {
	e.context[key] = value
	return e
}

// Error returns the invalid input error message
func (e *InvalidInputError) Error() string {
	if path, ok := e.context["path"]; ok {
		if e.err != nil {
			return fmt.Sprintf("%s: %v: %v", e.msg, path, e.err)
		}
		return fmt.Sprintf("%s: %v", e.msg, path)
	}
	return e.ApplicationError.Error()
}

// Context returns the context information associated with the error
func (e *InvalidInputError) Context() map[string]interface{} {
	return e.context
}

// EmptyResultError is returned when a valid root contains no files at all.
// Callers treat it as an empty state, not as a failure of the tool.
type EmptyResultError struct {
	ApplicationError
	root string
}

// NewEmptyResultError creates a new empty result error for root
func NewEmptyResultError(root string) *EmptyResultError {
	return &EmptyResultError{
		ApplicationError: ApplicationError{
			msg:  "no files found",
			kind: EmptyResult,
		},
		root: root,
	}
}

// Error returns the empty result message
func (e *EmptyResultError) Error() string {
	if e.root != "" {
		return fmt.Sprintf("%s in %s", e.msg, e.root)
	}
	return e.msg
}

// Root returns the directory that produced no files
func (e *EmptyResultError) Root() string {
	return e.root
}

// RemoteError represents a failed call to an external service.
type RemoteError struct {
	ApplicationError
	service    string
	statusCode int
}

// NewRemoteError creates a new remote service error. statusCode is 0 when
// no HTTP response was received.
func NewRemoteError(msg string, service string, statusCode int, err error) *RemoteError {
	return &RemoteError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: RemoteServiceFailed,
		},
		service:    service,
		statusCode: statusCode,
	}
}

// Error returns the remote error message
func (e *RemoteError) Error() string {
	prefix := e.msg
	if e.service != "" {
		prefix = fmt.Sprintf("%s: %s", e.service, e.msg)
	}
	if e.statusCode != 0 {
		prefix = fmt.Sprintf("%s (status %d)", prefix, e.statusCode)
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %v", prefix, e.err)
	}
	return prefix
}

// Service returns the name of the remote service
func (e *RemoteError) Service() string {
	return e.service
}

// StatusCode returns the HTTP status code, or 0 if none was received
func (e *RemoteError) StatusCode() int {
	return e.statusCode
}

// IsInvalidInputError checks if the error is an invalid input error
func IsInvalidInputError(err error) bool {
	var inputErr *InvalidInputError
	return errors.As(err, &inputErr)
}

// IsEmptyResult checks if the error reports a scan that found no files
func IsEmptyResult(err error) bool {
	var emptyErr *EmptyResultError
	return errors.As(err, &emptyErr)
}

// IsRemoteError checks if the error came from an external service call
func IsRemoteError(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr)
}
