package scifi

import "fmt"

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error {
	return e.Err
}

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error {
	return e.Err
}

// ErrInvalidCatalog is returned when the layer catalog fails validation.
// It is fatal: every event depends on the catalog.
type ErrInvalidCatalog struct {
	Reason string
}

func (e *ErrInvalidCatalog) Error() string {
	return fmt.Sprintf("invalid layer catalog: %s", e.Reason)
}

func invalidCatalog(format string, args ...any) error {
	return &ErrInvalidCatalog{Reason: fmt.Sprintf(format, args...)}
}

// ErrUnknownChannel represents a SiPM channel not owned by any catalog layer.
type ErrUnknownChannel struct {
	ChannelID int32
}

func (e *ErrUnknownChannel) Error() string {
	return fmt.Sprintf("channel %d does not belong to any fiber layer", e.ChannelID)
}

// ErrInvalidParams represents reconstruction parameters out of range.
type ErrInvalidParams struct {
	Param string
	Value any
}

func (e *ErrInvalidParams) Error() string {
	return fmt.Sprintf("invalid reconstruction parameter %s: %v", e.Param, e.Value)
}

// ErrQueryDatabase represents a failed query against the run database.
type ErrQueryDatabase struct {
	Table string
	Err   error
}

func (e *ErrQueryDatabase) Error() string {
	return fmt.Sprintf("error querying table %s: %v", e.Table, e.Err)
}

func (e *ErrQueryDatabase) Unwrap() error {
	return e.Err
}
