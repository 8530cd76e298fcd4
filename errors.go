package drilldown

import (
	"errors"
	"fmt"
)

// Structural sentinel errors. They are always wrapped in a *StructuralError
// naming the page that carries the defect.
var (
	ErrIndexArity    = errors.New("row index arity mismatch")
	ErrGroupLevel    = errors.New("group level out of range")
	ErrShape         = errors.New("cell grid shape mismatch")
	ErrDuplicatePage = errors.New("duplicate page name")
	ErrUnknownParent = errors.New("parent page not found")
	ErrUnknownPage   = errors.New("linked page not found")
	ErrEmptyName     = errors.New("page name is empty")
	ErrNoTable       = errors.New("page has no table")
)

// StructuralError reports malformed caller data. Structural errors are fatal
// for the page they belong to and are never repaired.
type StructuralError struct {
	Page   string // page name, may be empty when the page itself is unnamed
	Field  string // e.g. "table.index[3]"
	Err    error  // one of the Err* sentinels
	Detail string
}

func (e *StructuralError) Error() string {
	msg := fmt.Sprintf("page %q: %s: %v", e.Page, e.Field, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// IsStructural reports whether err is, or wraps, a *StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

func structural(page, field string, err error, format string, args ...any) *StructuralError {
	return &StructuralError{
		Page:   page,
		Field:  field,
		Err:    err,
		Detail: fmt.Sprintf(format, args...),
	}
}
