package types

import "errors"

// Error taxonomy. Every specific error below unwraps to one of these roots,
// so callers can branch with errors.Is on the category alone.
var (
	ErrValidation  = errors.New("validation failed")
	ErrPermission  = errors.New("permission denied")
	ErrCapacity    = errors.New("capacity exceeded")
	ErrConsistency = errors.New("inconsistent state")
	ErrNotFound    = errors.New("not found")
)

// kindError is a sentinel that belongs to one or more taxonomy roots.
type kindError struct {
	msg   string
	kinds []error
}

func (e *kindError) Error() string   { return e.msg }
func (e *kindError) Unwrap() []error { return e.kinds }

func newError(msg string, kinds ...error) error {
	return &kindError{msg: msg, kinds: kinds}
}

// Validation errors.
var (
	ErrStatKindMismatch  = newError("stat value kind does not match stat type", ErrValidation)
	ErrEnumOutOfRange    = newError("enum index out of range", ErrValidation)
	ErrIntegerOutOfRange = newError("integer outside stat bounds", ErrValidation)
	ErrInvalidStatType   = newError("invalid stat type definition", ErrValidation)
	ErrTextTooLong       = newError("text value exceeds byte limit", ErrValidation)
	ErrLabelTooLong      = newError("label exceeds byte limit", ErrValidation)
	ErrURITooLong        = newError("stats URI exceeds byte limit", ErrValidation)
	ErrInvalidName       = newError("invalid stat name", ErrValidation)
	ErrDuplicateStat     = newError("duplicate stat name", ErrValidation)
	ErrDuplicateDomain   = newError("duplicate propagation domain", ErrValidation)
	ErrInvalidState      = newError("invalid inheritance state", ErrValidation)
	ErrInvalidPolicy     = newError("invalid update permissiveness", ErrValidation)
	ErrInvalidDomain     = newError("invalid field domain", ErrValidation)
	ErrInvalidID         = newError("invalid identifier", ErrValidation)
	ErrInvalidData       = newError("invalid record data", ErrValidation)
)

// Permission errors.
var (
	ErrUpdateDenied    = newError("actor may not update this record", ErrPermission)
	ErrNamespaceDenied = newError("actor may not operate under this namespace", ErrPermission)
)

// ErrNotOverridable is returned when an instance tries to escape inheritance
// for a field domain its template locks. It is both a consistency and a
// permission failure.
var ErrNotOverridable = newError("field domain is not overridable", ErrConsistency, ErrPermission)

// Consistency errors.
var (
	ErrNotInheritedTerminal = newError("field is not inherited and cannot transition", ErrConsistency)
	ErrCategoryLocked       = newError("category always inherits and cannot be set locally", ErrConsistency)
	ErrCyclicParent         = newError("class parent chain is cyclic", ErrConsistency)
	ErrAlreadyExists        = newError("record already exists", ErrConsistency)
	ErrHasDependents        = newError("class still has dependent records", ErrConsistency)
	ErrParentMismatch       = newError("template is not the record's parent", ErrConsistency)
	ErrNoTemplate           = newError("record has no template to inherit from", ErrConsistency)
	ErrStatInherited        = newError("stat comes from the template and cannot be removed", ErrConsistency)
	ErrAlreadyEquipped      = newError("item is already equipped", ErrConsistency)
	ErrProgramMismatch      = newError("records belong to another program", ErrConsistency)
)

// Capacity errors.
var (
	ErrIndexFull = newError("namespace index is full", ErrCapacity)
)

// Not-found errors.
var (
	ErrRecordNotFound    = newError("record not found", ErrNotFound)
	ErrClassNotFound     = newError("player class not found", ErrNotFound)
	ErrPlayerNotFound    = newError("player not found", ErrNotFound)
	ErrStatNotFound      = newError("stat not found", ErrNotFound)
	ErrItemNotFound      = newError("equipped item not found", ErrNotFound)
	ErrWhitelistNotFound = newError("whitelist entry not found", ErrNotFound)
)

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("record store is detached")
	ErrAlreadyAttached = errors.New("record store is already attached")
)
