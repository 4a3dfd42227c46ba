package balance

import "errors"

// Sentinel errors for definition loading and validation.
var (
	// ErrUnsupportedFormat indicates a definition file extension with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported definition format")
	// ErrMissingField indicates a required field (e.g. id, base_rate) is empty.
	ErrMissingField = errors.New("required field missing")
	// ErrDuplicateID indicates two entries of the same section share an ID.
	ErrDuplicateID = errors.New("duplicate ID")
	// ErrUnknownRef indicates a reference to an ID that is not defined.
	ErrUnknownRef = errors.New("unknown reference")
	// ErrCycle indicates node requirements that loop back on themselves.
	ErrCycle = errors.New("requirement cycle")
	// ErrBounds indicates a numeric field outside its valid range.
	ErrBounds = errors.New("value out of range")
	// ErrBadAction indicates a rule action that cannot be parsed.
	ErrBadAction = errors.New("invalid rule action")
	// ErrBadTrigger indicates an unrecognized rule trigger.
	ErrBadTrigger = errors.New("invalid rule trigger")
	// ErrBadEffect indicates an unrecognized node effect kind.
	ErrBadEffect = errors.New("invalid node effect")
)

// ValidationCategory classifies a validation error for programmatic handling.
type ValidationCategory string

const (
	// ValCatMissingField indicates a required field is empty.
	ValCatMissingField ValidationCategory = "missing_field"
	// ValCatDuplicateID indicates two entries share an ID.
	ValCatDuplicateID ValidationCategory = "duplicate_id"
	// ValCatUnknownRef indicates a reference to an undefined ID.
	ValCatUnknownRef ValidationCategory = "unknown_ref"
	// ValCatCycle indicates a requirement cycle among nodes.
	ValCatCycle ValidationCategory = "cycle"
	// ValCatBoundsViolation indicates a numeric field is out of valid range.
	ValCatBoundsViolation ValidationCategory = "bounds_violation"
	// ValCatInvalidValue indicates an unparseable action, trigger or effect.
	ValCatInvalidValue ValidationCategory = "invalid_value"
)

// ValidationError records a validation problem with its location in the
// definition.
type ValidationError struct {
	Category ValidationCategory // Machine-readable category for programmatic handling
	Section  string             // generators, nodes, rules, milestones, prestige, offline
	ID       string
	Field    string
	Err      error
}

// Error returns a human-readable string including section and entry context.
func (e *ValidationError) Error() string {
	if e.ID != "" {
		return e.Section + " " + e.ID + ": " + e.Err.Error()
	}
	if e.Section != "" {
		return e.Section + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
