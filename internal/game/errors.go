package game

import "errors"

// Sentinel errors returned by Session operations.
var (
	// ErrUnknownGenerator indicates a generator id not in the definition.
	ErrUnknownGenerator = errors.New("unknown generator")
	// ErrUnknownNode indicates an unlock node id not in the definition.
	ErrUnknownNode = errors.New("unknown node")
	// ErrCannotAfford indicates the wallet holds less than the price.
	ErrCannotAfford = errors.New("cannot afford")
	// ErrRequirementsUnmet indicates a node whose prerequisites are still locked.
	ErrRequirementsUnmet = errors.New("requirements not met")
	// ErrAlreadyUnlocked indicates a node that is already unlocked.
	ErrAlreadyUnlocked = errors.New("already unlocked")
	// ErrNoPrestige indicates the definition has no prestige layer.
	ErrNoPrestige = errors.New("prestige not configured")
	// ErrNotEligible indicates lifetime earnings below the prestige threshold.
	ErrNotEligible = errors.New("not eligible for prestige")
)
