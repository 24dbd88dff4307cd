package batch

import "github.com/pkg/errors"

// ErrEmpty is returned by InsertInto/Iterate when the payload is
// shorter than the fixed header.
var ErrEmpty = errors.New("batch: payload shorter than header")

// corruption wraps a malformed-record error with the offending tag's
// name, matching the "Corruption: bad WriteBatch X" identifiers
// spec.md §4.4 and §8 scenario 3 require.
type corruption struct {
	what string
}

func (c *corruption) Error() string { return "Corruption: bad WriteBatch " + c.what }

func corrupt(what string) error { return &corruption{what: what} }
