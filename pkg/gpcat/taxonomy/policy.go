package taxonomy

import (
	"fmt"
	"strings"

	"github.com/cognicore/gpcat/pkg/gpcat/internalerr"
)

// Delimiter separates path segments on a taxonomy line.
const Delimiter = " > "

// Policy decides which path positions refer to the same category.
type Policy interface {
	// Key returns the identity of segment i of a parsed line.
	Key(segments []string, i int) string
	Name() string
}

// ByName merges every occurrence of a title into the first node seen with
// that title, regardless of where it appears in the hierarchy.
var ByName Policy = namePolicy{}

// ByPath treats each distinct root-to-node path as its own category.
var ByPath Policy = pathPolicy{}

type namePolicy struct{}

func (namePolicy) Key(segments []string, i int) string { return segments[i] }
func (namePolicy) Name() string                        { return "name" }

type pathPolicy struct{}

func (pathPolicy) Key(segments []string, i int) string {
	return strings.Join(segments[:i+1], Delimiter)
}
func (pathPolicy) Name() string { return "path" }

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "name":
		return ByName, nil
	case "path":
		return ByPath, nil
	default:
		return nil, fmt.Errorf("dedup policy %q: %w", name, internalerr.ErrInvalidInput)
	}
}
