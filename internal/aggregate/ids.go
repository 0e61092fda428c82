package aggregate

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/research-analyst/internal/types"
)

// sourceIDLength is the number of hex characters kept from the name hash.
const sourceIDLength = 12

// sourceID derives a stable ID from a source's URL, or from its title and
// origin when it has none, so the same article keeps its ID across runs.
func sourceID(prefix string, s types.Source) string {
	key := strings.TrimSpace(s.URL)
	namespace := uuid.NameSpaceURL
	if key == "" {
		key = strings.ToLower(strings.Join([]string{prefix, s.Source, s.Title, s.Description}, "\x00"))
		namespace = uuid.NameSpaceOID
	}
	sum := strings.ReplaceAll(uuid.NewSHA1(namespace, []byte(key)).String(), "-", "")
	return prefix + "-" + sum[:sourceIDLength]
}

// withID returns s with its ID set from sourceID.
func withID(prefix string, s types.Source) types.Source {
	s.ID = sourceID(prefix, s)
	return s
}

// dedupe keeps the first source seen for each ID.
func dedupe(sources []types.Source) []types.Source {
	seen := make(map[string]bool, len(sources))
	out := make([]types.Source, 0, len(sources))
	for _, s := range sources {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out
}
