package thread

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"threadpost/utils"
)

// DeriveIdentity builds the unique key for a new conversation. Participants
// are lowercased and sorted so the same pair always produces the same prefix
// regardless of who initiated; the millisecond suffix keeps repeat
// conversations between the same pair distinct. Pure function, no I/O.
func DeriveIdentity(participants []string, now time.Time) (string, error) {
	if len(participants) == 0 {
		return "", utils.ValidationError("At least one participant is required", nil)
	}

	normalized := make([]string, len(participants))
	for i, p := range participants {
		normalized[i] = strings.ToLower(strings.TrimSpace(p))
	}
	sort.Strings(normalized)

	return fmt.Sprintf("%s_%d", strings.Join(normalized, "_"), now.UnixMilli()), nil
}

// NormalizeParticipants returns the deduplicated, lowercased participant set
// stored on the aggregate. Order of first appearance is preserved.
func NormalizeParticipants(participants []string) []string {
	seen := make(map[string]bool, len(participants))
	out := make([]string, 0, len(participants))
	for _, p := range participants {
		lower := strings.ToLower(strings.TrimSpace(p))
		if lower == "" || seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, lower)
	}
	return out
}
