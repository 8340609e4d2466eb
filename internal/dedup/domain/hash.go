package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// GroupHash derives the order-independent group key from the member IDs.
// IDs are sorted ascending before hashing, so re-detection over the same
// member set always resolves to the same existing group.
func GroupHash(memberIDs []uuid.UUID) string {
	ids := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)

	sum := sha256.Sum256([]byte(strings.Join(ids, "|")))
	return hex.EncodeToString(sum[:])
}
