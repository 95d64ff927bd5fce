package optcache

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempIDPrefix tags locally issued placeholder identities for items that
// have not been persisted yet.
const TempIDPrefix = "temp_"

// NewTempID issues a collision-resistant placeholder identity:
// prefix + nanosecond timestamp + the first uuid segment (32 random bits on
// top of the clock, comfortably past the point where two calls in one
// process could collide).
func NewTempID() string {
	frag := uuid.NewString()
	if i := strings.IndexByte(frag, '-'); i > 0 {
		frag = frag[:i]
	}
	return fmt.Sprintf("%s%d_%s", TempIDPrefix, time.Now().UnixNano(), frag)
}

// IsTempID reports whether id is a placeholder issued by NewTempID.
// Numeric identities are never temporary.
func IsTempID(id ID) bool {
	s, ok := id.(string)
	return ok && strings.HasPrefix(s, TempIDPrefix)
}
