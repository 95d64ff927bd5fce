package optcache

import "github.com/unkn0wn-root/optcache/internal/util"

// Key identifies one cache entry: an ordered sequence of opaque tokens,
// e.g. optcache.NewKey("todos", "list", userID).
type Key []string

func NewKey(tokens ...string) Key { return Key(tokens) }

// String joins the tokens into a deterministic storage key. Distinct token
// sequences produce distinct strings.
func (k Key) String() string { return util.JoinKey(k) }
