package optcache

// Hooks lightweight callbacks for high-signal lifecycle events.
// Implementations MUST be cheap and non-blocking; lifecycles call them
// inline on the mutation path. Wrap with hooks/asynchook to offload.
type Hooks interface {
	// An optimistic transform was written to the cache.
	// op ∈ {"create", "update", "delete"}
	OptimisticApplied(key string, op string)

	// The optimistic transform was skipped but the mutation proceeds.
	// reason ∈ {"not_found", "id_not_settable"}
	OptimisticSkipped(key string, op string, reason string)

	// A failed write restored the pre-mutation snapshot.
	RolledBack(key string, op string)

	// A temporary id was replaced by the server-assigned one.
	TempIDReconciled(key string, tempID, serverID ID)

	// The undo window elapsed; the delete is now committed.
	UndoExpired(key string)

	// Restore was requested after commit and refused.
	RestoreRejected(key string)

	// Begin requested cancellation of any in-flight refetch for the key.
	// Fires whether or not a refetch was actually running.
	RefetchCanceled(key string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) OptimisticApplied(string, string)         {}
func (NopHooks) OptimisticSkipped(string, string, string) {}
func (NopHooks) RolledBack(string, string)                {}
func (NopHooks) TempIDReconciled(string, ID, ID)          {}
func (NopHooks) UndoExpired(string)                       {}
func (NopHooks) RestoreRejected(string)                   {}
func (NopHooks) RefetchCanceled(string)                   {}
