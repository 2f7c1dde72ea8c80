/*
Package session owns the compare-selection state of each editor session.

Dispatch serialises actions per session: the current snapshot is loaded,
reduced with domain.Reduce, and saved back as a whole. Local reference-counted
locks guard a single process; an optional DistributedLocker extends this across
replicas. Readers subscribe to snapshots instead of sharing mutable state.
*/
package session
