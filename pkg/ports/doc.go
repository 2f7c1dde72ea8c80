/*
Package ports defines the driven ports (interfaces) for the history viewer.

These interfaces decouple the selection state machine and the diff engine
from storage backends and from the versioning layer that supplies records.

# Key Interfaces

  - SelectionStore: persists the compare selection of each editor session.
  - VersionSource: lists and loads the versions of a record.
  - DistributedLocker: coordinates dispatches across replicas.
*/
package ports
