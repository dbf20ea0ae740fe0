// Package state persists workflow progress.
//
// A [WorkflowState] records which steps of a workflow completed and the
// opaque handles of the cloud resources they produced. It is created on the
// first run, rewritten after every successful step and never deleted
// automatically, so an interrupted run can be resumed.
//
// Stores:
//   - [FileStore] keeps the state in a local YAML file guarded by a lock file.
//   - [S3Store] keeps it in an S3-compatible bucket, locking with a
//     conditional write.
//   - [MemoryStore] keeps it in memory (tests, dry runs).
package state
