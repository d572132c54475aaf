// Package orchestrator mirrors monster state into the cluster as custom
// resources so monsters can be observed and managed as first-class cluster
// objects.
//
// The client is a thin adapter over the dynamic Kubernetes client against
// the kaschaefer.com/v1 monsters resource. Its contract with the
// reconciler:
//
//   - Create a resource per monster on first sighting; a duplicate create
//     surfaces ErrAlreadyExists for the caller to downgrade to a warning.
//   - Update merges field values into the existing spec with a bounded
//     retry on optimistic-concurrency conflicts (3 attempts, 1s apart).
//     Update never creates; a missing resource is a logged no-op.
//   - Delete and DeleteAll are best-effort; deleting what isn't there is a
//     logged no-op, and DeleteAll keeps going past individual failures.
//
// Field naming between the record and the resource spec goes through the
// explicit table in fieldmap.go; see the comment there for why.
package orchestrator
