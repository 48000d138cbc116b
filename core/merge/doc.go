// Package merge applies caller-selected conflict policies to a batch of
// assembled entities against a persistent store.
//
// A run has two phases. BuildPlan is pure: it drops disabled kinds and
// out-of-range collection numbers and rejects entities with a missing or
// duplicate id. Apply then drives the Store for each pending entity through a
// bounded worker pool.
//
// # Policies
//
//	skip      create if absent, otherwise leave the stored entity alone
//	override  create if absent, otherwise replace the stored entity
//	append    create if absent, otherwise fold the incoming entity into it
//
// Decide maps (policy, exists) to an ActionType without any I/O.
//
// # Failure isolation
//
// Every entity is processed on its own. A lookup or write error, a timeout or
// a panic inside the store is counted against that entity's kind and logged by
// id; the rest of the batch still runs. Result logs follow input order.
//
// # Usage
//
//	engine := merge.NewEngine(store, logger)
//	result, err := engine.Run(ctx, entities, merge.Options{
//	    Kinds: map[merge.Kind]merge.KindOptions{
//	        "servant": {Import: true, Policy: merge.PolicyOverride},
//	    },
//	    Workers: 8,
//	    Timeout: 30 * time.Second,
//	})
package merge
