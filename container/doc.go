// Package container provides generic concurrency-safe collections used as
// building blocks for stores and registries.
//
// Every operation is atomic with respect to its container: readers never
// observe a partially applied mutation. No operation holds a lock while
// running caller code, so callbacks and iteration bodies may freely call
// back into the same container without deadlocking. Iteration works on a
// snapshot taken under the lock and yielded after release; mutations made
// while iterating affect the container, not the snapshot.
package container
