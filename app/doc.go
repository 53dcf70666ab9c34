/*
Package app wires the yield distribution engine together.

Engine exposes every operation of the engine. Each state changing operation
runs as a single unit of work on a cache wrap of the store: all its writes are
committed when it succeeds and all are dropped when it fails or panics. A
nested call into the engine from inside of a running operation, for example
from a funds transfer, is rejected with ErrReentrant.

Serializing callers is the job of the surrounding environment. The engine
never reads the wall clock, the time of every operation is the block time
of its context (see yieldshift.WithBlockTime).
*/
package app
