/*
Package yieldshift defines the common types and interfaces that tie together
the yield distribution engine: key-value store interfaces, the UNIX time and
address types, money and basis point arithmetic and the role based
authorization contract.

The engine splits incoming yield between a "user" pool and a "hedger" pool.
The split follows a live allocation that a controller moves, in bounded steps,
toward a target derived from the ratio of the eligible pool sizes. All state
lives in a KVStore and every operation is executed on a cache wrap of that
store, so that an operation is either applied completely or not at all.

We pass context.Context between the application and the extensions. To do
so, this package defines keys to store the block time and the logger.

  WithXYZ(Context, T) Context
  XYZ(Context) (val T, err error)
*/
package yieldshift
