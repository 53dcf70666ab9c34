package store

import "github.com/iov-one/yieldshift"

// Move references for all storage types into this package
// for shorter names everywhere

type KVStore = yieldshift.KVStore
type ReadOnlyKVStore = yieldshift.ReadOnlyKVStore
type SetDeleter = yieldshift.SetDeleter
type Batch = yieldshift.Batch
type Iterator = yieldshift.Iterator
type CacheableKVStore = yieldshift.CacheableKVStore
type KVCacheWrap = yieldshift.KVCacheWrap
