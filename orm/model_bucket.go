package orm

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// ModelBucket is a prefixed subspace of the database that stores models of a
// single type.
type ModelBucket struct {
	name   string
	prefix []byte
}

// NewModelBucket returns a bucket that stores data under "<name>:" prefix.
// Name must be 3 to 10 lower case letters or underscores.
func NewModelBucket(name string) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	return ModelBucket{
		name:   name,
		prefix: append([]byte(name), ':'),
	}
}

// Name returns the name of this bucket.
func (mb ModelBucket) Name() string {
	return mb.name
}

// DBKey is the full key we store in the db, including prefix. A new array is
// allocated so that consecutive calls never share the backing buffer.
func (mb ModelBucket) DBKey(key []byte) []byte {
	out := make([]byte, len(mb.prefix)+len(key))
	copy(out, mb.prefix)
	copy(out[len(mb.prefix):], key)
	return out
}

// One loads the model stored under given key into dest. ErrNotFound is
// returned if no entity exists.
func (mb ModelBucket) One(db yieldshift.ReadOnlyKVStore, key []byte, dest yieldshift.Model) error {
	raw, err := db.Get(mb.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot get")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrap(err, "cannot unmarshal")
	}
	return nil
}

// Has returns nil if an entity exists under given key and ErrNotFound
// otherwise.
func (mb ModelBucket) Has(db yieldshift.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot check")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return nil
}

// Put validates and saves the model under given key.
func (mb ModelBucket) Put(db yieldshift.KVStore, key []byte, m yieldshift.Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrInput, "empty key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot marshal")
	}
	if err := db.Set(mb.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot set")
	}
	return nil
}

// Delete removes the entity stored under given key. ErrNotFound is returned if
// no entity exists.
func (mb ModelBucket) Delete(db yieldshift.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	if err := db.Delete(mb.DBKey(key)); err != nil {
		return errors.Wrap(err, "cannot delete")
	}
	return nil
}

// All returns an iterator over every entity of this bucket in key order.
func (mb ModelBucket) All(db yieldshift.ReadOnlyKVStore) (*ModelIterator, error) {
	end := make([]byte, len(mb.prefix))
	copy(end, mb.prefix)
	// ':' + 1
	end[len(end)-1]++
	it, err := db.Iterator(mb.prefix, end)
	if err != nil {
		return nil, errors.Wrap(err, "cannot iterate")
	}
	return &ModelIterator{iterator: it, prefix: mb.prefix}, nil
}

// ModelIterator loads bucket entities one by one.
type ModelIterator struct {
	iterator yieldshift.Iterator
	prefix   []byte
}

// LoadNext loads the next entity into dest and returns its key without the
// bucket prefix. ErrIteratorDone is returned when there are no more values.
func (i *ModelIterator) LoadNext(dest yieldshift.Model) ([]byte, error) {
	key, value, err := i.iterator.Next()
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(key, i.prefix) {
		return nil, errors.Wrapf(errors.ErrDatabase, "key %q outside of bucket", key)
	}
	if err := dest.Unmarshal(value); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal")
	}
	return key[len(i.prefix):], nil
}

// Release releases the underlying iterator.
func (i *ModelIterator) Release() {
	i.iterator.Release()
}
