package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/yieldshift/errors"
)

// collectBtree returns all items of the btree within [start, end) domain in
// the requested order. nil start or end means unbounded.
func collectBtree(bt *btree.BTree, start, end []byte, reverse bool) []keyer {
	var items []keyer
	collect := func(i btree.Item) bool {
		items = append(items, i.(keyer))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	if reverse {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
	return items
}

// mergeIterator combines cached items with the iterator of the parent store,
// taking into consideration overwrites and deletes.
type mergeIterator struct {
	cached  []keyer
	parent  Iterator
	reverse bool

	// Parent is read ahead by one element.
	pkey, pvalue []byte
	pdone        bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(cached []keyer, parent Iterator, reverse bool) *mergeIterator {
	return &mergeIterator{
		cached:  cached,
		parent:  parent,
		reverse: reverse,
	}
}

func (m *mergeIterator) advanceParent() error {
	if m.pdone || m.pkey != nil {
		return nil
	}
	key, value, err := m.parent.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		m.pdone = true
		return nil
	case err != nil:
		return err
	}
	m.pkey, m.pvalue = key, value
	return nil
}

// before returns true if key a comes before key b in the iteration order.
func (m *mergeIterator) before(a, b []byte) bool {
	cmp := bytes.Compare(a, b)
	if m.reverse {
		return cmp > 0
	}
	return cmp < 0
}

// Next implements Iterator.
func (m *mergeIterator) Next() (key, value []byte, err error) {
	for {
		if err := m.advanceParent(); err != nil {
			return nil, nil, err
		}
		if len(m.cached) == 0 {
			if m.pdone {
				return nil, nil, errors.ErrIteratorDone
			}
			key, value = m.pkey, m.pvalue
			m.pkey, m.pvalue = nil, nil
			return key, value, nil
		}

		item := m.cached[0]
		if !m.pdone && m.before(m.pkey, item.Key()) {
			key, value = m.pkey, m.pvalue
			m.pkey, m.pvalue = nil, nil
			return key, value, nil
		}

		// Cached item wins. Shadowed parent entry is dropped.
		m.cached = m.cached[1:]
		if !m.pdone && bytes.Equal(m.pkey, item.Key()) {
			m.pkey, m.pvalue = nil, nil
		}
		if set, ok := item.(setItem); ok {
			return set.Key(), set.value, nil
		}
		// Deleted, try again.
	}
}

// Release implements Iterator.
func (m *mergeIterator) Release() {
	m.parent.Release()
	m.cached = nil
}
