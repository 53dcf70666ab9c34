/*
Package sources keeps the registry of yield sources.

Only a registered source may credit yield, and only under the category it was
registered with. Revoking a source makes all its future credits fail.
*/
package sources

import (
	"regexp"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/orm"
)

var isCategory = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{1,32}$`).MatchString

// Authorization binds a yield source to the category it may credit.
type Authorization struct {
	Source   yieldshift.Address `json:"source"`
	Category string             `json:"category"`
}

var _ yieldshift.Model = (*Authorization)(nil)

func (a *Authorization) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Source", a.Source.Validate())
	if !isCategory(a.Category) {
		errs = errors.AppendField(errs, "Category", errors.Wrapf(errors.ErrInvalidParameter, "invalid category %q", a.Category))
	}
	return errs
}

func (a *Authorization) Marshal() ([]byte, error) {
	return proto.Marshal(&authorizationWire{Source: a.Source, Category: a.Category})
}

func (a *Authorization) Unmarshal(raw []byte) error {
	var w authorizationWire
	if err := proto.Unmarshal(raw, &w); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	a.Source = w.Source
	a.Category = w.Category
	return nil
}

type authorizationWire struct {
	Source   []byte `protobuf:"bytes,1,opt,name=source,proto3" json:"source,omitempty"`
	Category string `protobuf:"bytes,2,opt,name=category,proto3" json:"category,omitempty"`
}

func (m *authorizationWire) Reset()         { *m = authorizationWire{} }
func (m *authorizationWire) String() string { return proto.CompactTextString(m) }
func (*authorizationWire) ProtoMessage()    {}

// Registry stores source authorizations keyed by the source address.
type Registry struct {
	b orm.ModelBucket
}

func NewRegistry() Registry {
	return Registry{b: orm.NewModelBucket("source")}
}

// Authorize registers the source for given category. Registering an already
// known source replaces its category.
func (r Registry) Authorize(db yieldshift.KVStore, source yieldshift.Address, category string) error {
	if err := source.Validate(); err != nil {
		return errors.Field("Source", err, "cannot authorize")
	}
	a := Authorization{Source: source, Category: category}
	return r.b.Put(db, source, &a)
}

// Revoke removes the source authorization.
func (r Registry) Revoke(db yieldshift.KVStore, source yieldshift.Address) error {
	if err := source.Validate(); err != nil {
		return errors.Field("Source", err, "cannot revoke")
	}
	if err := r.b.Delete(db, source); err != nil {
		return errors.Wrapf(err, "source %s", source)
	}
	return nil
}

// Source returns the authorization of given source. ErrNotFound is returned
// for unknown sources.
func (r Registry) Source(db yieldshift.ReadOnlyKVStore, source yieldshift.Address) (*Authorization, error) {
	var a Authorization
	if err := r.b.One(db, source, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Check returns ErrUnauthorizedYieldSource unless the source is registered
// for exactly given category. Any failure to read the registry is reported
// as unauthorized as well.
func (r Registry) Check(db yieldshift.ReadOnlyKVStore, source yieldshift.Address, category string) error {
	if len(source) == 0 {
		return errors.Wrap(errors.ErrUnauthorizedYieldSource, "no source")
	}
	a, err := r.Source(db, source)
	if err != nil {
		return errors.Wrapf(errors.ErrUnauthorizedYieldSource, "source %s: %s", source, err)
	}
	if a.Category != category {
		return errors.Wrapf(errors.ErrUnauthorizedYieldSource, "source %s may credit %q, not %q", source, a.Category, category)
	}
	return nil
}

// All returns every registered authorization ordered by source address.
func (r Registry) All(db yieldshift.ReadOnlyKVStore) ([]Authorization, error) {
	it, err := r.b.All(db)
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var res []Authorization
	for {
		var a Authorization
		switch _, err := it.LoadNext(&a); {
		case errors.ErrIteratorDone.Is(err):
			return res, nil
		case err != nil:
			return nil, err
		}
		res = append(res, a)
	}
}
