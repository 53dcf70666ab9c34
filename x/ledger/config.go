package ledger

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/gconf"
)

// ConfigName is the gconf package name of the ledger configuration.
const ConfigName = "ledger"

// Config holds the addresses of the collaborator pools. Emergency
// distribution pays to them.
type Config struct {
	UserPool   yieldshift.Address `json:"user_pool"`
	HedgerPool yieldshift.Address `json:"hedger_pool"`
}

var _ gconf.Configuration = (*Config)(nil)

func (c *Config) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "UserPool", c.UserPool.Validate())
	errs = errors.AppendField(errs, "HedgerPool", c.HedgerPool.Validate())
	return errs
}

func (c *Config) Marshal() ([]byte, error) {
	return proto.Marshal(&configWire{UserPool: c.UserPool, HedgerPool: c.HedgerPool})
}

func (c *Config) Unmarshal(raw []byte) error {
	var w configWire
	if err := proto.Unmarshal(raw, &w); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	c.UserPool = w.UserPool
	c.HedgerPool = w.HedgerPool
	return nil
}

// LoadConfig returns the ledger configuration.
func LoadConfig(db gconf.ReadStore) (*Config, error) {
	var c Config
	if err := gconf.Load(db, ConfigName, &c); err != nil {
		return nil, errors.Wrap(err, "ledger configuration")
	}
	return &c, nil
}

type configWire struct {
	UserPool   []byte `protobuf:"bytes,1,opt,name=user_pool,json=userPool,proto3" json:"user_pool,omitempty"`
	HedgerPool []byte `protobuf:"bytes,2,opt,name=hedger_pool,json=hedgerPool,proto3" json:"hedger_pool,omitempty"`
}

func (m *configWire) Reset()         { *m = configWire{} }
func (m *configWire) String() string { return proto.CompactTextString(m) }
func (*configWire) ProtoMessage()    {}
