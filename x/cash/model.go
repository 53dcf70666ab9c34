package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
)

// Wallet holds the balance of a single address.
type Wallet struct {
	Balance yieldshift.Amount
}

var _ yieldshift.Model = (*Wallet)(nil)

func (w *Wallet) Validate() error {
	return nil
}

func (w *Wallet) Marshal() ([]byte, error) {
	return proto.Marshal(&walletWire{Balance: yieldshift.NormAmount(w.Balance).String()})
}

func (w *Wallet) Unmarshal(raw []byte) error {
	var ww walletWire
	if err := proto.Unmarshal(raw, &ww); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	b, err := yieldshift.ParseAmount(ww.Balance)
	if err != nil {
		return errors.Wrap(err, "balance")
	}
	w.Balance = b
	return nil
}

type walletWire struct {
	Balance string `protobuf:"bytes,1,opt,name=balance,proto3" json:"balance,omitempty"`
}

func (m *walletWire) Reset()         { *m = walletWire{} }
func (m *walletWire) String() string { return proto.CompactTextString(m) }
func (*walletWire) ProtoMessage()    {}
