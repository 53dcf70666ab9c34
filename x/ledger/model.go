package ledger

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
)

// Pool selects the side of a participant account.
type Pool int

const (
	UserPool Pool = iota
	HedgerPool
)

func (p Pool) String() string {
	if p == HedgerPool {
		return "hedger"
	}
	return "user"
}

// State holds the ledger counters.
type State struct {
	TotalGenerated   yieldshift.Amount `json:"total_generated"`
	TotalDistributed yieldshift.Amount `json:"total_distributed"`
	UserPoolYield    yieldshift.Amount `json:"user_pool_yield"`
	HedgerPoolYield  yieldshift.Amount `json:"hedger_pool_yield"`
}

var _ yieldshift.Model = (*State)(nil)

// NewState returns zeroed counters.
func NewState() *State {
	return &State{
		TotalGenerated:   yieldshift.ZeroAmount(),
		TotalDistributed: yieldshift.ZeroAmount(),
		UserPoolYield:    yieldshift.ZeroAmount(),
		HedgerPoolYield:  yieldshift.ZeroAmount(),
	}
}

// Accumulator returns the accumulator of given pool.
func (s *State) Accumulator(p Pool) yieldshift.Amount {
	if p == HedgerPool {
		return yieldshift.NormAmount(s.HedgerPoolYield)
	}
	return yieldshift.NormAmount(s.UserPoolYield)
}

// Undistributed returns TotalGenerated - TotalDistributed.
func (s *State) Undistributed() (yieldshift.Amount, error) {
	return yieldshift.SafeSub(s.TotalGenerated, s.TotalDistributed)
}

func (s *State) Validate() error {
	free, err := s.Undistributed()
	if err != nil {
		return errors.Field("TotalDistributed", errors.ErrModel, "more distributed than generated")
	}
	held, err := yieldshift.SafeAdd(s.UserPoolYield, s.HedgerPoolYield)
	if err != nil {
		return errors.Wrap(err, "accumulators")
	}
	if held.GT(free) {
		return errors.Wrapf(errors.ErrModel, "accumulators hold %s, only %s undistributed", held, free)
	}
	return nil
}

func (s *State) Marshal() ([]byte, error) {
	return proto.Marshal(&stateWire{
		TotalGenerated:   yieldshift.NormAmount(s.TotalGenerated).String(),
		TotalDistributed: yieldshift.NormAmount(s.TotalDistributed).String(),
		UserPoolYield:    yieldshift.NormAmount(s.UserPoolYield).String(),
		HedgerPoolYield:  yieldshift.NormAmount(s.HedgerPoolYield).String(),
	})
}

func (s *State) Unmarshal(raw []byte) error {
	var w stateWire
	if err := proto.Unmarshal(raw, &w); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	var err error
	if s.TotalGenerated, err = yieldshift.ParseAmount(w.TotalGenerated); err != nil {
		return errors.Wrap(err, "total generated")
	}
	if s.TotalDistributed, err = yieldshift.ParseAmount(w.TotalDistributed); err != nil {
		return errors.Wrap(err, "total distributed")
	}
	if s.UserPoolYield, err = yieldshift.ParseAmount(w.UserPoolYield); err != nil {
		return errors.Wrap(err, "user pool yield")
	}
	if s.HedgerPoolYield, err = yieldshift.ParseAmount(w.HedgerPoolYield); err != nil {
		return errors.Wrap(err, "hedger pool yield")
	}
	return nil
}

// Account is the per participant record of one pool.
type Account struct {
	PendingYield    yieldshift.Amount   `json:"pending_yield"`
	LastClaimTime   yieldshift.UnixTime `json:"last_claim_time"`
	LastDepositTime yieldshift.UnixTime `json:"last_deposit_time"`
}

var _ yieldshift.Model = (*Account)(nil)

func (a *Account) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "LastClaimTime", a.LastClaimTime.Validate())
	errs = errors.AppendField(errs, "LastDepositTime", a.LastDepositTime.Validate())
	return errs
}

func (a *Account) Marshal() ([]byte, error) {
	return proto.Marshal(&accountWire{
		PendingYield:    yieldshift.NormAmount(a.PendingYield).String(),
		LastClaimTime:   int64(a.LastClaimTime),
		LastDepositTime: int64(a.LastDepositTime),
	})
}

func (a *Account) Unmarshal(raw []byte) error {
	var w accountWire
	if err := proto.Unmarshal(raw, &w); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	pending, err := yieldshift.ParseAmount(w.PendingYield)
	if err != nil {
		return errors.Wrap(err, "pending yield")
	}
	*a = Account{
		PendingYield:    pending,
		LastClaimTime:   yieldshift.UnixTime(w.LastClaimTime),
		LastDepositTime: yieldshift.UnixTime(w.LastDepositTime),
	}
	return nil
}

type stateWire struct {
	TotalGenerated   string `protobuf:"bytes,1,opt,name=total_generated,json=totalGenerated,proto3" json:"total_generated,omitempty"`
	TotalDistributed string `protobuf:"bytes,2,opt,name=total_distributed,json=totalDistributed,proto3" json:"total_distributed,omitempty"`
	UserPoolYield    string `protobuf:"bytes,3,opt,name=user_pool_yield,json=userPoolYield,proto3" json:"user_pool_yield,omitempty"`
	HedgerPoolYield  string `protobuf:"bytes,4,opt,name=hedger_pool_yield,json=hedgerPoolYield,proto3" json:"hedger_pool_yield,omitempty"`
}

func (m *stateWire) Reset()         { *m = stateWire{} }
func (m *stateWire) String() string { return proto.CompactTextString(m) }
func (*stateWire) ProtoMessage()    {}

type accountWire struct {
	PendingYield    string `protobuf:"bytes,1,opt,name=pending_yield,json=pendingYield,proto3" json:"pending_yield,omitempty"`
	LastClaimTime   int64  `protobuf:"varint,2,opt,name=last_claim_time,json=lastClaimTime,proto3" json:"last_claim_time,omitempty"`
	LastDepositTime int64  `protobuf:"varint,3,opt,name=last_deposit_time,json=lastDepositTime,proto3" json:"last_deposit_time,omitempty"`
}

func (m *accountWire) Reset()         { *m = accountWire{} }
func (m *accountWire) String() string { return proto.CompactTextString(m) }
func (*accountWire) ProtoMessage()    {}
