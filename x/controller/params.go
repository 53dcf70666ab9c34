package controller

import (
	"time"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/gconf"
)

// ConfigName is the gconf package name of controller parameters.
const ConfigName = "controller"

const (
	// MaxStepBps is the largest allowed adjustment step.
	MaxStepBps yieldshift.Bps = 1000
	// MaxTargetRatioBps is the largest allowed target pool ratio (500%).
	MaxTargetRatioBps yieldshift.Bps = 50000
)

// Params are the governance controlled controller settings.
type Params struct {
	BaseBps        yieldshift.Bps `json:"base_bps"`
	MaxBps         yieldshift.Bps `json:"max_bps"`
	StepBps        yieldshift.Bps `json:"step_bps"`
	TargetRatioBps yieldshift.Bps `json:"target_ratio_bps"`
	// ToleranceBps is the relative band around the target ratio within
	// which the base allocation is used.
	ToleranceBps yieldshift.Bps `json:"tolerance_bps"`
	// TriggerToleranceBps is the wider band used by the heartbeat to
	// decide if a rebalance is due.
	TriggerToleranceBps yieldshift.Bps `json:"trigger_tolerance_bps"`
	TWAPPeriod          Duration       `json:"twap_period"`
}

// DefaultParams returns the parameters a fresh engine starts with.
func DefaultParams() Params {
	return Params{
		BaseBps:             5000,
		MaxBps:              9000,
		StepBps:             100,
		TargetRatioBps:      10000,
		ToleranceBps:        1000,
		TriggerToleranceBps: 2000,
		TWAPPeriod:          Duration(24 * time.Hour),
	}
}

var _ gconf.Configuration = (*Params)(nil)

// Validate returns all problems of the parameters, each attached to the
// field it concerns.
func (p *Params) Validate() error {
	var errs error
	if p.BaseBps > yieldshift.BpsScale {
		errs = errors.AppendField(errs, "BaseBps", errors.ErrInvalidParameter)
	}
	if p.MaxBps > yieldshift.BpsScale {
		errs = errors.AppendField(errs, "MaxBps", errors.ErrInvalidParameter)
	}
	if p.MaxBps < p.BaseBps {
		errs = errors.AppendField(errs, "MaxBps", errors.Wrapf(errors.ErrInvalidShiftRange, "max %d below base %d", p.MaxBps, p.BaseBps))
	}
	if p.StepBps > MaxStepBps {
		errs = errors.AppendField(errs, "StepBps", errors.Wrapf(errors.ErrInvalidParameter, "must not exceed %d", MaxStepBps))
	}
	if p.TargetRatioBps == 0 || p.TargetRatioBps > MaxTargetRatioBps {
		errs = errors.AppendField(errs, "TargetRatioBps", errors.Wrapf(errors.ErrInvalidParameter, "must be within (0, %d]", MaxTargetRatioBps))
	}
	if p.ToleranceBps > yieldshift.BpsScale {
		errs = errors.AppendField(errs, "ToleranceBps", errors.ErrInvalidParameter)
	}
	if p.TriggerToleranceBps > yieldshift.BpsScale {
		errs = errors.AppendField(errs, "TriggerToleranceBps", errors.ErrInvalidParameter)
	}
	if p.TWAPPeriod <= 0 {
		errs = errors.AppendField(errs, "TWAPPeriod", errors.Wrap(errors.ErrInvalidParameter, "must be positive"))
	}
	return errs
}

func (p *Params) Marshal() ([]byte, error) {
	return proto.Marshal(&paramsWire{
		BaseBps:             uint32(p.BaseBps),
		MaxBps:              uint32(p.MaxBps),
		StepBps:             uint32(p.StepBps),
		TargetRatioBps:      uint32(p.TargetRatioBps),
		ToleranceBps:        uint32(p.ToleranceBps),
		TriggerToleranceBps: uint32(p.TriggerToleranceBps),
		TWAPPeriod:          int64(p.TWAPPeriod),
	})
}

func (p *Params) Unmarshal(raw []byte) error {
	var w paramsWire
	if err := proto.Unmarshal(raw, &w); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	*p = Params{
		BaseBps:             yieldshift.Bps(w.BaseBps),
		MaxBps:              yieldshift.Bps(w.MaxBps),
		StepBps:             yieldshift.Bps(w.StepBps),
		TargetRatioBps:      yieldshift.Bps(w.TargetRatioBps),
		ToleranceBps:        yieldshift.Bps(w.ToleranceBps),
		TriggerToleranceBps: yieldshift.Bps(w.TriggerToleranceBps),
		TWAPPeriod:          Duration(w.TWAPPeriod),
	}
	return nil
}

// LoadParams returns the current parameters.
func LoadParams(db gconf.ReadStore) (Params, error) {
	var p Params
	if err := gconf.Load(db, ConfigName, &p); err != nil {
		return p, errors.Wrap(err, "controller parameters")
	}
	return p, nil
}

// SaveParams validates and writes the parameters.
func SaveParams(db gconf.Store, p Params) error {
	return gconf.Save(db, ConfigName, &p)
}

type paramsWire struct {
	BaseBps             uint32 `protobuf:"varint,1,opt,name=base_bps,json=baseBps,proto3" json:"base_bps,omitempty"`
	MaxBps              uint32 `protobuf:"varint,2,opt,name=max_bps,json=maxBps,proto3" json:"max_bps,omitempty"`
	StepBps             uint32 `protobuf:"varint,3,opt,name=step_bps,json=stepBps,proto3" json:"step_bps,omitempty"`
	TargetRatioBps      uint32 `protobuf:"varint,4,opt,name=target_ratio_bps,json=targetRatioBps,proto3" json:"target_ratio_bps,omitempty"`
	ToleranceBps        uint32 `protobuf:"varint,5,opt,name=tolerance_bps,json=toleranceBps,proto3" json:"tolerance_bps,omitempty"`
	TriggerToleranceBps uint32 `protobuf:"varint,6,opt,name=trigger_tolerance_bps,json=triggerToleranceBps,proto3" json:"trigger_tolerance_bps,omitempty"`
	TWAPPeriod          int64  `protobuf:"varint,7,opt,name=twap_period,json=twapPeriod,proto3" json:"twap_period,omitempty"`
}

func (m *paramsWire) Reset()         { *m = paramsWire{} }
func (m *paramsWire) String() string { return proto.CompactTextString(m) }
func (*paramsWire) ProtoMessage()    {}
