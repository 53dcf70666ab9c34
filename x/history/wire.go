package history

import "github.com/gogo/protobuf/proto"

// Protobuf representation of the history models. Amounts are kept in their
// decimal form as they do not fit into any native integer type.

type poolSnapshotWire struct {
	UserPoolSize   string `protobuf:"bytes,1,opt,name=user_pool_size,json=userPoolSize,proto3" json:"user_pool_size,omitempty"`
	HedgerPoolSize string `protobuf:"bytes,2,opt,name=hedger_pool_size,json=hedgerPoolSize,proto3" json:"hedger_pool_size,omitempty"`
	Timestamp      int64  `protobuf:"varint,3,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

func (m *poolSnapshotWire) Reset()         { *m = poolSnapshotWire{} }
func (m *poolSnapshotWire) String() string { return proto.CompactTextString(m) }
func (*poolSnapshotWire) ProtoMessage()    {}

type poolHistoryWire struct {
	Snapshots []*poolSnapshotWire `protobuf:"bytes,1,rep,name=snapshots,proto3" json:"snapshots,omitempty"`
}

func (m *poolHistoryWire) Reset()         { *m = poolHistoryWire{} }
func (m *poolHistoryWire) String() string { return proto.CompactTextString(m) }
func (*poolHistoryWire) ProtoMessage()    {}

type allocationSnapshotWire struct {
	AllocationBps uint32 `protobuf:"varint,1,opt,name=allocation_bps,json=allocationBps,proto3" json:"allocation_bps,omitempty"`
	Timestamp     int64  `protobuf:"varint,2,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

func (m *allocationSnapshotWire) Reset()         { *m = allocationSnapshotWire{} }
func (m *allocationSnapshotWire) String() string { return proto.CompactTextString(m) }
func (*allocationSnapshotWire) ProtoMessage()    {}

type allocationHistoryWire struct {
	Snapshots []*allocationSnapshotWire `protobuf:"bytes,1,rep,name=snapshots,proto3" json:"snapshots,omitempty"`
}

func (m *allocationHistoryWire) Reset()         { *m = allocationHistoryWire{} }
func (m *allocationHistoryWire) String() string { return proto.CompactTextString(m) }
func (*allocationHistoryWire) ProtoMessage()    {}
