package libgexp

import (
	proto "github.com/gogo/protobuf/proto"
)

// The Def types below are the wire form of a Graph.  They are plain gogo
// protobuf messages, marshalled through the struct tags.

type SymbolDef struct {
	Family int32  `protobuf:"varint,1,opt,name=family,proto3" json:"family,omitempty"`
	N      int32  `protobuf:"varint,2,opt,name=n,proto3" json:"n,omitempty"`
	Name   string `protobuf:"bytes,3,opt,name=name,proto3" json:"name,omitempty"`
}

func (m *SymbolDef) Reset()         { *m = SymbolDef{} }
func (m *SymbolDef) String() string { return proto.CompactTextString(m) }
func (*SymbolDef) ProtoMessage()    {}

type FactorDef struct {
	Kind   int32      `protobuf:"varint,1,opt,name=kind,proto3" json:"kind,omitempty"`
	Charge int32      `protobuf:"zigzag32,2,opt,name=charge,proto3" json:"charge,omitempty"`
	Index  *SymbolDef `protobuf:"bytes,3,opt,name=index,proto3" json:"index,omitempty"`
}

func (m *FactorDef) Reset()         { *m = FactorDef{} }
func (m *FactorDef) String() string { return proto.CompactTextString(m) }
func (*FactorDef) ProtoMessage()    {}

type CoefficientDef struct {
	Kind    int32      `protobuf:"varint,1,opt,name=kind,proto3" json:"kind,omitempty"`
	Charge1 int32      `protobuf:"zigzag32,2,opt,name=charge1,proto3" json:"charge1,omitempty"`
	Charge2 int32      `protobuf:"zigzag32,3,opt,name=charge2,proto3" json:"charge2,omitempty"`
	I       *SymbolDef `protobuf:"bytes,4,opt,name=i,proto3" json:"i,omitempty"`
	J       *SymbolDef `protobuf:"bytes,5,opt,name=j,proto3" json:"j,omitempty"`
}

func (m *CoefficientDef) Reset()         { *m = CoefficientDef{} }
func (m *CoefficientDef) String() string { return proto.CompactTextString(m) }
func (*CoefficientDef) ProtoMessage()    {}

type TraceDef struct {
	Factors []*FactorDef `protobuf:"bytes,1,rep,name=factors,proto3" json:"factors,omitempty"`
}

func (m *TraceDef) Reset()         { *m = TraceDef{} }
func (m *TraceDef) String() string { return proto.CompactTextString(m) }
func (*TraceDef) ProtoMessage()    {}

type GraphDef struct {
	Coefficients []*CoefficientDef `protobuf:"bytes,1,rep,name=coefficients,proto3" json:"coefficients,omitempty"`
	Traces       []*TraceDef       `protobuf:"bytes,2,rep,name=traces,proto3" json:"traces,omitempty"`
}

func (m *GraphDef) Reset()         { *m = GraphDef{} }
func (m *GraphDef) String() string { return proto.CompactTextString(m) }
func (*GraphDef) ProtoMessage()    {}
