package gexp

import (
	proto "github.com/gogo/protobuf/proto"
)

// Catalog format version written by this package.
const (
	CatalogMajorVers = 2024
	CatalogMinorVers = 1
)

// CatalogState is the header record a Catalog keeps alongside its terms.
type CatalogState struct {
	MajorVers int32  `protobuf:"varint,1,opt,name=major_vers,proto3" json:"major_vers,omitempty"`
	MinorVers int32  `protobuf:"varint,2,opt,name=minor_vers,proto3" json:"minor_vers,omitempty"`
	Seed      string `protobuf:"bytes,3,opt,name=seed,proto3" json:"seed,omitempty"`
	Order     int32  `protobuf:"varint,4,opt,name=order,proto3" json:"order,omitempty"`
	NumTerms  uint64 `protobuf:"varint,5,opt,name=num_terms,proto3" json:"num_terms,omitempty"`
}

func (m *CatalogState) Reset()         { *m = CatalogState{} }
func (m *CatalogState) String() string { return proto.CompactTextString(m) }
func (*CatalogState) ProtoMessage()    {}

func (m *CatalogState) Marshal() ([]byte, error) {
	return proto.Marshal(m)
}

func (m *CatalogState) Unmarshal(buf []byte) error {
	return proto.Unmarshal(buf, m)
}

// IsCompatible reports whether a catalog with this state can be opened.
func (m *CatalogState) IsCompatible() bool {
	return m.MajorVers == CatalogMajorVers && m.MinorVers == CatalogMinorVers
}

// InitState fills in a fresh state for a catalog opened with opts.
func (m *CatalogState) InitState(opts CatalogOpts) {
	*m = CatalogState{
		MajorVers: CatalogMajorVers,
		MinorVers: CatalogMinorVers,
		Seed:      opts.Seed,
		Order:     opts.Order,
	}
}
