package osm

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// This file hand-decodes exactly the subset of fileformat.proto and
// osmformat.proto this reader needs (BlobHeader, Blob, HeaderBlock,
// PrimitiveBlock, PrimitiveGroup, Node, DenseNodes, Way, Relation,
// StringTable) directly off the protobuf wire format via protowire's
// low-level varint/length-delimited primitives, instead of depending on
// generated .pb.go stubs or an existing OSM-PBF library — see DESIGN.md
// for why. Field numbers below are the public, stable ones defined by the
// OSM PBF format.

// forEachField walks the top-level fields of a protobuf message encoded in
// data, calling visit once per field with its number, wire type, and raw
// content (for BytesType: the unwrapped payload; for VarintType: the
// decoded value; Fixed32/Fixed64 are not used anywhere in this schema and
// are skipped without calling visit). Stops early, without error, if visit returns false.
func forEachField(data []byte, visit func(num protowire.Number, typ protowire.Type, bytesVal []byte, varintVal uint64) (bool, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: bad field tag: %v", ErrMalformedFile, protowire.ParseError(n))
		}
		data = data[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("%w: bad varint field %d: %v", ErrMalformedFile, num, protowire.ParseError(n))
			}
			data = data[n:]
			cont, err := visit(num, typ, nil, v)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("%w: bad bytes field %d: %v", ErrMalformedFile, num, protowire.ParseError(n))
			}
			data = data[n:]
			cont, err := visit(num, typ, v, 0)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		case protowire.Fixed32Type:
			_, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return fmt.Errorf("%w: bad fixed32 field %d", ErrMalformedFile, num)
			}
			data = data[n:]
		case protowire.Fixed64Type:
			_, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return fmt.Errorf("%w: bad fixed64 field %d", ErrMalformedFile, num)
			}
			data = data[n:]
		default:
			return fmt.Errorf("%w: unsupported wire type %d on field %d", ErrMalformedFile, typ, num)
		}
	}
	return nil
}

// decodePackedVarints unpacks a `repeated <int type> ... [packed=true]`
// field's raw bytes into its component varints, without any zigzag
// interpretation (callers apply protowire.DecodeZigZag themselves for
// sint32/sint64 fields — lat/lon/id deltas, way refs, relation memids).
func decodePackedVarints(data []byte) ([]uint64, error) {
	var out []uint64
	for len(data) > 0 {
		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: bad packed varint: %v", ErrMalformedFile, protowire.ParseError(n))
		}
		out = append(out, v)
		data = data[n:]
	}
	return out, nil
}

// --- BlobHeader / Blob (fileformat.proto) -----------------------------

type blobHeader struct {
	Type     string
	DataSize int32
}

func decodeBlobHeader(data []byte) (blobHeader, error) {
	var h blobHeader
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, b []byte, v uint64) (bool, error) {
		switch num {
		case 1:
			h.Type = string(b)
		case 3:
			h.DataSize = int32(v)
		}
		return true, nil
	})
	return h, err
}

type blob struct {
	Raw      []byte
	RawSize  int32
	HasRaw   bool
	ZlibData []byte
	LzmaData []byte
	Lz4Data  []byte
	ZstdData []byte
}

func decodeBlob(data []byte) (blob, error) {
	var b blob
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, raw []byte, v uint64) (bool, error) {
		switch num {
		case 1:
			b.Raw = raw
			b.HasRaw = true
		case 2:
			b.RawSize = int32(v)
		case 3:
			b.ZlibData = raw
		case 4:
			b.LzmaData = raw
		case 6:
			b.Lz4Data = raw
		case 7:
			b.ZstdData = raw
		}
		return true, nil
	})
	return b, err
}

// --- HeaderBlock (osmformat.proto) ------------------------------------

type headerBlock struct {
	RequiredFeatures []string
}

func decodeHeaderBlock(data []byte) (headerBlock, error) {
	var h headerBlock
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, b []byte, v uint64) (bool, error) {
		if num == 4 {
			h.RequiredFeatures = append(h.RequiredFeatures, string(b))
		}
		return true, nil
	})
	return h, err
}

// --- StringTable -------------------------------------------------------

func decodeStringTable(data []byte) ([]string, error) {
	var s []string
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, b []byte, v uint64) (bool, error) {
		if num == 1 {
			s = append(s, string(b))
		}
		return true, nil
	})
	return s, err
}

// --- PrimitiveBlock / PrimitiveGroup ------------------------------------

type primitiveBlock struct {
	StringTable     []string
	Granularity     int32
	LatOffset       int64
	LonOffset       int64
	DateGranularity int32
	Groups          [][]byte // raw PrimitiveGroup messages
}

func decodePrimitiveBlockHeader(data []byte) (primitiveBlock, error) {
	pb := primitiveBlock{Granularity: 100, DateGranularity: 1000}
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, b []byte, v uint64) (bool, error) {
		switch num {
		case 1:
			st, err := decodeStringTable(b)
			if err != nil {
				return false, err
			}
			pb.StringTable = st
		case 2:
			pb.Groups = append(pb.Groups, b)
		case 17:
			pb.Granularity = int32(v)
		case 19:
			pb.LatOffset = int64(v)
		case 20:
			pb.LonOffset = int64(v)
		case 18:
			pb.DateGranularity = int32(v)
		}
		return true, nil
	})
	return pb, err
}

type primitiveGroup struct {
	Nodes     [][]byte // raw Node messages
	Dense     []byte   // raw DenseNodes message, nil if absent
	HasDense  bool
	Ways      [][]byte
	Relations [][]byte
}

func decodePrimitiveGroup(data []byte) (primitiveGroup, error) {
	var g primitiveGroup
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, b []byte, v uint64) (bool, error) {
		switch num {
		case 1:
			g.Nodes = append(g.Nodes, b)
		case 2:
			g.Dense = b
			g.HasDense = true
		case 3:
			g.Ways = append(g.Ways, b)
		case 4:
			g.Relations = append(g.Relations, b)
		}
		return true, nil
	})
	return g, err
}

// --- Node (non-dense) ----------------------------------------------------

type pbfNode struct {
	ID       int64
	Lat, Lon int64
	Keys     []uint32
	Vals     []uint32
}

func decodePBFNode(data []byte) (pbfNode, error) {
	var n pbfNode
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, b []byte, v uint64) (bool, error) {
		switch num {
		case 1:
			n.ID = protowire.DecodeZigZag(v)
		case 2:
			vals, err := decodePackedVarints(b)
			if err != nil {
				return false, err
			}
			n.Keys = toUint32s(vals)
		case 3:
			vals, err := decodePackedVarints(b)
			if err != nil {
				return false, err
			}
			n.Vals = toUint32s(vals)
		case 8:
			n.Lat = protowire.DecodeZigZag(v)
		case 9:
			n.Lon = protowire.DecodeZigZag(v)
		}
		return true, nil
	})
	return n, err
}

func toUint32s(vals []uint64) []uint32 {
	out := make([]uint32, len(vals))
	for i, v := range vals {
		out[i] = uint32(v)
	}
	return out
}

// --- DenseNodes ----------------------------------------------------------

type denseNodes struct {
	ID       []int64
	Lat, Lon []int64
	// KeysVals is the flat (key_sid, val_sid, ..., 0, ...) stream; 0
	// terminates one node's tag list.
	KeysVals []int32
}

func decodeDenseNodes(data []byte) (denseNodes, error) {
	var dn denseNodes
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, b []byte, v uint64) (bool, error) {
		switch num {
		case 1:
			deltas, err := decodePackedVarints(b)
			if err != nil {
				return false, err
			}
			dn.ID = undelta(deltas)
		case 8:
			deltas, err := decodePackedVarints(b)
			if err != nil {
				return false, err
			}
			dn.Lat = undelta(deltas)
		case 9:
			deltas, err := decodePackedVarints(b)
			if err != nil {
				return false, err
			}
			dn.Lon = undelta(deltas)
		case 10:
			raw, err := decodePackedVarints(b)
			if err != nil {
				return false, err
			}
			kv := make([]int32, len(raw))
			for i, r := range raw {
				kv[i] = int32(r)
			}
			dn.KeysVals = kv
		}
		return true, nil
	})
	return dn, err
}

// undelta turns a sequence of zigzag-encoded deltas (as raw varints) into
// absolute values via prefix-sum, per §4.5's "delta-encoded (prefix-sum of
// signed deltas starting at 0)" contract.
func undelta(rawDeltas []uint64) []int64 {
	out := make([]int64, len(rawDeltas))
	var running int64
	for i, raw := range rawDeltas {
		running += protowire.DecodeZigZag(raw)
		out[i] = running
	}
	return out
}

// --- Way -------------------------------------------------------------------

type pbfWay struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Refs []int64
}

func decodePBFWay(data []byte) (pbfWay, error) {
	var w pbfWay
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, b []byte, v uint64) (bool, error) {
		switch num {
		case 1:
			w.ID = int64(v)
		case 2:
			vals, err := decodePackedVarints(b)
			if err != nil {
				return false, err
			}
			w.Keys = toUint32s(vals)
		case 3:
			vals, err := decodePackedVarints(b)
			if err != nil {
				return false, err
			}
			w.Vals = toUint32s(vals)
		case 8:
			deltas, err := decodePackedVarints(b)
			if err != nil {
				return false, err
			}
			w.Refs = undelta(deltas)
		}
		return true, nil
	})
	return w, err
}

// --- Relation ---------------------------------------------------------------

type pbfRelation struct {
	ID       int64
	Keys     []uint32
	Vals     []uint32
	RolesSid []int32
	MemIDs   []int64
	Types    []int32 // 0=node, 1=way, 2=relation, parallel to MemIDs/RolesSid
}

func decodePBFRelation(data []byte) (pbfRelation, error) {
	var r pbfRelation
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, b []byte, v uint64) (bool, error) {
		switch num {
		case 1:
			r.ID = int64(v)
		case 2:
			vals, err := decodePackedVarints(b)
			if err != nil {
				return false, err
			}
			r.Keys = toUint32s(vals)
		case 3:
			vals, err := decodePackedVarints(b)
			if err != nil {
				return false, err
			}
			r.Vals = toUint32s(vals)
		case 8:
			vals, err := decodePackedVarints(b)
			if err != nil {
				return false, err
			}
			sids := make([]int32, len(vals))
			for i, x := range vals {
				sids[i] = int32(x)
			}
			r.RolesSid = sids
		case 9:
			// memids are delta-encoded, NOT parallel-plain like types/roles_sid.
			deltas, err := decodePackedVarints(b)
			if err != nil {
				return false, err
			}
			r.MemIDs = undelta(deltas)
		case 10:
			vals, err := decodePackedVarints(b)
			if err != nil {
				return false, err
			}
			types := make([]int32, len(vals))
			for i, x := range vals {
				types[i] = int32(x)
			}
			r.Types = types
		}
		return true, nil
	})
	return r, err
}
