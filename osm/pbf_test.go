package osm

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, []byte(s))
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendPackedVarints(vals []uint64) []byte {
	var out []byte
	for _, v := range vals {
		out = protowire.AppendVarint(out, v)
	}
	return out
}

func zz(v int64) uint64 { return protowire.EncodeZigZag(v) }

func TestDecodeBlobHeader(t *testing.T) {
	var data []byte
	data = appendStringField(data, 1, "OSMData")
	data = appendVarintField(data, 3, 12345)

	h, err := decodeBlobHeader(data)
	if err != nil {
		t.Fatalf("decodeBlobHeader: %v", err)
	}
	if h.Type != "OSMData" || h.DataSize != 12345 {
		t.Fatalf("unexpected header: %+v", h)
	}
}

func TestDecodeBlobRawPassthrough(t *testing.T) {
	var data []byte
	data = appendBytesField(data, 1, []byte("payload"))
	data = appendVarintField(data, 2, 7)

	b, err := decodeBlob(data)
	if err != nil {
		t.Fatalf("decodeBlob: %v", err)
	}
	if !b.HasRaw || string(b.Raw) != "payload" || b.RawSize != 7 {
		t.Fatalf("unexpected blob: %+v", b)
	}
}

func TestDecodeHeaderBlockRequiredFeatures(t *testing.T) {
	var data []byte
	data = appendStringField(data, 4, "OsmSchema-V0.6")
	data = appendStringField(data, 4, "DenseNodes")

	hb, err := decodeHeaderBlock(data)
	if err != nil {
		t.Fatalf("decodeHeaderBlock: %v", err)
	}
	if len(hb.RequiredFeatures) != 2 || hb.RequiredFeatures[1] != "DenseNodes" {
		t.Fatalf("unexpected required features: %v", hb.RequiredFeatures)
	}
}

func TestDecodePBFNodeRoundTrip(t *testing.T) {
	var data []byte
	data = appendVarintField(data, 1, zz(42))
	data = appendBytesField(data, 2, appendPackedVarints([]uint64{0}))
	data = appendBytesField(data, 3, appendPackedVarints([]uint64{1}))
	data = appendVarintField(data, 8, zz(525000000))
	data = appendVarintField(data, 9, zz(134000000))

	n, err := decodePBFNode(data)
	if err != nil {
		t.Fatalf("decodePBFNode: %v", err)
	}
	if n.ID != 42 || n.Lat != 525000000 || n.Lon != 134000000 {
		t.Fatalf("unexpected node: %+v", n)
	}
	if len(n.Keys) != 1 || n.Keys[0] != 0 || len(n.Vals) != 1 || n.Vals[0] != 1 {
		t.Fatalf("unexpected node tags refs: %+v", n)
	}
}

func TestDecodeDenseNodesDeltaDecoding(t *testing.T) {
	// Three nodes with ids 1, 3, 4 (deltas +1, +2, +1).
	ids := appendPackedVarints([]uint64{zz(1), zz(2), zz(1)})
	lats := appendPackedVarints([]uint64{zz(100), zz(10), zz(-5)})
	lons := appendPackedVarints([]uint64{zz(200), zz(-20), zz(5)})
	// First node has one tag (key sid 1, val sid 2), others untagged.
	// String table index 0 is conventionally reserved/empty so it can
	// double as the keys_vals terminator without ambiguity.
	keysVals := appendPackedVarints([]uint64{1, 2, 0, 0, 0})

	var data []byte
	data = appendBytesField(data, 1, ids)
	data = appendBytesField(data, 8, lats)
	data = appendBytesField(data, 9, lons)
	data = appendBytesField(data, 10, keysVals)

	dn, err := decodeDenseNodes(data)
	if err != nil {
		t.Fatalf("decodeDenseNodes: %v", err)
	}
	wantIDs := []int64{1, 3, 4}
	for i, id := range wantIDs {
		if dn.ID[i] != id {
			t.Fatalf("id[%d] = %d, want %d", i, dn.ID[i], id)
		}
	}
	if dn.Lat[0] != 100 || dn.Lat[1] != 110 || dn.Lat[2] != 105 {
		t.Fatalf("unexpected lat deltas: %v", dn.Lat)
	}

	feats, err := decodeDenseGroup(primitiveBlock{StringTable: []string{"", "amenity", "cafe"}, Granularity: 100}, data)
	if err != nil {
		t.Fatalf("decodeDenseGroup: %v", err)
	}
	if len(feats) != 3 {
		t.Fatalf("expected 3 dense nodes, got %d", len(feats))
	}
	n0 := feats[0].(Node)
	if n0.Tags["amenity"] != "cafe" {
		t.Fatalf("expected dense node 0 tagged amenity=cafe, got %+v", n0.Tags)
	}
	n1 := feats[1].(Node)
	if len(n1.Tags) != 0 {
		t.Fatalf("expected dense node 1 untagged, got %+v", n1.Tags)
	}
}

func TestDecodePBFWayRefsAreDeltaDecoded(t *testing.T) {
	refs := appendPackedVarints([]uint64{zz(5), zz(1), zz(-1)})
	var data []byte
	data = appendVarintField(data, 1, 99) // plain, not zigzag
	data = appendBytesField(data, 8, refs)

	w, err := decodePBFWay(data)
	if err != nil {
		t.Fatalf("decodePBFWay: %v", err)
	}
	if w.ID != 99 {
		t.Fatalf("unexpected way id: %d", w.ID)
	}
	want := []int64{5, 6, 5}
	for i, v := range want {
		if w.Refs[i] != v {
			t.Fatalf("refs[%d] = %d, want %d", i, w.Refs[i], v)
		}
	}
}

func TestDecodePBFRelationMemidsDeltaRolesPlain(t *testing.T) {
	memids := appendPackedVarints([]uint64{zz(10), zz(5)})
	roles := appendPackedVarints([]uint64{0, 1})
	types := appendPackedVarints([]uint64{1, 0}) // way, node

	var data []byte
	data = appendVarintField(data, 1, 7)
	data = appendBytesField(data, 8, roles)
	data = appendBytesField(data, 9, memids)
	data = appendBytesField(data, 10, types)

	r, err := decodePBFRelation(data)
	if err != nil {
		t.Fatalf("decodePBFRelation: %v", err)
	}
	if r.ID != 7 {
		t.Fatalf("unexpected relation id: %d", r.ID)
	}
	if r.MemIDs[0] != 10 || r.MemIDs[1] != 15 {
		t.Fatalf("unexpected (delta-decoded) memids: %v", r.MemIDs)
	}
	if r.RolesSid[0] != 0 || r.RolesSid[1] != 1 {
		t.Fatalf("unexpected (plain) roles_sid: %v", r.RolesSid)
	}
	if r.Types[0] != 1 || r.Types[1] != 0 {
		t.Fatalf("unexpected (plain) types: %v", r.Types)
	}
}

func TestDecodePrimitiveBlockHeaderDefaults(t *testing.T) {
	pb, err := decodePrimitiveBlockHeader(nil)
	if err != nil {
		t.Fatalf("decodePrimitiveBlockHeader: %v", err)
	}
	if pb.Granularity != 100 || pb.DateGranularity != 1000 {
		t.Fatalf("unexpected defaults: %+v", pb)
	}
}

func TestDecodePrimitiveBlockHeaderOverrides(t *testing.T) {
	var data []byte
	data = appendVarintField(data, 17, 1000)
	data = appendVarintField(data, 19, 500)
	data = appendVarintField(data, 20, 1500)

	pb, err := decodePrimitiveBlockHeader(data)
	if err != nil {
		t.Fatalf("decodePrimitiveBlockHeader: %v", err)
	}
	if pb.Granularity != 1000 || pb.LatOffset != 500 {
		t.Fatalf("unexpected overrides: %+v", pb)
	}
}

func TestDecodeCoordAppliesOffsetAndGranularity(t *testing.T) {
	pb := primitiveBlock{Granularity: 100, LatOffset: 1000, LonOffset: 2000}
	pos := decodeCoord(pb, 5, 10)
	wantLat := 1e-9 * float64(1000+100*5)
	wantLon := 1e-9 * float64(2000+100*10)
	if pos.Lat != wantLat || pos.Lon != wantLon {
		t.Fatalf("decodeCoord = %+v, want lat=%v lon=%v", pos, wantLat, wantLon)
	}
}
