package osm

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/ulikunitz/xz/lzma"

	"github.com/go-osm/routelib/geo"
)

var recognisedRequiredFeatures = map[string]bool{
	"OsmSchema-V0.6": true,
	"DenseNodes":     true,
}

// pbfSource decodes a framed OSM PBF stream one blob at a time, buffering
// only the features of the single PrimitiveBlock currently being drained —
// bounded memory regardless of total file size, per §5.
type pbfSource struct {
	r          *bufio.Reader
	logger     *slog.Logger
	sawHeader  bool
	pending    []Feature
	pendingPos int
	done       bool
}

func newPBFSource(r *bufio.Reader, logger *slog.Logger) *pbfSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &pbfSource{r: r, logger: logger}
}

func (s *pbfSource) Next() (Feature, error) {
	for {
		if s.pendingPos < len(s.pending) {
			f := s.pending[s.pendingPos]
			s.pendingPos++
			return f, nil
		}
		if s.done {
			return nil, io.EOF
		}
		if err := s.advance(); err != nil {
			return nil, err
		}
	}
}

// advance reads and processes exactly one blob, leaving any features it
// produced in s.pending for Next to drain.
func (s *pbfSource) advance() error {
	header, payload, err := readBlob(s.r)
	if err == io.EOF {
		s.done = true
		return nil
	}
	if err != nil {
		return err
	}

	switch header.Type {
	case "OSMHeader":
		if s.sawHeader {
			return fmt.Errorf("%w: duplicate OSMHeader blob", ErrMalformedFile)
		}
		s.sawHeader = true
		hb, err := decodeHeaderBlock(payload)
		if err != nil {
			return err
		}
		for _, f := range hb.RequiredFeatures {
			if !recognisedRequiredFeatures[f] {
				return fmt.Errorf("%w: required_features %q", ErrUnsupportedFeature, f)
			}
		}
	case "OSMData":
		if !s.sawHeader {
			return fmt.Errorf("%w: OSMData blob before OSMHeader", ErrMalformedFile)
		}
		feats, err := decodePrimitiveBlockFeatures(payload)
		if err != nil {
			return err
		}
		s.pending = feats
		s.pendingPos = 0
	default:
		s.logger.Warn("osm: skipping unrecognised pbf blob type", "type", header.Type)
	}
	return nil
}

// readBlob reads one [4-byte length][BlobHeader][Blob] frame and returns
// the decompressed Blob payload.
func readBlob(r *bufio.Reader) (blobHeader, []byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return blobHeader{}, nil, io.EOF
		}
		return blobHeader{}, nil, fmt.Errorf("%w: blob header length: %v", ErrMalformedFile, err)
	}
	headerLen := binary.BigEndian.Uint32(lenBuf[:])
	headerBuf := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return blobHeader{}, nil, fmt.Errorf("%w: truncated blob header: %v", ErrMalformedFile, err)
	}
	header, err := decodeBlobHeader(headerBuf)
	if err != nil {
		return blobHeader{}, nil, err
	}

	blobBuf := make([]byte, header.DataSize)
	if _, err := io.ReadFull(r, blobBuf); err != nil {
		return blobHeader{}, nil, fmt.Errorf("%w: truncated blob body: %v", ErrMalformedFile, err)
	}
	b, err := decodeBlob(blobBuf)
	if err != nil {
		return blobHeader{}, nil, err
	}

	payload, err := decompressBlob(b)
	if err != nil {
		return blobHeader{}, nil, err
	}
	return header, payload, nil
}

func decompressBlob(b blob) ([]byte, error) {
	switch {
	case b.HasRaw:
		return b.Raw, nil
	case b.ZlibData != nil:
		zr, err := zlib.NewReader(bytes.NewReader(b.ZlibData))
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", ErrMalformedFile, err)
		}
		defer zr.Close()
		out, err := readExactly(zr, int(b.RawSize))
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", ErrMalformedFile, err)
		}
		return out, nil
	case b.LzmaData != nil:
		lr, err := lzma.NewReader(bytes.NewReader(b.LzmaData))
		if err != nil {
			return nil, fmt.Errorf("%w: lzma: %v", ErrMalformedFile, err)
		}
		out, err := readExactly(lr, int(b.RawSize))
		if err != nil {
			return nil, fmt.Errorf("%w: lzma: %v", ErrMalformedFile, err)
		}
		return out, nil
	case b.Lz4Data != nil:
		return nil, fmt.Errorf("%w: lz4 blob compression", ErrUnsupportedFeature)
	case b.ZstdData != nil:
		return nil, fmt.Errorf("%w: zstd blob compression", ErrUnsupportedFeature)
	default:
		return nil, fmt.Errorf("%w: blob carries no payload", ErrMalformedFile)
	}
}

// readExactly reads until EOF (compressed streams don't necessarily report
// their length up front) and, when rawSize > 0, verifies the decompressed
// length matches it, per §4.5's "total uncompressed size MUST equal
// raw_size when the latter is given".
func readExactly(r io.Reader, rawSize int) ([]byte, error) {
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if rawSize > 0 && len(out) != rawSize {
		return nil, fmt.Errorf("decompressed size %d != raw_size %d", len(out), rawSize)
	}
	return out, nil
}

// decodePrimitiveBlockFeatures decodes one PrimitiveBlock payload into the
// flat list of features it contains, in the order: nodes, dense nodes,
// ways, relations — within each PrimitiveGroup, in stream order.
func decodePrimitiveBlockFeatures(data []byte) ([]Feature, error) {
	pb, err := decodePrimitiveBlockHeader(data)
	if err != nil {
		return nil, err
	}

	var out []Feature
	for _, rawGroup := range pb.Groups {
		grp, err := decodePrimitiveGroup(rawGroup)
		if err != nil {
			return nil, err
		}

		for _, raw := range grp.Nodes {
			n, err := decodePBFNode(raw)
			if err != nil {
				return nil, err
			}
			out = append(out, Node{
				ID:   n.ID,
				Pos:  decodeCoord(pb, n.Lat, n.Lon),
				Tags: decodeTags(n.Keys, n.Vals, pb.StringTable),
			})
		}

		if grp.HasDense {
			nodes, err := decodeDenseGroup(pb, grp.Dense)
			if err != nil {
				return nil, err
			}
			out = append(out, nodes...)
		}

		for _, raw := range grp.Ways {
			w, err := decodePBFWay(raw)
			if err != nil {
				return nil, err
			}
			out = append(out, Way{
				ID:      w.ID,
				NodeIDs: w.Refs,
				Tags:    decodeTags(w.Keys, w.Vals, pb.StringTable),
			})
		}

		for _, raw := range grp.Relations {
			rel, err := decodePBFRelation(raw)
			if err != nil {
				return nil, err
			}
			members := make([]Member, len(rel.MemIDs))
			for i, id := range rel.MemIDs {
				role := ""
				if i < len(rel.RolesSid) {
					role = stringAt(pb.StringTable, rel.RolesSid[i])
				}
				typ := MemberNode
				if i < len(rel.Types) {
					typ = memberTypeFromPBF(rel.Types[i])
				}
				members[i] = Member{Type: typ, Ref: id, Role: role}
			}
			out = append(out, Relation{
				ID:      rel.ID,
				Members: members,
				Tags:    decodeTags(rel.Keys, rel.Vals, pb.StringTable),
			})
		}
	}
	return out, nil
}

func decodeDenseGroup(pb primitiveBlock, raw []byte) ([]Feature, error) {
	dn, err := decodeDenseNodes(raw)
	if err != nil {
		return nil, err
	}
	if len(dn.ID) != len(dn.Lat) || len(dn.ID) != len(dn.Lon) {
		return nil, fmt.Errorf("%w: dense nodes id/lat/lon length mismatch", ErrMalformedFeature)
	}

	tagsPerNode := splitDenseTags(dn.KeysVals, len(dn.ID), pb.StringTable)

	out := make([]Feature, len(dn.ID))
	for i := range dn.ID {
		out[i] = Node{
			ID:   dn.ID[i],
			Pos:  decodeCoord(pb, dn.Lat[i], dn.Lon[i]),
			Tags: tagsPerNode[i],
		}
	}
	return out, nil
}

// splitDenseTags walks the flat (key_sid, val_sid, ..., 0, ...) stream and
// returns one Tags map per node, in order. An empty keys_vals stream means
// no dense node carries any tags, per §4.5.
func splitDenseTags(keysVals []int32, nodeCount int, stringtable []string) []Tags {
	out := make([]Tags, nodeCount)
	if len(keysVals) == 0 {
		return out
	}
	i := 0
	for node := 0; node < nodeCount && i < len(keysVals); node++ {
		var tags Tags
		for i < len(keysVals) && keysVals[i] != 0 {
			k := stringAt(stringtable, keysVals[i])
			v := stringAt(stringtable, keysVals[i+1])
			i += 2
			if tags == nil {
				tags = make(Tags)
			}
			tags[k] = v
		}
		i++ // skip the terminating 0
		out[node] = tags
	}
	return out
}

func decodeCoord(pb primitiveBlock, rawLat, rawLon int64) geo.Position {
	return geo.Position{
		Lat: 1e-9 * float64(pb.LatOffset+int64(pb.Granularity)*rawLat),
		Lon: 1e-9 * float64(pb.LonOffset+int64(pb.Granularity)*rawLon),
	}
}

func decodeTags(keys, vals []uint32, stringtable []string) Tags {
	if len(keys) == 0 {
		return nil
	}
	tags := make(Tags, len(keys))
	for i := range keys {
		if i >= len(vals) {
			break
		}
		tags[stringAt(stringtable, int32(keys[i]))] = stringAt(stringtable, int32(vals[i]))
	}
	return tags
}

func stringAt(table []string, idx int32) string {
	if idx < 0 || int(idx) >= len(table) {
		return ""
	}
	return table[idx]
}

func memberTypeFromPBF(t int32) MemberType {
	switch t {
	case 1:
		return MemberWay
	case 2:
		return MemberRelation
	default:
		return MemberNode
	}
}
