package scango

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"math"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/scango/blobstore"
)

const (
	// snapshotMagic identifies scango snapshot data (ASCII "SCGO").
	snapshotMagic = 0x5343474F
	// snapshotVersion is the current snapshot format version (v1.0.0).
	snapshotVersion = 0x00010000
)

// SnapshotCompression selects the block compression of a snapshot.
type SnapshotCompression uint8

const (
	// CompressionNone stores sections uncompressed.
	CompressionNone SnapshotCompression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 SnapshotCompression = 1
	// CompressionZSTD uses ZSTD block compression (better ratio). Default.
	CompressionZSTD SnapshotCompression = 2
)

// snapshotHeader is the fixed-size header at the start of every snapshot.
type snapshotHeader struct {
	Magic       uint32
	Version     uint32
	Compression uint8
	Padding     [3]byte
	NumVertices uint64
	NumRecords  uint64
}

type snapshotOptions struct {
	compression SnapshotCompression
}

// SnapshotOption configures snapshot encoding.
type SnapshotOption func(*snapshotOptions)

// WithSnapshotCompression selects the compression algorithm for snapshot
// sections. The default is CompressionZSTD.
func WithSnapshotCompression(c SnapshotCompression) SnapshotOption {
	return func(o *snapshotOptions) {
		o.compression = c
	}
}

// crc32cTable is the Castagnoli polynomial table, hardware-accelerated on
// x86 and ARM.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// SaveSnapshot writes the index to w in the scango snapshot format: a fixed
// header, the neighbor order as compressed sections, and a trailing CRC32C
// checksum. The core order is rebuilt on load rather than stored.
func (ix *Index) SaveSnapshot(w io.Writer, optFns ...SnapshotOption) error {
	start := time.Now()
	err := ix.saveSnapshot(w, optFns)
	ix.opts.metricsCollector.RecordSnapshot(time.Since(start), err)
	return err
}

func (ix *Index) saveSnapshot(w io.Writer, optFns []SnapshotOption) error {
	o := snapshotOptions{compression: CompressionZSTD}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	cw := &checksumWriter{w: w, hash: crc32.New(crc32cTable)}
	header := snapshotHeader{
		Magic:       snapshotMagic,
		Version:     snapshotVersion,
		Compression: uint8(o.compression),
		NumVertices: uint64(ix.order.numVertices()),
		NumRecords:  uint64(len(ix.order.neighbors)),
	}
	if err := binary.Write(cw, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	for _, section := range ix.order.sections() {
		if err := writeSection(cw, section, o.compression); err != nil {
			return err
		}
	}

	// Footer: checksum of header and sections, written outside the
	// checksummed stream.
	return binary.Write(w, binary.LittleEndian, cw.hash.Sum32())
}

// LoadSnapshot reads an index previously written by SaveSnapshot.
//
// Query-affecting options (logger, metrics, parallelism) apply to the loaded
// index; a measure option is ignored since similarity is already computed.
func LoadSnapshot(r io.Reader, optFns ...Option) (*Index, error) {
	o := applyOptions(optFns)

	start := time.Now()
	idx, err := loadSnapshot(r, o)
	o.metricsCollector.RecordSnapshot(time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func loadSnapshot(r io.Reader, o options) (*Index, error) {
	cr := &checksumReader{r: r, hash: crc32.New(crc32cTable)}

	var header snapshotHeader
	if err := binary.Read(cr, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read snapshot header: %w", err)
	}
	if header.Magic != snapshotMagic {
		return nil, ErrInvalidMagic
	}
	if header.Version != snapshotVersion {
		return nil, ErrInvalidVersion
	}
	compression := SnapshotCompression(header.Compression)
	if compression > CompressionZSTD {
		return nil, ErrInvalidCompression
	}
	// Bound the dimensions before sizing any allocation from them: vertex
	// IDs are 32-bit, and the section sizes derived below must fit in int.
	if header.NumVertices > math.MaxUint32 {
		return nil, fmt.Errorf("scango: snapshot vertex count %d out of range", header.NumVertices)
	}
	if header.NumRecords > math.MaxInt64/16 {
		return nil, fmt.Errorf("scango: snapshot record count %d out of range", header.NumRecords)
	}

	order, err := readNeighborOrder(cr, &header, compression)
	if err != nil {
		return nil, err
	}

	want := cr.hash.Sum32()
	var got uint32
	if err := binary.Read(r, binary.LittleEndian, &got); err != nil {
		return nil, fmt.Errorf("read snapshot checksum: %w", err)
	}
	if got != want {
		return nil, ErrChecksumMismatch
	}

	return &Index{
		order: order,
		cores: buildCoreOrder(order),
		opts:  o,
	}, nil
}

// SaveTo encodes the index and stores it in a blob store under name.
func (ix *Index) SaveTo(ctx context.Context, store blobstore.Store, name string, optFns ...SnapshotOption) error {
	var buf bytes.Buffer
	err := ix.SaveSnapshot(&buf, optFns...)
	if err == nil {
		err = store.Put(ctx, name, &buf)
	}
	ix.opts.logger.LogSnapshot(ctx, "save", name, err)
	return err
}

// LoadFrom loads an index snapshot from a blob store.
func LoadFrom(ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*Index, error) {
	o := applyOptions(optFns)

	rc, err := store.Get(ctx, name)
	if err != nil {
		o.logger.LogSnapshot(ctx, "load", name, err)
		return nil, err
	}
	defer rc.Close()

	idx, err := LoadSnapshot(rc, optFns...)
	o.logger.LogSnapshot(ctx, "load", name, err)
	return idx, err
}

// sections returns the neighbor order as flat little-endian byte sections:
// offsets, neighbor IDs, similarity values.
func (no *neighborOrder) sections() [][]byte {
	offsets := make([]byte, 8*len(no.offsets))
	for i, v := range no.offsets {
		binary.LittleEndian.PutUint64(offsets[8*i:], uint64(v))
	}

	ids := make([]byte, 4*len(no.neighbors))
	sims := make([]byte, 4*len(no.neighbors))
	for i := range no.neighbors {
		binary.LittleEndian.PutUint32(ids[4*i:], no.neighbors[i].ID)
		binary.LittleEndian.PutUint32(sims[4*i:], math.Float32bits(no.neighbors[i].Similarity))
	}
	return [][]byte{offsets, ids, sims}
}

func readNeighborOrder(r io.Reader, header *snapshotHeader, compression SnapshotCompression) (*neighborOrder, error) {
	n := int(header.NumVertices)
	records := int(header.NumRecords)

	sections := make([][]byte, 3)
	for i, size := range []int{8 * (n + 1), 4 * records, 4 * records} {
		data, err := readSection(r, size, compression)
		if err != nil {
			return nil, err
		}
		sections[i] = data
	}

	offsets := make([]int64, n+1)
	for i := range offsets {
		offsets[i] = int64(binary.LittleEndian.Uint64(sections[0][8*i:]))
	}
	if offsets[0] != 0 || offsets[n] != int64(records) {
		return nil, fmt.Errorf("scango: snapshot offsets inconsistent with record count")
	}
	for i := 0; i < n; i++ {
		if offsets[i] > offsets[i+1] {
			return nil, fmt.Errorf("scango: snapshot offsets not monotonic at vertex %d", i)
		}
	}

	neighbors := make([]RankedNeighbor, records)
	for i := range neighbors {
		id := binary.LittleEndian.Uint32(sections[1][4*i:])
		if uint64(id) >= header.NumVertices {
			return nil, fmt.Errorf("scango: snapshot neighbor ID %d out of range", id)
		}
		neighbors[i] = RankedNeighbor{
			ID:         id,
			Similarity: math.Float32frombits(binary.LittleEndian.Uint32(sections[2][4*i:])),
		}
	}
	return &neighborOrder{offsets: offsets, neighbors: neighbors}, nil
}

// writeSection writes one compressed section:
// [uncompressedSize uint32][compressedSize uint32][payload].
// compressedSize == 0 means the payload is stored uncompressed, which also
// covers incompressible data.
func writeSection(w io.Writer, data []byte, compression SnapshotCompression) error {
	compressed, err := compressSection(data, compression)
	if err != nil {
		return err
	}

	var head [8]byte
	binary.LittleEndian.PutUint32(head[0:], uint32(len(data)))
	payload := data
	if compressed != nil && len(compressed) < len(data) {
		binary.LittleEndian.PutUint32(head[4:], uint32(len(compressed)))
		payload = compressed
	}
	if _, err := w.Write(head[:]); err != nil {
		return fmt.Errorf("write section header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write section payload: %w", err)
	}
	return nil
}

func compressSection(data []byte, compression SnapshotCompression) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return nil, nil
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		var c lz4.Compressor
		size, err := c.CompressBlock(data, dst)
		if err != nil || size == 0 {
			return nil, err
		}
		return dst[:size], nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, ErrInvalidCompression
	}
}

func readSection(r io.Reader, uncompressedSize int, compression SnapshotCompression) ([]byte, error) {
	var head [8]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("read section header: %w", err)
	}
	storedSize := int(binary.LittleEndian.Uint32(head[0:]))
	compressedSize := int(binary.LittleEndian.Uint32(head[4:]))
	if storedSize != uncompressedSize {
		return nil, fmt.Errorf("scango: snapshot section size %d, want %d", storedSize, uncompressedSize)
	}
	// A compressed payload is only ever stored when it beats the raw form
	// (compressedSize 0 means raw), so anything larger cannot come from
	// SaveSnapshot. Rejecting it here also caps the allocation before the
	// checksum is verified.
	if compressedSize != 0 && compressedSize >= storedSize {
		return nil, fmt.Errorf("scango: snapshot section compressed size %d not below uncompressed size %d", compressedSize, storedSize)
	}

	if compressedSize == 0 {
		data := make([]byte, storedSize)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("read section payload: %w", err)
		}
		return data, nil
	}

	compressed := make([]byte, compressedSize)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("read section payload: %w", err)
	}

	switch compression {
	case CompressionLZ4:
		data := make([]byte, storedSize)
		size, err := lz4.UncompressBlock(compressed, data)
		if err != nil {
			return nil, fmt.Errorf("decompress section: %w", err)
		}
		return data[:size], nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		data, err := dec.DecodeAll(compressed, make([]byte, 0, storedSize))
		if err != nil {
			return nil, fmt.Errorf("decompress section: %w", err)
		}
		return data, nil
	default:
		return nil, ErrInvalidCompression
	}
}

// checksumWriter wraps an io.Writer and computes a running CRC32C checksum.
type checksumWriter struct {
	w    io.Writer
	hash hash.Hash32
}

func (cw *checksumWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.hash.Write(p[:n])
	return n, err
}

// checksumReader wraps an io.Reader and computes a running CRC32C checksum.
type checksumReader struct {
	r    io.Reader
	hash hash.Hash32
}

func (cr *checksumReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.hash.Write(p[:n])
	return n, err
}
