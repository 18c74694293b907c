package eval

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// EvalNPly is the number of ply-indexed weight sets: one per possible
// empty-square count from 0 to 60 inclusive (spec.md §4.2 "a ply-keyed
// weight table").
const EvalNPly = 61

// weightMagic1/weightMagic2 identify an Edax evaluation weight file
// (spec.md §6's "magic header").
const (
	weightMagic1 uint32 = 0x45444158 // "EDAX"
	weightMagic2 uint32 = 0x4556414c // "EVAL"
)

// kindOffset[k] is the starting index, within one ply's flat weight
// row, of Kind k's 3^kindSize(k)-entry weight sub-array. Because every
// feature instance of a given Kind reads its squares in the same
// corner-relative canonical order (features.go), all instances of that
// Kind safely share the one sub-array — this sharing is the
// "symmetry-packing" spec.md §4.2 describes, implemented here as reuse
// rather than a separate index-remapping table per instance.
var kindOffset [nKind]int

// EvalNWeight is the width of one ply's weight row: the sum of
// 3^kindSize(k) over every distinct pattern Kind.
var EvalNWeight int

func init() {
	offset := 0
	for k := Kind(0); k < nKind; k++ {
		kindOffset[k] = offset
		offset += pow3(kindSize[k])
	}
	EvalNWeight = offset
}

func pow3(n int) int {
	p := 1
	for i := 0; i < n; i++ {
		p *= 3
	}
	return p
}

// Weights holds one loaded evaluation weight file: EvalNPly rows, each
// EvalNWeight signed 16-bit entries wide.
type Weights struct {
	Version, Release, Build int32
	Date                    float64
	Rows                    [EvalNPly][]int16
}

// Load reads an evaluation weight file in the little-endian layout
// spec.md §6 and §9 describe: two magic uint32s, three int32 version
// fields, a float64 date, then EvalNPly*EvalNWeight little-endian int16
// weights.
func Load(path string) (*Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("eval: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a weight file from r (Load's I/O-free core, used by
// tests with an in-memory reader).
func Read(r io.Reader) (*Weights, error) {
	var header struct {
		Magic1, Magic2          uint32
		Version, Release, Build int32
		Date                    float64
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("eval: read header: %w", err)
	}
	if header.Magic1 != weightMagic1 || header.Magic2 != weightMagic2 {
		return nil, fmt.Errorf("eval: bad magic %08x/%08x", header.Magic1, header.Magic2)
	}

	w := &Weights{
		Version: header.Version,
		Release: header.Release,
		Build:   header.Build,
		Date:    header.Date,
	}
	for ply := 0; ply < EvalNPly; ply++ {
		row := make([]int16, EvalNWeight)
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, fmt.Errorf("eval: read ply %d: %w", ply, err)
		}
		w.Rows[ply] = row
	}
	return w, nil
}

// Write serializes w in the same format Read expects, used to persist
// a freshly trained or default weight set.
func (w *Weights) Write(wr io.Writer) error {
	header := struct {
		Magic1, Magic2          uint32
		Version, Release, Build int32
		Date                    float64
	}{weightMagic1, weightMagic2, w.Version, w.Release, w.Build, w.Date}
	if err := binary.Write(wr, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("eval: write header: %w", err)
	}
	for ply := 0; ply < EvalNPly; ply++ {
		row := w.Rows[ply]
		if len(row) != EvalNWeight {
			return fmt.Errorf("eval: ply %d has %d weights, want %d", ply, len(row), EvalNWeight)
		}
		if err := binary.Write(wr, binary.LittleEndian, row); err != nil {
			return fmt.Errorf("eval: write ply %d: %w", ply, err)
		}
	}
	return nil
}

// NewZeroWeights builds an all-zero weight set, used as a default when
// no trained file is available and by tests that only care about
// incremental-update bookkeeping rather than absolute scores.
func NewZeroWeights() *Weights {
	w := &Weights{}
	for ply := 0; ply < EvalNPly; ply++ {
		w.Rows[ply] = make([]int16, EvalNWeight)
	}
	return w
}
