// Package pairing precomputes the process-wide iteration tables consumed by
// Eta pairing evaluation over the field of package f2m: one table for the
// final exponentiation and, when several cores are configured, per-worker
// square and square-root tables offset to each worker's partition of the
// main loop.
package pairing

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/ronanh/intcomp"
	"golang.org/x/sync/errgroup"

	"github.com/pellcurve/pell"
	"github.com/pellcurve/pell/ff/f2m"
	"github.com/pellcurve/pell/logger"
)

// expIters is the iteration count of the final exponentiation.
const expIters = 4 * (((f2m.Bits + 1) / 2) / 4)

// Config parameterizes Init.
type Config struct {
	// Cores is the number of partitions of the main loop. Zero selects
	// GOMAXPROCS.
	Cores int
}

// Tables holds the precomputed iteration tables. It is written once by Init
// and read-only afterwards.
type Tables struct {
	Version string
	Cores   int
	Chunk   int
	Exp     []f2m.Element
	Sqr     [][]f2m.Element
	Srt     [][]f2m.Element
}

var tables *Tables

// Init builds the iteration tables. The per-worker tables are built
// concurrently, one goroutine per partition.
func Init(cfg Config) (*Tables, error) {
	cores := cfg.Cores
	if cores == 0 {
		cores = runtime.GOMAXPROCS(0)
	}
	if cores < 1 {
		return nil, fmt.Errorf("pairing: %d cores: %w", cfg.Cores, pell.ErrNoConfig)
	}

	log := logger.Logger()
	start := time.Now()
	t := &Tables{
		Version: pell.Version.String(),
		Cores:   cores,
		Chunk:   chunkSize(cores),
		Exp:     f2m.ItrPre(expIters),
	}
	if cores > 1 {
		// Every loop iteration costs one square and one root in each
		// partition, so equal chunks already balance algorithmic work.
		// The measured ratio is only reported.
		log.Debug().Float64("mul/sqr", benchRatio()).Int("cores", cores).
			Msg("pairing partition")

		t.Sqr = make([][]f2m.Element, cores)
		t.Srt = make([][]f2m.Element, cores)
		var g errgroup.Group
		for i := 0; i < cores; i++ {
			i := i
			g.Go(func() error {
				t.Sqr[i] = f2m.ItrPre(i * t.Chunk)
				t.Srt[i] = f2m.ItrPre(-i * t.Chunk)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	tables = t

	log.Debug().Dur("took", time.Since(start)).
		Msg("pairing tables initialized")
	return t, nil
}

// Get returns the tables built by the last Init, or nil.
func Get() *Tables {
	return tables
}

// Clean exists for symmetry with Init. The tables are plain memory and are
// reclaimed by the garbage collector.
func Clean() {}

// Par returns the start of partition i of the main loop; Par(Cores) is the
// end of the loop.
func (t *Tables) Par(i int) int {
	if i == t.Cores {
		if n := (f2m.Bits - 1) / 2; n < i*t.Chunk {
			return n
		}
	}
	return i * t.Chunk
}

func chunkSize(cores int) int {
	return (f2m.Bits - 1 + 2*cores - 1) / (2 * cores)
}

// benchRatio times field multiplication against squaring.
func benchRatio() float64 {
	var a, b f2m.Element
	if _, err := a.SetRandom(); err != nil {
		return 1
	}
	if _, err := b.SetRandom(); err != nil {
		return 1
	}
	const n = 1 << 12
	start := time.Now()
	for i := 0; i < n; i++ {
		a.Mul(&a, &b)
	}
	mul := time.Since(start)
	start = time.Now()
	for i := 0; i < n; i++ {
		b.Square(&b)
	}
	sqr := time.Since(start)
	if sqr <= 0 {
		return 1
	}
	return float64(mul) / float64(sqr)
}

// tablesRaw is the serialized form of Tables. The limb slices are flattened
// and integer-compressed before the cbor encoding.
type tablesRaw struct {
	Version string     `cbor:"1,keyasint"`
	Cores   int        `cbor:"2,keyasint"`
	Chunk   int        `cbor:"3,keyasint"`
	Exp     []uint64   `cbor:"4,keyasint"`
	Sqr     [][]uint64 `cbor:"5,keyasint"`
	Srt     [][]uint64 `cbor:"6,keyasint"`
}

func packTable(t []f2m.Element) []uint64 {
	flat := make([]uint64, 0, len(t)*f2m.Limbs)
	for i := range t {
		flat = append(flat, t[i][:]...)
	}
	return intcomp.CompressUint64(flat, nil)
}

func unpackTable(c []uint64) ([]f2m.Element, error) {
	flat := intcomp.UncompressUint64(c, nil)
	if len(flat)%f2m.Limbs != 0 {
		return nil, fmt.Errorf("pairing: corrupted table: %w", pell.ErrInvalidInput)
	}
	t := make([]f2m.Element, len(flat)/f2m.Limbs)
	for i := range t {
		copy(t[i][:], flat[i*f2m.Limbs:(i+1)*f2m.Limbs])
	}
	return t, nil
}

// WriteTo serializes the tables in cbor, with the element tables compressed.
func (t *Tables) WriteTo(w io.Writer) (int64, error) {
	raw := tablesRaw{
		Version: t.Version,
		Cores:   t.Cores,
		Chunk:   t.Chunk,
		Exp:     packTable(t.Exp),
	}
	for _, s := range t.Sqr {
		raw.Sqr = append(raw.Sqr, packTable(s))
	}
	for _, s := range t.Srt {
		raw.Srt = append(raw.Srt, packTable(s))
	}

	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return 0, err
	}
	cw := &countingWriter{w: w}
	if err := em.NewEncoder(cw).Encode(&raw); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadFrom deserializes tables produced by WriteTo. A version mismatch with
// the running binary is logged, not rejected.
func (t *Tables) ReadFrom(r io.Reader) (int64, error) {
	dec := cbor.NewDecoder(r)
	var raw tablesRaw
	if err := dec.Decode(&raw); err != nil {
		return int64(dec.NumBytesRead()), err
	}
	n := int64(dec.NumBytesRead())

	objectVersion, err := semver.Parse(raw.Version)
	if err != nil {
		return n, fmt.Errorf("when parsing table version: %w", err)
	}
	if pell.Version.Compare(objectVersion) != 0 {
		log := logger.Logger()
		log.Warn().Str("binary", pell.Version.String()).
			Str("object", objectVersion.String()).
			Msg("version mismatch with serialized pairing tables")
	}

	t.Version = raw.Version
	t.Cores = raw.Cores
	t.Chunk = raw.Chunk
	if t.Exp, err = unpackTable(raw.Exp); err != nil {
		return n, err
	}
	t.Sqr = nil
	for _, c := range raw.Sqr {
		s, err := unpackTable(c)
		if err != nil {
			return n, err
		}
		t.Sqr = append(t.Sqr, s)
	}
	t.Srt = nil
	for _, c := range raw.Srt {
		s, err := unpackTable(c)
		if err != nil {
			return n, err
		}
		t.Srt = append(t.Srt, s)
	}
	return n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
