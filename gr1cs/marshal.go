package gr1cs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sort"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/sync/errgroup"

	"github.com/snarkcore/relations"
	"github.com/snarkcore/relations/internal/ioutils"
)

// The encoding splits the system into four blocks so that the integer-heavy
// parts (combination arena, predicate slots) go through intcomp while the
// structured part (predicate definitions, counts) goes through CBOR. Blocks
// are prepared and read back in parallel.
//
// An encoded system holds the relation only: assignments, value functions
// and traces are not part of it.

const marshalHeaderLen = 4 * 8

type sectionHeader struct {
	// length in bytes of each section
	lcsLen    uint64
	slotsLen  uint64
	coeffsLen uint64
	bodyLen   uint64
}

func (h *sectionHeader) toBytes() []byte {
	buf := make([]byte, 0, marshalHeaderLen+h.lcsLen+h.slotsLen+h.coeffsLen+h.bodyLen)

	buf = binary.LittleEndian.AppendUint64(buf, h.lcsLen)
	buf = binary.LittleEndian.AppendUint64(buf, h.slotsLen)
	buf = binary.LittleEndian.AppendUint64(buf, h.coeffsLen)
	buf = binary.LittleEndian.AppendUint64(buf, h.bodyLen)

	return buf
}

func (h *sectionHeader) fromBytes(buf []byte) {
	h.lcsLen = binary.LittleEndian.Uint64(buf[:8])
	h.slotsLen = binary.LittleEndian.Uint64(buf[8:16])
	h.coeffsLen = binary.LittleEndian.Uint64(buf[16:24])
	h.bodyLen = binary.LittleEndian.Uint64(buf[24:32])
}

// wireHeader is the CBOR-encoded part of a serialized system.
type wireHeader struct {
	Version     string
	ScalarField string
	Goal        uint8
	NbInstance  uint64
	NbWitness   uint64
	Predicates  []wirePredicate
}

type wirePredicate struct {
	Label         string
	Arity         int
	Kind          uint8
	Monomials     []wireMonomial
	Table         [][]byte // lookup rows, cell by cell in row-major order
	NbConstraints uint64
}

type wireMonomial struct {
	Coeff   []byte
	Factors []Exponent
}

// ToBytes serializes the system. It requires a finalized system built with
// matrices, so that the combination arena holds no symbolic references.
func (cs *ConstraintSystem[E]) ToBytes() ([]byte, error) {
	if cs == nil {
		return nil, ErrMissingConstraintSystem
	}
	if !cs.finalized {
		return nil, errors.New("serialization requires a finalized system")
	}
	if !cs.constructMatrices {
		return nil, errors.New("serialization requires a system built with matrices")
	}

	var lcs, slots, coeffs []byte
	var g errgroup.Group
	g.Go(func() error {
		var err error
		lcs, err = cs.lcsToBytes()
		return err
	})
	g.Go(func() error {
		var err error
		slots, err = cs.slotsToBytes()
		return err
	})
	g.Go(func() error {
		coeffs = cs.coeffsToBytes()
		return nil
	})
	body, err := cs.bodyToBytes()
	if err != nil {
		return nil, err
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	h := sectionHeader{
		lcsLen:    uint64(len(lcs)),
		slotsLen:  uint64(len(slots)),
		coeffsLen: uint64(len(coeffs)),
		bodyLen:   uint64(len(body)),
	}

	buf := h.toBytes()
	buf = append(buf, lcs...)
	buf = append(buf, slots...)
	buf = append(buf, coeffs...)
	buf = append(buf, body...)

	return buf, nil
}

// FromBytes replaces the contents of cs with the system encoded in data and
// returns the number of bytes read. The receiver must have been created over
// the field the encoded system was built on. Decoded systems come back
// finalized in setup form, with no assignments attached.
func (cs *ConstraintSystem[E]) FromBytes(data []byte) (int, error) {
	if cs == nil {
		return 0, ErrMissingConstraintSystem
	}
	if len(data) < marshalHeaderLen {
		return 0, errors.New("invalid data length")
	}

	h := new(sectionHeader)
	h.fromBytes(data)

	total := marshalHeaderLen + int(h.lcsLen) + int(h.slotsLen) + int(h.coeffsLen) + int(h.bodyLen)
	if len(data) < total {
		return 0, errors.New("invalid data length")
	}

	// the slot section needs the predicate definitions, so the CBOR body
	// is decoded before the binary sections
	var wh wireHeader
	dm, err := cbor.DecOptions{
		MaxArrayElements: 2147483647,
		MaxMapPairs:      2147483647,
	}.DecMode()
	if err != nil {
		return 0, err
	}
	bodyOffset := marshalHeaderLen + int(h.lcsLen) + int(h.slotsLen) + int(h.coeffsLen)
	if err := dm.Unmarshal(data[bodyOffset:total], &wh); err != nil {
		return 0, err
	}
	if err := cs.checkWireHeader(&wh); err != nil {
		return 0, err
	}

	var g errgroup.Group
	g.Go(func() error {
		return cs.lcsFromBytes(data[marshalHeaderLen : marshalHeaderLen+h.lcsLen])
	})
	g.Go(func() error {
		return cs.slotsFromBytes(data[marshalHeaderLen+h.lcsLen:marshalHeaderLen+h.lcsLen+h.slotsLen], &wh)
	})
	g.Go(func() error {
		return cs.coeffsFromBytes(data[marshalHeaderLen+h.lcsLen+h.slotsLen : marshalHeaderLen+h.lcsLen+h.slotsLen+h.coeffsLen])
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if err := cs.checkSections(); err != nil {
		return 0, err
	}

	cs.mode = Setup
	cs.constructMatrices = true
	cs.goal = OptimizationGoal(wh.Goal)
	cs.nbInstance = int(wh.NbInstance)
	cs.nbWitness = int(wh.NbWitness)
	cs.instanceAssignment = nil
	cs.witnessAssignment = nil
	cs.lcAssignment = nil
	cs.outliner = nil
	cs.traces = nil
	cs.finalized = true

	return total, nil
}

// PeekModulus decodes only the header of a serialized system and returns the
// modulus of the field it was built on, letting a caller pick the matching
// instantiation before FromBytes.
func PeekModulus(data []byte) (*big.Int, error) {
	if len(data) < marshalHeaderLen {
		return nil, errors.New("invalid data length")
	}
	h := new(sectionHeader)
	h.fromBytes(data)
	total := marshalHeaderLen + int(h.lcsLen) + int(h.slotsLen) + int(h.coeffsLen) + int(h.bodyLen)
	if len(data) < total {
		return nil, errors.New("invalid data length")
	}

	var wh wireHeader
	dm, err := cbor.DecOptions{
		MaxArrayElements: 2147483647,
		MaxMapPairs:      2147483647,
	}.DecMode()
	if err != nil {
		return nil, err
	}
	if err := dm.Unmarshal(data[total-int(h.bodyLen):total], &wh); err != nil {
		return nil, err
	}
	q, ok := new(big.Int).SetString(wh.ScalarField, 16)
	if !ok {
		return nil, fmt.Errorf("when parsing serialized modulus: %s", wh.ScalarField)
	}
	return q, nil
}

// WriteTo encodes the system into w, in the format of ToBytes.
func (cs *ConstraintSystem[E]) WriteTo(w io.Writer) (int64, error) {
	data, err := cs.ToBytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadFrom decodes a system from r into cs, in the format of FromBytes.
func (cs *ConstraintSystem[E]) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return int64(len(data)), err
	}
	n, err := cs.FromBytes(data)
	return int64(n), err
}

func (cs *ConstraintSystem[E]) bodyToBytes() ([]byte, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}

	h := wireHeader{
		Version:     relations.Version.String(),
		ScalarField: cs.field.Modulus().Text(16),
		Goal:        uint8(cs.goal),
		NbInstance:  uint64(cs.nbInstance),
		NbWitness:   uint64(cs.nbWitness),
		Predicates:  make([]wirePredicate, 0, len(cs.labels)),
	}
	for _, label := range cs.labels {
		ps := cs.predicates[label]
		wp := wirePredicate{
			Label:         label,
			Arity:         ps.predicate.arity,
			Kind:          uint8(ps.predicate.kind),
			NbConstraints: uint64(ps.nbConstraints()),
		}
		switch ps.predicate.kind {
		case PredicateKindPolynomial:
			wp.Monomials = make([]wireMonomial, len(ps.predicate.poly))
			for i, m := range ps.predicate.poly {
				wp.Monomials[i] = wireMonomial{Coeff: m.Coeff.Bytes(), Factors: m.Factors}
			}
		case PredicateKindLookup:
			wp.Table = make([][]byte, 0, len(ps.predicate.table)*ps.predicate.arity)
			for _, row := range ps.predicate.table {
				for _, e := range row {
					wp.Table = append(wp.Table, e.Bytes())
				}
			}
		}
		h.Predicates = append(h.Predicates, wp)
	}

	buf := new(bytes.Buffer)
	if err := enc.NewEncoder(buf).Encode(&h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (cs *ConstraintSystem[E]) checkWireHeader(wh *wireHeader) error {
	objectVersion, err := semver.Parse(wh.Version)
	if err != nil {
		return fmt.Errorf("when parsing serialized version: %w", err)
	}
	if relations.Version.Compare(objectVersion) != 0 {
		cs.log.Warn().
			Str("binary", relations.Version.String()).
			Str("object", objectVersion.String()).
			Msg("version mismatch with serialized system, there are no guarantees on compatibility")
	}

	scalarField, ok := new(big.Int).SetString(wh.ScalarField, 16)
	if !ok {
		return fmt.Errorf("when parsing serialized modulus: %s", wh.ScalarField)
	}
	if scalarField.Cmp(cs.field.Modulus()) != 0 {
		return fmt.Errorf("serialized modulus %s does not match the system field", wh.ScalarField)
	}
	if wh.Goal > uint8(GoalWeight) {
		return fmt.Errorf("unknown optimization goal %d", wh.Goal)
	}
	if wh.NbInstance < 1 {
		return errors.New("instance column count must include the constant one")
	}
	return nil
}

func (cs *ConstraintSystem[E]) lcsToBytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(4 * len(cs.lcs.coeffs))

	// offsets and packed variables compress well, both are mostly
	// increasing sequences
	if err := ioutils.CompressAndWriteUints64(&buf, cs.lcs.offsets); err != nil {
		return nil, err
	}
	if _, err := ioutils.CompressAndWriteUints32(&buf, cs.lcs.coeffs, nil); err != nil {
		return nil, err
	}
	vars := make([]uint64, len(cs.lcs.vars))
	for i, v := range cs.lcs.vars {
		vars[i] = uint64(v)
	}
	if err := ioutils.CompressAndWriteUints64(&buf, vars); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (cs *ConstraintSystem[E]) lcsFromBytes(in []byte) error {
	n, offsets, err := ioutils.ReadAndDecompressUints64(in)
	if err != nil {
		return err
	}
	in = in[n:]
	_, n, coeffs, err := ioutils.ReadAndDecompressUints32(in, nil)
	if err != nil {
		return err
	}
	in = in[n:]
	_, packed, err := ioutils.ReadAndDecompressUints64(in)
	if err != nil {
		return err
	}

	if len(offsets) == 0 || offsets[0] != 0 || offsets[len(offsets)-1] != uint64(len(coeffs)) || len(coeffs) != len(packed) {
		return errors.New("invalid combination arena")
	}
	vars := make([]Variable, len(packed))
	for i, v := range packed {
		vars[i] = Variable(v)
	}
	cs.lcs = lcTable{coeffs: coeffs, vars: vars, offsets: offsets}
	return nil
}

func (cs *ConstraintSystem[E]) slotsToBytes() ([]byte, error) {
	var (
		buf   bytes.Buffer
		buf32 []uint32
		err   error
	)
	for _, label := range cs.labels {
		ps := cs.predicates[label]
		for _, slot := range ps.slots {
			indices := make([]uint32, len(slot))
			for i, idx := range slot {
				indices[i] = uint32(idx)
			}
			buf32, err = ioutils.CompressAndWriteUints32(&buf, indices, buf32)
			if err != nil {
				return nil, err
			}
		}
	}
	return buf.Bytes(), nil
}

func (cs *ConstraintSystem[E]) slotsFromBytes(in []byte, wh *wireHeader) error {
	var (
		buf32 []uint32
		out   []uint32
		n     int
	)
	predicates := make(map[string]*predicateSystem[E], len(wh.Predicates))
	labels := make([]string, 0, len(wh.Predicates))
	for i := range wh.Predicates {
		wp := &wh.Predicates[i]
		if _, ok := predicates[wp.Label]; ok {
			return fmt.Errorf("duplicate predicate %q", wp.Label)
		}
		p, err := predicateFromWire[E](wp)
		if err != nil {
			return err
		}
		ps := newPredicateSystem(p)
		for j := 0; j < p.arity; j++ {
			buf32, n, out, err = ioutils.ReadAndDecompressUints32(in, buf32)
			if err != nil {
				return err
			}
			in = in[n:]
			if uint64(len(out)) != wp.NbConstraints {
				return fmt.Errorf("invalid slot section for %q", wp.Label)
			}
			slot := make([]LcIndex, len(out))
			for k, idx := range out {
				slot[k] = LcIndex(idx)
			}
			ps.slots[j] = slot
		}
		predicates[wp.Label] = ps
		labels = append(labels, wp.Label)
	}
	sort.Strings(labels)
	cs.predicates = predicates
	cs.labels = labels
	return nil
}

func (cs *ConstraintSystem[E]) coeffsToBytes() []byte {
	// reserved entries are derivable from the field, only the tail is
	// written
	n := cs.coeffs.Len() - int(NbReservedCoeffIds)
	var zero E
	elemLen := len(zero.Bytes())

	buf := make([]byte, 0, 8+n*elemLen)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(n))
	for i := int(NbReservedCoeffIds); i < cs.coeffs.Len(); i++ {
		buf = append(buf, cs.coeffs.Coeff(uint32(i)).Bytes()...)
	}
	return buf
}

func (cs *ConstraintSystem[E]) coeffsFromBytes(in []byte) error {
	if len(in) < 8 {
		return errors.New("invalid coefficient section")
	}
	n := binary.LittleEndian.Uint64(in[:8])
	in = in[8:]

	var zero E
	elemLen := uint64(len(zero.Bytes()))
	if uint64(len(in)) != n*elemLen {
		return errors.New("invalid coefficient section")
	}

	table := NewCoeffTable(cs.field, int(n))
	for i := uint64(0); i < n; i++ {
		e := NewElement[E](in[i*elemLen : (i+1)*elemLen])
		// AddCoeff must reproduce the original token for the tokens in
		// the arena to stay valid
		if cid := table.AddCoeff(cs.field, e); cid != uint32(i)+NbReservedCoeffIds {
			return errors.New("invalid coefficient section")
		}
	}
	cs.coeffs = table
	return nil
}

// checkSections validates cross-references between the decoded blocks.
func (cs *ConstraintSystem[E]) checkSections() error {
	nbCoeffs := uint32(cs.coeffs.Len())
	for _, cid := range cs.lcs.coeffs {
		if cid >= nbCoeffs {
			return errors.New("coefficient token out of range")
		}
	}
	nbLcs := cs.lcs.len()
	for _, label := range cs.labels {
		for _, slot := range cs.predicates[label].slots {
			for _, idx := range slot {
				if int(idx) >= nbLcs {
					return fmt.Errorf("combination index out of range in %q", label)
				}
			}
		}
	}
	return nil
}

func predicateFromWire[E Element](wp *wirePredicate) (Predicate[E], error) {
	var zero E
	elemLen := len(zero.Bytes())

	switch PredicateKind(wp.Kind) {
	case PredicateKindPolynomial:
		monomials := make([]Monomial[E], len(wp.Monomials))
		for i, m := range wp.Monomials {
			if len(m.Coeff) != elemLen {
				return Predicate[E]{}, fmt.Errorf("invalid monomial coefficient in %q", wp.Label)
			}
			monomials[i] = Monomial[E]{Coeff: NewElement[E](m.Coeff), Factors: m.Factors}
		}
		return NewPolynomialPredicate(wp.Arity, monomials...)
	case PredicateKindLookup:
		if wp.Arity < 1 || len(wp.Table)%wp.Arity != 0 {
			return Predicate[E]{}, fmt.Errorf("invalid lookup table for %q", wp.Label)
		}
		rows := make([][]E, len(wp.Table)/wp.Arity)
		for i := range rows {
			row := make([]E, wp.Arity)
			for j := range row {
				cell := wp.Table[i*wp.Arity+j]
				if len(cell) != elemLen {
					return Predicate[E]{}, fmt.Errorf("invalid lookup table for %q", wp.Label)
				}
				row[j] = NewElement[E](cell)
			}
			rows[i] = row
		}
		return NewLookupPredicate(wp.Arity, rows)
	default:
		return Predicate[E]{}, fmt.Errorf("unknown predicate kind %d", wp.Kind)
	}
}
