package results

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// OP2 files are Fortran unformatted sequential files: every record is framed
// by its byte length written before and after the payload. Records of a
// single word are markers. An 8-byte printable record starts a data block
// (table); inside a table every 146-word record is an ident record
// describing the data record that follows it. A long data record is split
// into several blocks, each preceded by a positive marker; a zero or
// negative marker ends the record.
const (
	identWords = 146
	maxRecord  = 1 << 28
)

// Ident words, zero-based.
const (
	identApproach    = 0
	identTableCode   = 1
	identElementType = 2
	identSubcase     = 3
	identNumWide     = 9
)

const (
	tableCodeDisplacement    = 1
	tableCodeElementResults  = 5
	tableCodeGridPointWeight = 13
)

// Element type codes used by the OES/OSTR tables.
const (
	elemCROD      = 1
	elemCTUBE     = 3
	elemCONROD    = 10
	elemCQUAD4    = 33
	elemQUAD4Comp = 95
)

// ReadOP2 parses the OP2 file at path. A file that holds no supported result
// table, or that ends in the middle of a record, is reported as a
// *FatalError so that callers can fall back to the F06 report.
func ReadOP2(path string) (*Results, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseOP2(f, path)
}

// ParseOP2 parses OP2 content from r. path is only used for messages.
func ParseOP2(r io.Reader, path string) (*Results, error) {
	br := bufio.NewReader(r)
	order, err := detectByteOrder(br)
	if err != nil {
		return nil, &FatalError{Path: path, Messages: []string{"op2 file is empty or unreadable: " + err.Error()}}
	}

	p := &op2Parser{res: New(SourceOP2, path), order: order}
	for {
		rec, err := p.record(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &FatalError{Path: path, Messages: []string{err.Error()}}
		}
		if err := p.handle(rec); err != nil {
			return nil, fmt.Errorf("%s: table %s: %w", path, p.table, err)
		}
	}
	if err := p.flush(); err != nil {
		return nil, fmt.Errorf("%s: table %s: %w", path, p.table, err)
	}

	if p.res.Empty() {
		return nil, &FatalError{Path: path, Messages: []string{"op2 file holds no result tables"}}
	}
	return p.res, nil
}

// detectByteOrder peeks at the first record length, which is always a short
// marker or label record, so only the file's own byte order yields a small
// positive number.
func detectByteOrder(br *bufio.Reader) (binary.ByteOrder, error) {
	head, err := br.Peek(4)
	if err != nil {
		return nil, err
	}
	const maxLeading = 1 << 16
	le := int32(binary.LittleEndian.Uint32(head))
	if le > 0 && le < maxLeading {
		return binary.LittleEndian, nil
	}
	be := int32(binary.BigEndian.Uint32(head))
	if be > 0 && be < maxLeading {
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("invalid leading record length")
}

type op2Parser struct {
	res   *Results
	order binary.ByteOrder
	table string
	ident []int32
	// pending collects the blocks of the current data record.
	pending   []byte
	wantBlock bool
}

func (p *op2Parser) record(br *bufio.Reader) ([]byte, error) {
	var n int32
	if err := binary.Read(br, p.order, &n); err != nil {
		return nil, err
	}
	if n < 0 || n > maxRecord {
		return nil, fmt.Errorf("invalid record length %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, fmt.Errorf("truncated record of %d bytes", n)
	}
	var tail int32
	if err := binary.Read(br, p.order, &tail); err != nil {
		return nil, fmt.Errorf("truncated record of %d bytes", n)
	}
	if tail != n {
		return nil, fmt.Errorf("record framing mismatch: %d != %d", n, tail)
	}
	return buf, nil
}

func (p *op2Parser) handle(rec []byte) error {
	if len(rec) == 4 {
		if p.ident == nil || len(p.pending) == 0 || p.wantBlock {
			return nil
		}
		if int32(p.order.Uint32(rec)) > 0 {
			p.wantBlock = true
			return nil
		}
		return p.flush()
	}
	if p.ident != nil && p.wantBlock {
		p.pending = append(p.pending, rec...)
		p.wantBlock = false
		return nil
	}

	if err := p.flush(); err != nil {
		return err
	}
	switch {
	case len(rec) == 8 && printable(rec):
		p.table = strings.TrimSpace(string(rec))
	case len(rec) == identWords*4:
		p.ident = p.words(rec)
		p.wantBlock = true
	}
	return nil
}

// flush decodes the collected data record of the current ident.
func (p *op2Parser) flush() error {
	ident, rec := p.ident, p.pending
	p.ident, p.pending, p.wantBlock = nil, nil, false
	if ident == nil || len(rec) == 0 {
		return nil
	}
	return p.decode(ident, rec)
}

func (p *op2Parser) words(rec []byte) []int32 {
	out := make([]int32, len(rec)/4)
	for i := range out {
		out[i] = int32(p.order.Uint32(rec[4*i:]))
	}
	return out
}

func (p *op2Parser) real(rec []byte, word int) float64 {
	return float64(math.Float32frombits(p.order.Uint32(rec[4*word:])))
}

func (p *op2Parser) int(rec []byte, word int) int {
	return int(int32(p.order.Uint32(rec[4*word:])))
}

func (p *op2Parser) decode(ident []int32, rec []byte) error {
	tableCode := int(ident[identTableCode])
	subcase := int(ident[identSubcase])
	numWide := int(ident[identNumWide])

	switch {
	case strings.HasPrefix(p.table, "OUG") && tableCode == tableCodeDisplacement:
		return p.displacements(subcase, numWide, rec)
	case (strings.HasPrefix(p.table, "OES") || strings.HasPrefix(p.table, "OSTR")) && tableCode == tableCodeElementResults:
		return p.elements(int(ident[identElementType]), subcase, numWide, rec)
	case strings.HasPrefix(p.table, "OGPWG") && tableCode == tableCodeGridPointWeight:
		return p.gridPointWeight(rec)
	}
	return nil
}

func (p *op2Parser) rows(numWide, want int, rec []byte) (int, error) {
	if numWide != want {
		return 0, fmt.Errorf("unsupported num_wide %d, expected %d", numWide, want)
	}
	size := 4 * numWide
	if len(rec)%size != 0 {
		return 0, fmt.Errorf("data record of %d bytes is not a multiple of %d", len(rec), size)
	}
	return len(rec) / size, nil
}

func (p *op2Parser) displacements(subcase, numWide int, rec []byte) error {
	n, err := p.rows(numWide, 8, rec)
	if err != nil {
		return err
	}
	d := p.res.displacements(subcase)
	for i := 0; i < n; i++ {
		row := rec[i*32:]
		grid := p.int(row, 0) / 10
		d.Translations[grid] = [3]float64{p.real(row, 2), p.real(row, 3), p.real(row, 4)}
		d.Rotations[grid] = [3]float64{p.real(row, 5), p.real(row, 6), p.real(row, 7)}
	}
	return nil
}

func (p *op2Parser) elements(elementType, subcase, numWide int, rec []byte) error {
	switch elementType {
	case elemCROD, elemCTUBE, elemCONROD:
		if strings.HasPrefix(p.table, "OSTR") {
			return nil
		}
		n, err := p.rows(numWide, 5, rec)
		if err != nil {
			return err
		}
		s := p.res.rodStress(subcase)
		for i := 0; i < n; i++ {
			row := rec[i*20:]
			eid := p.int(row, 0) / 10
			s.Axial[eid] = p.real(row, 1)
			s.MarginAxial[eid] = p.real(row, 2)
			s.Torsion[eid] = p.real(row, 3)
			s.MarginTorsion[eid] = p.real(row, 4)
		}
	case elemCQUAD4:
		if strings.HasPrefix(p.table, "OSTR") {
			return nil
		}
		n, err := p.rows(numWide, 17, rec)
		if err != nil {
			return err
		}
		s := p.res.plateStress(subcase)
		for i := 0; i < n; i++ {
			row := rec[i*68:]
			eid := p.int(row, 0) / 10
			s.VonMises[eid] = append(s.VonMises[eid], p.real(row, 8), p.real(row, 16))
		}
	case elemQUAD4Comp:
		if !strings.HasPrefix(p.table, "OSTR") {
			return nil
		}
		n, err := p.rows(numWide, 11, rec)
		if err != nil {
			return err
		}
		s := p.res.compositeStrain(subcase)
		for i := 0; i < n; i++ {
			row := rec[i*44:]
			eid := p.int(row, 0) / 10
			s.Major[eid] = append(s.Major[eid], p.real(row, 8))
			s.Minor[eid] = append(s.Minor[eid], p.real(row, 9))
		}
	}
	return nil
}

// gridPointWeight reads the mass vector that follows the reference point,
// the 6x6 rigid body mass matrix and the 3x3 transformation.
func (p *op2Parser) gridPointWeight(rec []byte) error {
	const massWord = 1 + 36 + 9
	if len(rec) < 4*(massWord+3) {
		return fmt.Errorf("grid point weight record of %d bytes is too short", len(rec))
	}
	gpw := &GridPointWeight{}
	for i := 0; i < 3; i++ {
		gpw.Mass[i] = p.real(rec, massWord+i)
	}
	p.res.GridPointWeight = gpw
	return nil
}

func printable(b []byte) bool {
	for _, c := range b {
		if c < ' ' || c > '~' {
			return false
		}
	}
	return strings.TrimSpace(string(b)) != ""
}
