package results

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

type f06Table int

const (
	tableNone f06Table = iota
	tableDisplacement
	tableRodStress
	tablePlateStress
	tableCompositeStrain
	tableGridPointWeight
	tableFatal
)

// Titles are letter-spaced in the report, so they are matched with all blanks
// removed.
var f06Titles = []struct {
	title string
	table f06Table
}{
	{"DISPLACEMENTVECTOR", tableDisplacement},
	{"STRESSESINRODELEMENTS", tableRodStress},
	{"STRESSESINQUADRILATERALELEMENTS", tablePlateStress},
	{"STRAINSINLAYEREDCOMPOSITEELEMENTS", tableCompositeStrain},
	{"OUTPUTFROMGRIDPOINTWEIGHTGENERATOR", tableGridPointWeight},
}

var subcasePattern = regexp.MustCompile(`SUBCASE\s+(\d+)\s*$`)

// ReadF06 parses the F06 report at path. FATAL messages in the report are
// returned as a *FatalError.
func ReadF06(path string) (*Results, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseF06(f, path)
}

// ParseF06 parses an F06 report from r. path is only used for messages.
func ParseF06(r io.Reader, path string) (*Results, error) {
	p := &f06Parser{res: New(SourceF06, path), subcase: 1}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if err := p.line(strings.TrimRight(sc.Text(), "\r")); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(p.fatal) > 0 {
		return nil, &FatalError{Path: path, Messages: p.fatal}
	}
	return p.res, nil
}

type f06Parser struct {
	res     *Results
	subcase int
	table   f06Table
	// massAxes is set once the "MASS AXIS SYSTEM (S)" header is seen.
	massAxes bool
	lastEID  int
	fatal    []string
}

func (p *f06Parser) line(line string) error {
	if strings.HasPrefix(line, "1") {
		// Page eject: tables restate their title on the next page.
		p.table = tableNone
		return nil
	}

	upper := strings.ToUpper(line)
	if strings.Contains(upper, "FATAL MESSAGE") {
		p.fatal = append(p.fatal, strings.TrimSpace(line))
		p.table = tableFatal
		return nil
	}
	if p.table == tableFatal {
		if strings.TrimSpace(line) == "" {
			p.table = tableNone
			return nil
		}
		last := len(p.fatal) - 1
		p.fatal[last] += " " + strings.TrimSpace(line)
		return nil
	}

	if m := subcasePattern.FindStringSubmatch(upper); m != nil {
		n, _ := strconv.Atoi(m[1])
		p.subcase = n
		return nil
	}

	squeezed := strings.ReplaceAll(upper, " ", "")
	for _, t := range f06Titles {
		if strings.Contains(squeezed, t.title) {
			p.table = t.table
			p.massAxes = false
			return nil
		}
	}

	fields := dataFields(line)
	if len(fields) == 0 {
		return nil
	}

	switch p.table {
	case tableDisplacement:
		return p.displacement(fields)
	case tableRodStress:
		return p.rodStress(fields)
	case tablePlateStress:
		return p.plateStress(fields)
	case tableCompositeStrain:
		return p.compositeStrain(fields)
	case tableGridPointWeight:
		return p.gridPointWeight(upper, fields)
	}
	return nil
}

// dataFields splits a report line, dropping the "0" carriage-control
// character that prefixes some rows.
func dataFields(line string) []string {
	if len(line) > 1 && line[0] == '0' && line[1] == ' ' {
		line = line[1:]
	}
	return strings.Fields(line)
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func floats(fields []string) ([]float64, bool) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// displacement reads "POINT-ID TYPE T1 T2 T3 R1 R2 R3" rows.
func (p *f06Parser) displacement(f []string) error {
	if len(f) != 8 || !isInt(f[0]) {
		return nil
	}
	grid, _ := strconv.Atoi(f[0])
	v, ok := floats(f[2:])
	if !ok {
		return fmt.Errorf("malformed displacement row for grid %d", grid)
	}
	d := p.res.displacements(p.subcase)
	d.Translations[grid] = [3]float64{v[0], v[1], v[2]}
	d.Rotations[grid] = [3]float64{v[3], v[4], v[5]}
	return nil
}

// rodStress reads rows holding up to two elements, each printed as
// "EID AXIAL [MARGIN] TORSION [MARGIN]" with blank margins omitted.
func (p *f06Parser) rodStress(f []string) error {
	if !isInt(f[0]) {
		return nil
	}
	s := p.res.rodStress(p.subcase)
	for i := 0; i < len(f); {
		eid, err := strconv.Atoi(f[i])
		if err != nil {
			return fmt.Errorf("expected element id, got %q", f[i])
		}
		j := i + 1
		for j < len(f) && !isInt(f[j]) {
			j++
		}
		v, ok := floats(f[i+1 : j])
		if !ok {
			return fmt.Errorf("malformed rod stress row for element %d", eid)
		}
		switch len(v) {
		case 2:
			s.Axial[eid], s.Torsion[eid] = v[0], v[1]
		case 3:
			s.Axial[eid], s.MarginAxial[eid], s.Torsion[eid] = v[0], v[1], v[2]
		case 4:
			s.Axial[eid], s.MarginAxial[eid], s.Torsion[eid], s.MarginTorsion[eid] = v[0], v[1], v[2], v[3]
		default:
			return fmt.Errorf("rod stress row for element %d has %d values", eid, len(v))
		}
		i = j
	}
	return nil
}

// plateStress reads "EID FIBER SX SY TXY ANGLE MAJOR MINOR VONMISES" rows;
// the second fiber of an element omits the element id.
func (p *f06Parser) plateStress(f []string) error {
	var vm string
	switch {
	case len(f) == 9 && isInt(f[0]):
		p.lastEID, _ = strconv.Atoi(f[0])
		vm = f[8]
	case len(f) == 8 && p.lastEID != 0:
		vm = f[7]
	default:
		return nil
	}
	v, err := strconv.ParseFloat(vm, 64)
	if err != nil {
		return nil
	}
	s := p.res.plateStress(p.subcase)
	s.VonMises[p.lastEID] = append(s.VonMises[p.lastEID], v)
	return nil
}

// compositeStrain reads "EID PLY E1 E2 E12 E1Z E2Z ANGLE MAJOR MINOR MAXSHEAR" rows.
func (p *f06Parser) compositeStrain(f []string) error {
	if len(f) != 11 || !isInt(f[0]) || !isInt(f[1]) {
		return nil
	}
	eid, _ := strconv.Atoi(f[0])
	v, ok := floats(f[8:10])
	if !ok {
		return fmt.Errorf("malformed composite strain row for element %d", eid)
	}
	s := p.res.compositeStrain(p.subcase)
	s.Major[eid] = append(s.Major[eid], v[0])
	s.Minor[eid] = append(s.Minor[eid], v[1])
	return nil
}

// gridPointWeight reads the mass column of the X, Y and Z rows that follow
// the MASS AXIS SYSTEM (S) header.
func (p *f06Parser) gridPointWeight(upper string, f []string) error {
	if strings.Contains(upper, "MASS AXIS SYSTEM") {
		p.massAxes = true
		return nil
	}
	if !p.massAxes || len(f) < 2 {
		return nil
	}
	axis := strings.Index("XYZ", f[0])
	if len(f[0]) != 1 || axis < 0 {
		return nil
	}
	m, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return fmt.Errorf("malformed mass for axis %s", f[0])
	}
	if p.res.GridPointWeight == nil {
		p.res.GridPointWeight = &GridPointWeight{}
	}
	p.res.GridPointWeight.Mass[axis] = m
	return nil
}
