package testutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/specialistvlad/nastranwrap/internal/bdf"
)

// Environment switches of the fake solver. The fake solver is the test binary
// itself, re-executed with FakeSolverEnv set.
const (
	FakeSolverEnv = "NASTRANWRAP_FAKE_SOLVER"
	// FakeModeEnv selects a failure: "fatal" writes a report with a FATAL
	// message, "exit" exits with status 3, "nothing" writes no files and
	// "badop2" writes a corrupt OP2 next to the report.
	FakeModeEnv = "NASTRANWRAP_FAKE_MODE"
)

// FakeLoad is the load the fake solver applies to every rod and grid.
const FakeLoad = 1000.0

// Main is used as TestMain by packages that run the fake solver. It runs the
// fake solver when the binary was started as one and the tests otherwise.
func Main(m *testing.M) {
	if os.Getenv(FakeSolverEnv) != "" {
		os.Exit(RunFakeSolver(os.Args[1:], os.Stderr))
	}
	goleak.VerifyTestMain(m)
}

// FakeSolverCommand returns the executable and environment that make a
// component run the fake solver in the given mode.
func FakeSolverCommand(mode string) (string, map[string]string) {
	env := map[string]string{FakeSolverEnv: "1"}
	if mode != "" {
		env[FakeModeEnv] = mode
	}
	return os.Args[0], env
}

// FakeSolverHCL returns the `command` and `env` attributes of a component
// block that runs the fake solver in mode.
func FakeSolverHCL(mode string) string {
	exe, env := FakeSolverCommand(mode)
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	fmt.Fprintf(&b, "command = %q\n", exe)
	b.WriteString("env = {\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s = %q\n", k, env[k])
	}
	b.WriteString("}\n")
	return b.String()
}

// RunFakeSolver reads the deck given on the command line and writes an F06
// report derived from its properties:
//
//   - every GRID gets T1 = id / total, where total is the sum of all PROD
//     areas and PSHELL thicknesses,
//   - every CROD/CONROD gets an axial stress of FakeLoad / A,
//   - every CQUAD4 on a PSHELL gets fiber von Mises stresses of 100 / T and
//     101 / T,
//   - every CQUAD4 on a PCOMP gets, per ply, a major strain of 1e-3 / T and
//     a minor strain of half that with opposite sign,
//   - the grid point weight mass is total in all directions.
func RunFakeSolver(args []string, stderr io.Writer) int {
	var deckPath, outDir string
	for _, a := range args {
		switch {
		case strings.HasPrefix(a, "out="):
			outDir = strings.TrimPrefix(a, "out=")
		case strings.HasPrefix(a, "-"), strings.Contains(a, "="):
		default:
			if deckPath == "" {
				deckPath = a
			}
		}
	}
	if deckPath == "" {
		fmt.Fprintln(stderr, "fake solver: no deck given")
		return 2
	}
	if outDir == "" {
		outDir = filepath.Dir(deckPath)
	}
	stem := strings.TrimSuffix(filepath.Base(deckPath), filepath.Ext(deckPath))
	f06Path := filepath.Join(outDir, stem+".f06")

	switch os.Getenv(FakeModeEnv) {
	case "exit":
		fmt.Fprintln(stderr, "fake solver: license checkout failed")
		return 3
	case "nothing":
		return 0
	case "fatal":
		report := "1    FAKE NASTRAN                                                        PAGE     1\n" +
			"0*** USER FATAL MESSAGE 2025 (IFP1D)\n" +
			"     FAKE SOLVER WAS ASKED TO FAIL\n\n"
		if err := os.WriteFile(f06Path, []byte(report), 0o644); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	case "badop2":
		if err := os.WriteFile(filepath.Join(outDir, stem+".op2"), []byte{4, 0, 0, 0, 1}, 0o644); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	deck, err := bdf.ReadFile(deckPath)
	if err != nil {
		fmt.Fprintln(stderr, "fake solver:", err)
		return 1
	}
	report, err := FakeReport(deck)
	if err != nil {
		fmt.Fprintln(stderr, "fake solver:", err)
		return 1
	}
	if err := os.WriteFile(f06Path, []byte(report), 0o644); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func number(c *bdf.Card, field string, index *int) (float64, error) {
	v, err := c.Get(field, index)
	if err != nil {
		return 0, err
	}
	f, ok := v.Float()
	if !ok {
		return 0, fmt.Errorf("%s %v: field %s is not a number", c.Name(), c.Field(1), field)
	}
	return f, nil
}

// FakeReport renders the F06 report RunFakeSolver writes for deck.
func FakeReport(deck *bdf.Deck) (string, error) {
	areas := make(map[int]float64)
	thickness := make(map[int]float64)
	plies := make(map[int][]float64)
	total := 0.0

	for _, c := range deck.FindAll("PROD") {
		id, _ := c.ID()
		a, err := number(c, "A", nil)
		if err != nil {
			return "", err
		}
		areas[id] = a
		total += a
	}
	for _, c := range deck.FindAll("PSHELL") {
		id, _ := c.ID()
		t, err := number(c, "T", nil)
		if err != nil {
			return "", err
		}
		thickness[id] = t
		total += t
	}
	for _, c := range deck.FindAll("PCOMP") {
		id, _ := c.ID()
		for i := 0; ; i++ {
			idx := i
			v, err := c.Get("T", &idx)
			if err != nil || v.IsBlank() {
				break
			}
			t, _ := v.Float()
			plies[id] = append(plies[id], t)
			total += t
		}
	}
	if total == 0 {
		total = 1
	}

	var b strings.Builder
	page := func(title string) {
		b.WriteString("1    FAKE NASTRAN                                                        PAGE     1\n")
		b.WriteString("0                                                                                   SUBCASE 1\n\n")
		b.WriteString(title + "\n\n")
	}

	page("                                             D I S P L A C E M E N T   V E C T O R")
	b.WriteString("      POINT ID.   TYPE          T1             T2             T3             R1             R2             R3\n")
	for _, c := range deck.FindAll("GRID") {
		id, _ := c.ID()
		fmt.Fprintf(&b, "%14d      G  %14.6E %14.6E %14.6E %14.6E %14.6E %14.6E\n", id, float64(id)/total, 0.0, 0.0, 0.0, 0.0, 0.0)
	}

	rods := deck.FindAll("CROD")
	conrods := deck.FindAll("CONROD")
	if len(rods)+len(conrods) > 0 {
		page("                                   S T R E S S E S   I N   R O D   E L E M E N T S      ( C R O D )")
		for _, c := range rods {
			eid, _ := c.ID()
			pid, _ := number(c, "PID", nil)
			a := areas[int(pid)]
			if a == 0 {
				return "", fmt.Errorf("CROD %d references PROD %d without area", eid, int(pid))
			}
			fmt.Fprintf(&b, "%10d  %14.6E  %14.6E\n", eid, FakeLoad/a, 0.0)
		}
		for _, c := range conrods {
			eid, _ := c.ID()
			a, err := number(c, "A", nil)
			if err != nil || a == 0 {
				return "", fmt.Errorf("CONROD %d has no area", eid)
			}
			fmt.Fprintf(&b, "%10d  %14.6E  %14.6E\n", eid, FakeLoad/a, 0.0)
		}
	}

	var shells, composites []string
	for _, c := range deck.FindAll("CQUAD4") {
		eid, _ := c.ID()
		pidF, _ := number(c, "PID", nil)
		pid := int(pidF)
		if t, ok := thickness[pid]; ok {
			shells = append(shells,
				fmt.Sprintf("0%8d  %14.6E %13.6E %13.6E %13.6E %8.4f %13.6E %13.6E %13.6E", eid, -t/2, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 100/t),
				fmt.Sprintf("           %14.6E %13.6E %13.6E %13.6E %8.4f %13.6E %13.6E %13.6E", t/2, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 101/t))
		}
		for i, t := range plies[pid] {
			major := 1e-3 / t
			composites = append(composites,
				fmt.Sprintf("%9d %5d %12.5E %12.5E %12.5E %12.5E %12.5E %8.2f %12.5E %12.5E %12.5E", eid, i+1, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, major, -major/2, 1.5*major))
		}
	}
	if len(shells) > 0 {
		page("                         S T R E S S E S   I N   Q U A D R I L A T E R A L   E L E M E N T S   ( Q U A D 4 )")
		b.WriteString(strings.Join(shells, "\n") + "\n")
	}
	if len(composites) > 0 {
		page("                   S T R A I N S   I N   L A Y E R E D   C O M P O S I T E   E L E M E N T S   ( Q U A D 4 )")
		b.WriteString(strings.Join(composites, "\n") + "\n")
	}

	page("                           O U T P U T   F R O M   G R I D   P O I N T   W E I G H T   G E N E R A T O R")
	b.WriteString("                                           MASS AXIS SYSTEM (S)     MASS              X-C.G.        Y-C.G.        Z-C.G.\n")
	for _, axis := range []string{"X", "Y", "Z"} {
		fmt.Fprintf(&b, "                                                  %s  %14.6E %14.6E %14.6E %14.6E\n", axis, total, 0.0, 0.0, 0.0)
	}
	return b.String(), nil
}
