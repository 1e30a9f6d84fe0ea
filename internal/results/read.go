package results

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// F06Names lists the report file names tried in order. Solvers started with
// out=<dir> write the report as <deck>.out; others write <deck>.f06.
var F06Names = []string{"%s.out", "%s.f06"}

// Read loads the results of the run of deck stem in dir. The OP2 file is
// tried first; when it is missing or unusable the F06 report is read
// instead, and FATAL messages found there are returned as a *FatalError.
func Read(dir, stem string) (*Results, error) {
	op2Path := filepath.Join(dir, stem+".op2")
	res, op2Err := ReadOP2(op2Path)
	if op2Err == nil {
		return res, nil
	}
	var fatal *FatalError
	if !errors.As(op2Err, &fatal) && !errors.Is(op2Err, fs.ErrNotExist) {
		return nil, op2Err
	}

	for _, pattern := range F06Names {
		f06Path := filepath.Join(dir, fmt.Sprintf(pattern, stem))
		if _, err := os.Stat(f06Path); err != nil {
			continue
		}
		res, err := ReadF06(f06Path)
		if err != nil {
			return nil, err
		}
		if res.Empty() {
			if fatal != nil {
				return nil, fatal
			}
			return nil, fmt.Errorf("%s: no result tables found", f06Path)
		}
		return res, nil
	}

	if fatal != nil {
		return nil, fatal
	}
	return nil, fmt.Errorf("no result files for %q in %s", stem, dir)
}
