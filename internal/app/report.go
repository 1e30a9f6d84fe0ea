package app

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/nastranwrap/internal/nastran"
)

// Report is the printed summary of one evaluation.
type Report struct {
	Case      string         `json:"case" yaml:"case"`
	Component string         `json:"component" yaml:"component"`
	RunID     string         `json:"run_id" yaml:"run_id"`
	Workdir   string         `json:"workdir" yaml:"workdir"`
	Retained  bool           `json:"retained" yaml:"retained"`
	Source    string         `json:"source" yaml:"source"`
	Duration  string         `json:"duration" yaml:"duration"`
	Inputs    map[string]any `json:"inputs" yaml:"inputs"`
	Outputs   map[string]any `json:"outputs" yaml:"outputs"`

	units map[string]string
	order []string
}

func newReport(name string, comp *nastran.Component, ev *nastran.Evaluation) *Report {
	def := comp.Definition()
	r := &Report{
		Case:      name,
		Component: ev.Component,
		RunID:     ev.RunID,
		Workdir:   ev.Dir,
		Retained:  ev.Retained,
		Source:    string(ev.Source),
		Duration:  ev.Duration.String(),
		Inputs:    nastran.PlainValues(ev.Inputs),
		Outputs:   nastran.PlainValues(ev.Outputs),
		units:     make(map[string]string),
		order:     def.OutputNames(),
	}
	for name, out := range def.Outputs {
		r.units[name] = out.Units
	}
	return r
}

func writeReports(w io.Writer, format string, reports []*Report) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(w, reports)
	}
}

func writeText(w io.Writer, reports []*Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		retained := "removed"
		if r.Retained {
			retained = "kept"
		}
		fmt.Fprintf(tw, "case %s\tcomponent %s\trun %s\n", r.Case, r.Component, r.RunID)
		fmt.Fprintf(tw, "workdir %s (%s)\tsource %s\tduration %s\n", r.Workdir, retained, r.Source, r.Duration)
		fmt.Fprintln(tw, "OUTPUT\tVALUE\tUNITS")
		for _, name := range r.order {
			v := r.Outputs[name]
			if v == nil {
				v = "-"
			}
			fmt.Fprintf(tw, "%s\t%v\t%s\n", name, v, r.units[name])
		}
	}
	return tw.Flush()
}
