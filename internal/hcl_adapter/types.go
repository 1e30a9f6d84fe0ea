// This file defines the HCL schema of a component manifest as decoded by
// gohcl. The structs mirror the blocks users write; translation into the
// format-agnostic config model happens in translate_model.go.

package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes all possible top-level blocks from any file.
type fileRoot struct {
	Components []*ComponentBlock `hcl:"component,block"`
	Remain     hcl.Body          `hcl:",remain"`
}

// ComponentBlock is a `component "name" { ... }` block.
type ComponentBlock struct {
	Name        string            `hcl:"name,label"`
	Description string            `hcl:"description,optional"`
	Deck        string            `hcl:"deck"`
	Command     string            `hcl:"command,optional"`
	CommandArgs []string          `hcl:"command_args,optional"`
	Env         map[string]string `hcl:"env,optional"`
	Timeout     string            `hcl:"timeout,optional"`
	Model       string            `hcl:"model,optional"`
	Workdir     *WorkdirBlock     `hcl:"workdir,block"`
	Inputs      []*InputBlock     `hcl:"input,block"`
	Outputs     []*OutputBlock    `hcl:"output,block"`
}

// WorkdirBlock overrides parts of the default retention policy.
type WorkdirBlock struct {
	Parent    *string `hcl:"parent,optional"`
	Delete    *bool   `hcl:"delete,optional"`
	KeepFirst *bool   `hcl:"keep_first,optional"`
	KeepLast  *bool   `hcl:"keep_last,optional"`
}

// InputBlock is an `input "name" { ... }` block.
type InputBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
	Low         *float64       `hcl:"low,optional"`
	High        *float64       `hcl:"high,optional"`
	Units       string         `hcl:"units,optional"`
	Description string         `hcl:"description,optional"`
	Var         string         `hcl:"var,optional"`
	Card        *string        `hcl:"card,optional"`
	ID          *int           `hcl:"id,optional"`
	Field       *string        `hcl:"field,optional"`
	FieldIndex  *int           `hcl:"field_index,optional"`
}

// OutputBlock is an `output "name" { ... }` block.
type OutputBlock struct {
	Name        string         `hcl:"name,label"`
	Default     hcl.Expression `hcl:"default,optional"`
	Units       string         `hcl:"units,optional"`
	Description string         `hcl:"description,optional"`
	Func        string         `hcl:"func,optional"`
	Args        hcl.Expression `hcl:"args,optional"`
	Table       *string        `hcl:"table,optional"`
	Subcase     *int           `hcl:"subcase,optional"`
	ID          *int           `hcl:"id,optional"`
	Column      *string        `hcl:"column,optional"`
}
