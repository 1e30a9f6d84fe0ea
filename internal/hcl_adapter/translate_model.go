// This file translates the decoded HCL blocks into the format-agnostic
// configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/specialistvlad/nastranwrap/internal/config"
	"github.com/specialistvlad/nastranwrap/internal/ctxlog"
)

// DefaultCommand is used when a component does not name a solver.
const DefaultCommand = "nastran"

// translateComponent converts a component block into the agnostic model.
// Relative deck and workdir paths are resolved against the manifest file.
func (l *Loader) translateComponent(ctx context.Context, file string, b *ComponentBlock) (*config.Component, error) {
	ctx, logger := ctxlog.With(ctx, "component", b.Name)
	logger.Debug("Translating HCL component to internal config model.", "file", file)

	c := &config.Component{
		Name:        b.Name,
		Description: b.Description,
		SourceFile:  file,
		Deck:        resolvePath(file, b.Deck),
		Command:     b.Command,
		CommandArgs: b.CommandArgs,
		Env:         b.Env,
		Model:       b.Model,
		Workdir:     config.DefaultWorkdirPolicy(),
		Inputs:      make(map[string]*config.InputDefinition, len(b.Inputs)),
		Outputs:     make(map[string]*config.OutputDefinition, len(b.Outputs)),
	}
	if c.Command == "" {
		c.Command = DefaultCommand
	}
	if b.Timeout != "" {
		d, err := time.ParseDuration(b.Timeout)
		if err != nil {
			return nil, fmt.Errorf("component '%s': invalid timeout: %w", b.Name, err)
		}
		c.Timeout = d
	}
	if w := b.Workdir; w != nil {
		if w.Parent != nil {
			c.Workdir.Parent = resolvePath(file, *w.Parent)
		}
		if w.Delete != nil {
			c.Workdir.Delete = *w.Delete
		}
		if w.KeepFirst != nil {
			c.Workdir.KeepFirst = *w.KeepFirst
		}
		if w.KeepLast != nil {
			c.Workdir.KeepLast = *w.KeepLast
		}
	}

	for _, in := range b.Inputs {
		if _, ok := c.Inputs[in.Name]; ok {
			return nil, fmt.Errorf("component '%s': duplicate input '%s'", b.Name, in.Name)
		}
		def, err := l.translateInput(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("component '%s', input '%s': %w", b.Name, in.Name, err)
		}
		c.Inputs[in.Name] = def
	}
	for _, out := range b.Outputs {
		if _, ok := c.Outputs[out.Name]; ok {
			return nil, fmt.Errorf("component '%s': duplicate output '%s'", b.Name, out.Name)
		}
		def, err := l.translateOutput(ctx, out)
		if err != nil {
			return nil, fmt.Errorf("component '%s', output '%s': %w", b.Name, out.Name, err)
		}
		c.Outputs[out.Name] = def
	}

	logger.Debug("Translated component.", "inputs", len(c.Inputs), "outputs", len(c.Outputs))
	return c, nil
}

// translateInput parses the declared type and converts the default to it.
func (l *Loader) translateInput(ctx context.Context, in *InputBlock) (*config.InputDefinition, error) {
	typ, err := typeExprToCtyType(ctx, in.Type)
	if err != nil {
		return nil, err
	}
	def, err := l.evalExpr(ctx, in.Default, "default")
	if err != nil {
		return nil, fmt.Errorf("invalid default value: %w", err)
	}
	if !def.IsNull() && typ != cty.DynamicPseudoType {
		if def, err = convert.Convert(def, typ); err != nil {
			return nil, fmt.Errorf("default value does not match type %s: %w", typ.FriendlyName(), err)
		}
	}
	if in.Low != nil && in.High != nil && *in.Low > *in.High {
		return nil, fmt.Errorf("low bound %g is above high bound %g", *in.Low, *in.High)
	}

	return &config.InputDefinition{
		Name:        in.Name,
		Type:        typ,
		Default:     def,
		Low:         in.Low,
		High:        in.High,
		Units:       in.Units,
		Description: in.Description,
		Var:         in.Var,
		Card:        in.Card,
		ID:          in.ID,
		Field:       in.Field,
		FieldIndex:  in.FieldIndex,
	}, nil
}

// translateOutput evaluates the default and the callback arguments. The
// strategy itself is checked later, when a component is built.
func (l *Loader) translateOutput(ctx context.Context, out *OutputBlock) (*config.OutputDefinition, error) {
	def, err := l.evalExpr(ctx, out.Default, "default")
	if err != nil {
		return nil, fmt.Errorf("invalid default value: %w", err)
	}

	args, err := l.evalExpr(ctx, out.Args, "args")
	if err != nil {
		return nil, fmt.Errorf("invalid args: %w", err)
	}
	var argMap map[string]cty.Value
	if !args.IsNull() {
		if t := args.Type(); !t.IsObjectType() && !t.IsMapType() {
			return nil, fmt.Errorf("args must be an object, got %s", t.FriendlyName())
		}
		argMap = args.AsValueMap()
	}

	return &config.OutputDefinition{
		Name:        out.Name,
		Default:     def,
		Units:       out.Units,
		Description: out.Description,
		Func:        out.Func,
		Args:        argMap,
		Table:       out.Table,
		Subcase:     out.Subcase,
		ID:          out.ID,
		Column:      out.Column,
	}, nil
}
