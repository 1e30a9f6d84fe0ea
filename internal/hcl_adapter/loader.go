package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/dynblock"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/specialistvlad/nastranwrap/internal/config"
	"github.com/specialistvlad/nastranwrap/internal/ctxlog"
)

// Loader is the HCL implementation of the config.Loader interface.
type Loader struct {
	evalCtx *hcl.EvalContext
}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{evalCtx: newEvalContext()}
}

// newEvalContext exposes a small set of cty functions to manifests, enough
// to generate inputs with `dynamic` blocks.
func newEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"range":      stdlib.RangeFunc,
			"format":     stdlib.FormatFunc,
			"concat":     stdlib.ConcatFunc,
			"max":        stdlib.MaxFunc,
			"min":        stdlib.MinFunc,
			"upper":      stdlib.UpperFunc,
			"lower":      stdlib.LowerFunc,
			"join":       stdlib.JoinFunc,
			"replace":    stdlib.ReplaceFunc,
			"setproduct": stdlib.SetProductFunc,
		},
	}
}

// Load parses every .hcl file found under paths and merges their component
// blocks into one model. Component names must be unique across files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := config.NewModel()

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		body := dynblock.Expand(hclFile.Body, l.evalCtx)

		var root fileRoot
		diags = gohcl.DecodeBody(body, l.evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.Components {
			comp, err := l.translateComponent(ctx, file, block)
			if err != nil {
				return nil, err
			}
			if prev, ok := model.Components[comp.Name]; ok {
				return nil, fmt.Errorf("component '%s' in %s is already defined in %s", comp.Name, file, prev.SourceFile)
			}
			model.Components[comp.Name] = comp
		}
	}

	logger.Debug("HCL loading complete.", "components", len(model.Components))
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a sorted list of all
// .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // A configured path that does not exist is skipped.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	sort.Strings(allFiles)
	return allFiles, nil
}
