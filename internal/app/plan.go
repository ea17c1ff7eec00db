package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.trai.ch/kiln/internal/adapters/cc"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/linkplan"
	"go.trai.ch/zerr"
)

// Plan output formats.
const (
	PlanText = "text"
	PlanJSON = "json"
)

// UnitPlan is what building one unit would run and link.
type UnitPlan struct {
	Unit       string                 `json:"unit"`
	Kind       domain.UnitKind        `json:"kind"`
	Commands   [][]string             `json:"commands"`
	Directives []domain.LinkDirective `json:"directives"`
}

// PlanOptions configuration for the Plan method.
type PlanOptions struct {
	ConfigPath string
	Format     string
	OutDir     string
	Units      []string
}

// Plan configures every selected unit and prints the commands and link
// directives a build would use, without running anything.
func (a *App) Plan(ctx context.Context, opts PlanOptions) ([]UnitPlan, error) {
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = PlanText
	}
	if format != PlanText && format != PlanJSON {
		err := zerr.With(zerr.Wrap(domain.ErrUnknownFormat, "unsupported plan format"), "format", opts.Format)
		return nil, zerr.With(err, "supported", PlanText+", "+PlanJSON)
	}

	env, specs, err := a.load(ctx, opts.ConfigPath, opts.OutDir, opts.Units)
	if err != nil {
		return nil, err
	}
	env = env.WithDefaults()
	planner := linkplan.New(env)

	plans := make([]UnitPlan, 0, len(specs))
	for _, spec := range specs {
		cfg, err := a.configurator.Configure(spec, env)
		if err != nil {
			return nil, err
		}
		artifact := domain.Artifact{Library: spec.Name(), Dir: domain.UnitDir(env.OutDir, spec.Name())}
		plans = append(plans, UnitPlan{
			Unit:       spec.Name(),
			Kind:       spec.Kind(),
			Commands:   cc.Commands(cfg, spec.Sources()),
			Directives: append(planner.Plan(spec), artifact.Directive()),
		})
	}

	var buf bytes.Buffer
	if format == PlanJSON {
		data, err := json.MarshalIndent(plans, "", "  ")
		if err != nil {
			return nil, zerr.Wrap(err, "failed to encode plan")
		}
		buf.Write(data)
		buf.WriteByte('\n')
	} else {
		writePlanText(&buf, plans)
	}
	if _, err := a.stdout.Write(buf.Bytes()); err != nil {
		return nil, zerr.Wrap(err, "failed to write plan")
	}
	return plans, nil
}

func writePlanText(buf *bytes.Buffer, plans []UnitPlan) {
	for i, p := range plans {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(buf, "%s (%s)\n", p.Unit, p.Kind)
		for _, cmd := range p.Commands {
			fmt.Fprintf(buf, "  $ %s\n", strings.Join(cmd, " "))
		}
		for _, d := range p.Directives {
			if d.SearchPath != "" {
				fmt.Fprintf(buf, "  link %s=%s from %s\n", d.Kind, d.Library, d.SearchPath)
				continue
			}
			fmt.Fprintf(buf, "  link %s=%s\n", d.Kind, d.Library)
		}
	}
}
