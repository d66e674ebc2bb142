package seed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/plantplan/internal/model"
	"github.com/Simplici0/plantplan/internal/optimizer"
	"github.com/Simplici0/plantplan/internal/store"
)

//go:embed demo.yaml
var demoYAML []byte

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Skipped int
}

// DemoYAML returns the demo scenario file.
func DemoYAML() []byte {
	out := make([]byte, len(demoYAML))
	copy(out, demoYAML)
	return out
}

// DemoScenario decodes the demo scenario.
func DemoScenario() (model.Scenario, error) {
	var s model.Scenario
	if err := yaml.Unmarshal(demoYAML, &s); err != nil {
		return model.Scenario{}, fmt.Errorf("decode demo scenario: %w", err)
	}
	return s, nil
}

// Run stores an optimized demo run unless one with the same title exists.
func Run(ctx context.Context, runs *store.Runs, opt *optimizer.Optimizer) (Stats, error) {
	scenario, err := DemoScenario()
	if err != nil {
		return Stats{}, err
	}

	existing, err := runs.List(ctx, scenario.Title, 0)
	if err != nil {
		return Stats{}, fmt.Errorf("check demo run existence: %w", err)
	}
	for _, r := range existing {
		if r.Title == scenario.Title {
			return Stats{Skipped: 1}, nil
		}
	}

	start := time.Now()
	res := opt.Optimize(ctx, scenario.Plants, scenario.Products)
	if _, err := runs.Save(ctx, store.NewRun{
		Title:        scenario.Title,
		PlantCount:   len(scenario.Plants),
		ProductCount: len(scenario.Products),
		Duration:     time.Since(start),
		Result:       res,
	}); err != nil {
		return Stats{}, fmt.Errorf("insert demo run: %w", err)
	}
	return Stats{Inserts: 1}, nil
}
