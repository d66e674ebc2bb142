package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/plantplan/internal/model"
	"github.com/Simplici0/plantplan/internal/seed"
)

// loadScenario reads a YAML or JSON scenario. "-" reads YAML from stdin.
func loadScenario(path string, stdin io.Reader) (model.Scenario, error) {
	if path == "" {
		return model.Scenario{}, errors.New("a scenario file is required (-f)")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return model.Scenario{}, fmt.Errorf("read scenario: %w", err)
	}

	var s model.Scenario
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &s)
	} else {
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return model.Scenario{}, fmt.Errorf("decode scenario %s: %w", path, err)
	}
	return s, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Print a demo scenario file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(seed.DemoYAML())
			return err
		},
	}
}
