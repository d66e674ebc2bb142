package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Simplici0/plantplan/internal/capacity"
	"github.com/Simplici0/plantplan/internal/curve"
	"github.com/Simplici0/plantplan/internal/model"
)

type curveOutput struct {
	PlantID   string           `json:"plantId"`
	ProductID string           `json:"productId"`
	Capacity  float64          `json:"capacity"`
	Optimal   curve.Optimal    `json:"optimal"`
	Analysis  []curve.Analysis `json:"analysis"`
	BreakEven *curve.Analysis  `json:"breakEven,omitempty"`
}

func newCurveCmd(_ *app) *cobra.Command {
	var (
		file      string
		plantID   string
		productID string
		capUnits  float64
	)

	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Sample the cost curve of one product at one plant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scenario, err := loadScenario(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			plant, ok := scenario.Plant(plantID)
			if !ok {
				return fmt.Errorf("plant %q not found", plantID)
			}
			if productID == "" {
				ids := plant.Products.IDs()
				if len(ids) == 0 {
					return fmt.Errorf("plant %q produces nothing", plantID)
				}
				productID = ids[0]
			}
			if !plant.Products.Produces(productID) {
				return fmt.Errorf("plant %q does not produce %q", plantID, productID)
			}

			if !cmd.Flags().Changed("capacity") {
				c, ok := capacity.ForProduct(plant, productID)
				if !ok {
					return errors.New("capacity not configured; pass --capacity")
				}
				capUnits = c
			}

			var product *model.Product
			if p, ok := scenario.Product(productID); ok {
				product = &p
			}
			out := curveOutput{
				PlantID:   plant.ID,
				ProductID: productID,
				Capacity:  capUnits,
				Optimal:   curve.FindOptimal(plant, productID, product, capUnits),
				Analysis:  curve.Analyze(plant, productID, product, capUnits),
			}
			if product != nil {
				if be, found := curve.BreakEven(plant, *product, capUnits); found {
					out.BreakEven = &be
				}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&file, "file", "f", "", "scenario file (YAML or JSON, - for stdin)")
	flags.StringVar(&plantID, "plant", "", "plant ID")
	flags.StringVar(&productID, "product", "", "product ID (default: first product of the plant)")
	flags.Float64Var(&capUnits, "capacity", 0, "override the resolved capacity")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("plant")
	return cmd
}

type capacityOutput struct {
	PlantID        string                      `json:"plantId"`
	Capacity       float64                     `json:"capacity"`
	Configured     bool                        `json:"configured"`
	MaxRateProduct string                      `json:"maxRateProduct,omitempty"`
	Products       map[string]capacity.Periods `json:"products"`
}

func newCapacityCmd(_ *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "capacity",
		Short: "Resolve plant and product capacities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scenario, err := loadScenario(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			out := make([]capacityOutput, 0, len(scenario.Plants))
			for _, plant := range scenario.Plants {
				c, ok := capacity.ForPlant(plant)
				row := capacityOutput{
					PlantID:    plant.ID,
					Capacity:   c,
					Configured: ok,
					Products:   make(map[string]capacity.Periods, len(plant.Products)),
				}
				if plant.CapacityMode == model.CapacityRate {
					_, row.MaxRateProduct = capacity.MaxRateCapacity(plant)
				}
				for _, id := range plant.Products.IDs() {
					row.Products[id] = capacity.ProductCapacities(plant, id)
				}
				out = append(out, row)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "scenario file (YAML or JSON, - for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
