// Package report renders optimization results as spreadsheets.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/plantplan/internal/model"
)

const (
	summarySheet       = "Summary"
	plantsSheet        = "Plants"
	productsSheet      = "Products"
	linearizationSheet = "Linearization"
)

// Exporter writes one result into a fresh workbook.
type Exporter struct {
	wb *excelize.File
}

// NewExporter returns an exporter over an empty workbook.
func NewExporter() *Exporter {
	return &Exporter{wb: excelize.NewFile()}
}

// Workbook returns the underlying workbook.
func (e *Exporter) Workbook() *excelize.File {
	return e.wb
}

// Export fills the workbook with the summary, plant, product and
// linearization sheets.
func (e *Exporter) Export(title string, res model.OptimizationResult) error {
	if err := e.wb.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	for _, name := range []string{plantsSheet, productsSheet, linearizationSheet} {
		if _, err := e.wb.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := e.writeSummary(title, res); err != nil {
		return err
	}
	if err := e.writePlants(res); err != nil {
		return err
	}
	if err := e.writeProducts(res); err != nil {
		return err
	}
	return e.writeLinearization(res)
}

// Write encodes the workbook as xlsx.
func (e *Exporter) Write(w io.Writer) error {
	if _, err := e.wb.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// WriteResult exports res and writes it to w in one step.
func WriteResult(w io.Writer, title string, res model.OptimizationResult) error {
	e := NewExporter()
	defer e.Workbook().Close()
	if err := e.Export(title, res); err != nil {
		return err
	}
	return e.Write(w)
}

func (e *Exporter) writeSummary(title string, res model.OptimizationResult) error {
	rows := [][]any{
		{"Title", title},
		{"Status", string(res.Status)},
		{"Reason", res.Reason},
		{"Total units", round2(res.TotalUnits)},
		{"Total capacity", round2(res.TotalCapacity)},
		{"Total revenue", round2(res.TotalRevenue)},
		{"Total cost", round2(res.TotalCost)},
		{"Total profit", round2(res.TotalProfit)},
	}
	return e.writeRows(summarySheet, rows)
}

func (e *Exporter) writePlants(res model.OptimizationResult) error {
	rows := [][]any{{"Plant", "Product", "Units", "Capacity", "Utilization %", "Revenue", "Cost", "Profit"}}
	for _, p := range res.PlantAllocations {
		capacity := any(round2(p.Capacity))
		if !p.CapacityConfigured {
			capacity = "not configured"
		}
		rows = append(rows, []any{
			p.PlantID, "", round2(p.Units), capacity, round2(p.CapacityUtilization),
			round2(p.Revenue), round2(p.Cost), round2(p.Profit),
		})
		for _, id := range sortedKeys(p.Products) {
			a := p.Products[id]
			rows = append(rows, []any{
				p.PlantID, id, round2(a.Units), "", "",
				round2(a.Revenue), round2(a.Cost), round2(a.Profit),
			})
		}
	}
	return e.writeRows(plantsSheet, rows)
}

func (e *Exporter) writeProducts(res model.OptimizationResult) error {
	rows := [][]any{{"Product", "Units", "Revenue", "Cost", "Profit", "Demand met"}}
	for _, id := range sortedKeys(res.ProductTotals) {
		t := res.ProductTotals[id]
		met := "no"
		if t.DemandMet {
			met = "yes"
		}
		rows = append(rows, []any{id, round2(t.Units), round2(t.Revenue), round2(t.Cost), round2(t.Profit), met})
	}
	return e.writeRows(productsSheet, rows)
}

func (e *Exporter) writeLinearization(res model.OptimizationResult) error {
	rows := [][]any{{"Plant", "Product", "Slope per unit", "Intercept"}}
	for _, l := range res.Linearization {
		rows = append(rows, []any{l.PlantID, l.ProductID, round4(l.SlopePerUnit), round2(l.Intercept)})
	}
	return e.writeRows(linearizationSheet, rows)
}

func (e *Exporter) writeRows(sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := e.wb.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
