// Package excel reads enforcement system specifications from xlsx
// workbooks with four sheets: Distinctions, Interfaces, MarginalCosts and
// PairwiseCosts. Each sheet carries a header row; rows below it are data.
package excel

import (
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"goadmit/domain/system"
	"goadmit/ports"
)

// Sheet names expected in a system workbook.
const (
	SheetDistinctions  = "Distinctions"
	SheetInterfaces    = "Interfaces"
	SheetMarginalCosts = "MarginalCosts"
	SheetPairwiseCosts = "PairwiseCosts"
)

// Reader loads system specs from xlsx workbooks.
type Reader struct{}

// NewReader creates a workbook spec reader.
func NewReader() ports.SystemReader {
	return &Reader{}
}

// ReadSpec reads a spec from an xlsx workbook. Sheet layout:
//
//	Distinctions:  id
//	Interfaces:    id | capacity
//	MarginalCosts: interface | distinction | value
//	PairwiseCosts: interface | d1 | d2 | value
func (r *Reader) ReadSpec(path string) (system.Spec, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return system.Spec{}, fmt.Errorf("workbook not found: %s", path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return system.Spec{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var spec system.Spec

	rows, err := dataRows(f, SheetDistinctions, 1)
	if err != nil {
		return system.Spec{}, err
	}
	for _, row := range rows {
		spec.Distinctions = append(spec.Distinctions, system.DistinctionID(row[0]))
	}

	rows, err = dataRows(f, SheetInterfaces, 2)
	if err != nil {
		return system.Spec{}, err
	}
	for i, row := range rows {
		capacity, err := parseValue(SheetInterfaces, i, row[1])
		if err != nil {
			return system.Spec{}, err
		}
		spec.Interfaces = append(spec.Interfaces, system.Interface{
			ID:       system.InterfaceID(row[0]),
			Capacity: capacity,
		})
	}

	rows, err = dataRows(f, SheetMarginalCosts, 3)
	if err != nil {
		return system.Spec{}, err
	}
	for i, row := range rows {
		value, err := parseValue(SheetMarginalCosts, i, row[2])
		if err != nil {
			return system.Spec{}, err
		}
		spec.MarginalCosts = append(spec.MarginalCosts, system.MarginalCost{
			Interface:   system.InterfaceID(row[0]),
			Distinction: system.DistinctionID(row[1]),
			Value:       value,
		})
	}

	rows, err = dataRows(f, SheetPairwiseCosts, 4)
	if err != nil {
		return system.Spec{}, err
	}
	for i, row := range rows {
		value, err := parseValue(SheetPairwiseCosts, i, row[3])
		if err != nil {
			return system.Spec{}, err
		}
		spec.PairwiseCosts = append(spec.PairwiseCosts, system.PairwiseCost{
			Interface: system.InterfaceID(row[0]),
			Pair: [2]system.DistinctionID{
				system.DistinctionID(row[1]),
				system.DistinctionID(row[2]),
			},
			Value: value,
		})
	}

	return spec, nil
}

// dataRows returns the data rows of a sheet, skipping the header and
// rejecting rows shorter than the expected column count. The cost sheets
// may be absent entirely; missing entries default to zero cost.
func dataRows(f *excelize.File, sheet string, cols int) ([][]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		if sheet == SheetMarginalCosts || sheet == SheetPairwiseCosts {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	var out [][]string
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue // trailing blank rows are common in hand-edited workbooks
		}
		if len(row) < cols {
			return nil, fmt.Errorf("sheet %s row %d: expected %d columns, got %d", sheet, i+2, cols, len(row))
		}
		out = append(out, row)
	}
	return out, nil
}

func parseValue(sheet string, row int, cell string) (float64, error) {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("sheet %s row %d: invalid numeric value %q", sheet, row+2, cell)
	}
	return v, nil
}
