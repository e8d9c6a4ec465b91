// Package logging provides session report generation.
// This file contains the aligned-column table used by the report sections.

package logging

import (
	"fmt"
	"math"
	"strings"
)

// MetricRow represents a single row in a table.
// Values are pre-formatted strings so columns can mix numbers, times and labels.
type MetricRow struct {
	Label          string   // Row label, e.g. "section_01"
	Values         []string // One value per header
	Unit           string   // Unit suffix, e.g. "s", "BPM", "" for unitless
	Interpretation string   // Optional note (only shown if non-empty)
}

// MetricTable formats aligned columns.
// Handles variable column widths, missing values, and an optional note column.
type MetricTable struct {
	Headers []string
	Rows    []MetricRow
}

// String renders the table with aligned columns.
// Labels are left-aligned, values right-aligned within their column, units
// follow the last value column.
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	hasInterpretation := false
	labelWidth := 0
	unitWidth := 0
	for _, row := range t.Rows {
		if row.Interpretation != "" {
			hasInterpretation = true
		}
		labelWidth = max(labelWidth, len(row.Label))
		unitWidth = max(unitWidth, len(row.Unit))
	}

	valueWidths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		valueWidths[i] = len(header)
	}
	for _, row := range t.Rows {
		for i, val := range row.Values {
			if i < len(valueWidths) && len(val) > valueWidths[i] {
				valueWidths[i] = len(val)
			}
		}
	}

	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	for i, header := range t.Headers {
		fmt.Fprintf(&sb, "%*s  ", valueWidths[i], header)
	}
	if unitWidth > 0 {
		sb.WriteString(strings.Repeat(" ", unitWidth+1))
	}
	if hasInterpretation {
		sb.WriteString("Notes")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		fmt.Fprintf(&sb, "%-*s  ", labelWidth, row.Label)

		for i := range t.Headers {
			val := MissingValue
			if i < len(row.Values) && row.Values[i] != "" {
				val = row.Values[i]
			}
			fmt.Fprintf(&sb, "%*s  ", valueWidths[i], val)
		}

		if unitWidth > 0 {
			fmt.Fprintf(&sb, "%-*s ", unitWidth, row.Unit)
		}
		if hasInterpretation {
			sb.WriteString(row.Interpretation)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// MissingValue is the placeholder for unavailable values
const MissingValue = "-"

// formatMetric formats a numeric value with the given precision.
// NaN and Inf become MissingValue; tiny non-zero values use scientific notation.
func formatMetric(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}

	if value != 0 && math.Abs(value) < 0.0001 {
		return fmt.Sprintf("%.2e", value)
	}

	return fmt.Sprintf("%.*f", decimals, value)
}

// formatMetricSigned formats a value with an explicit sign, e.g. "+4" BPM.
func formatMetricSigned(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%+.*f", decimals, value)
}

// formatMetricWithUnit combines value and unit for display.
func formatMetricWithUnit(value float64, decimals int, unit string) string {
	formatted := formatMetric(value, decimals)
	if formatted == MissingValue || unit == "" {
		return formatted
	}
	return formatted + " " + unit
}

// formatBPM renders a tempo, or MissingValue when none was estimated.
func formatBPM(bpm int) string {
	if bpm <= 0 {
		return MissingValue
	}
	return fmt.Sprintf("%d", bpm)
}

// NewMetricTable creates a table with the given column headers.
func NewMetricTable(headers ...string) *MetricTable {
	return &MetricTable{
		Headers: headers,
		Rows:    make([]MetricRow, 0),
	}
}

// AddRow adds a row with pre-formatted values.
func (t *MetricTable) AddRow(label string, values []string, unit string, interpretation string) {
	t.Rows = append(t.Rows, MetricRow{
		Label:          label,
		Values:         values,
		Unit:           unit,
		Interpretation: interpretation,
	})
}

// AddMetricRow adds a row of numeric values, one per header.
// Pass math.NaN() for missing values; they display as "-".
func (t *MetricTable) AddMetricRow(label string, values []float64, decimals int, unit string, interpretation string) {
	formatted := make([]string, len(values))
	for i, v := range values {
		formatted[i] = formatMetric(v, decimals)
	}
	t.AddRow(label, formatted, unit, interpretation)
}
