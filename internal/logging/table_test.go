package logging

import (
	"math"
	"strings"
	"testing"
)

func TestFormatMetric(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"zero", 0.0, 2, "0.00"},
		{"positive", 3.14159, 2, "3.14"},
		{"negative", -16.5, 1, "-16.5"},
		{"large", 12345.6789, 2, "12345.68"},
		{"small_normal", 0.001, 3, "0.001"},
		{"very_small_scientific", 0.00001, 2, "1.00e-05"},
		{"very_small_negative", -0.00001, 2, "-1.00e-05"},
		{"nan", math.NaN(), 2, MissingValue},
		{"positive_inf", math.Inf(1), 2, MissingValue},
		{"negative_inf", math.Inf(-1), 2, MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMetric(tt.value, tt.decimals)
			if got != tt.want {
				t.Errorf("formatMetric(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFormatMetricSigned(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"positive", 4, 0, "+4"},
		{"negative", -1.2, 1, "-1.2"},
		{"zero", 0.0, 1, "+0.0"},
		{"nan", math.NaN(), 1, MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMetricSigned(tt.value, tt.decimals)
			if got != tt.want {
				t.Errorf("formatMetricSigned(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFormatMetricWithUnit(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		unit     string
		want     string
	}{
		{"with_unit", 3.0, 1, "s", "3.0 s"},
		{"no_unit", 1234.5, 1, "", "1234.5"},
		{"nan_with_unit", math.NaN(), 1, "Hz", MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMetricWithUnit(tt.value, tt.decimals, tt.unit)
			if got != tt.want {
				t.Errorf("formatMetricWithUnit(%v, %d, %q) = %q, want %q", tt.value, tt.decimals, tt.unit, got, tt.want)
			}
		})
	}
}

func TestFormatBPM(t *testing.T) {
	if got := formatBPM(120); got != "120" {
		t.Errorf("formatBPM(120) = %q", got)
	}
	if got := formatBPM(0); got != MissingValue {
		t.Errorf("formatBPM(0) = %q, want %q", got, MissingValue)
	}
}

func TestMetricTableString(t *testing.T) {
	t.Run("basic_columns", func(t *testing.T) {
		table := NewMetricTable("Type", "Start", "BPM")
		table.AddRow("section_01", []string{"SONG", "00:00:00", "120"}, "", "")
		table.AddRow("section_02", []string{"SPEAKING", "00:03:12", ""}, "", "")

		output := table.String()

		for _, want := range []string{"Type", "Start", "BPM", "section_01", "SPEAKING", "00:03:12", "120"} {
			if !strings.Contains(output, want) {
				t.Errorf("output should contain %q:\n%s", want, output)
			}
		}
		if strings.Contains(output, "Notes") {
			t.Error("Notes header should only appear when a row has a note")
		}
	})

	t.Run("with_interpretation", func(t *testing.T) {
		table := NewMetricTable("Value")
		table.AddRow("Gap threshold", []string{"3.0"}, "s", "default")

		output := table.String()

		if !strings.Contains(output, "Notes") {
			t.Error("Output should contain 'Notes' header when rows have notes")
		}
		if !strings.Contains(output, "default") {
			t.Error("Output should contain note text")
		}
	})

	t.Run("missing_values", func(t *testing.T) {
		table := NewMetricTable("A", "B", "C")
		table.AddRow("Test Metric", []string{"10.0", ""}, "s", "")

		output := table.String()

		if !strings.Contains(output, " -  ") {
			t.Error("Missing values should display as dash")
		}
	})

	t.Run("empty_table", func(t *testing.T) {
		table := NewMetricTable("A")
		if output := table.String(); output != "" {
			t.Errorf("Empty table should return empty string, got %q", output)
		}
	})

	t.Run("add_metric_row_with_nan", func(t *testing.T) {
		table := NewMetricTable("Start", "End", "BPM")
		table.AddMetricRow("window", []float64{0, 5, math.NaN()}, 1, "", "")

		lines := strings.Split(table.String(), "\n")
		if len(lines) < 2 {
			t.Fatal("Expected at least 2 lines (header + data)")
		}
		dataLine := lines[1]
		if !strings.Contains(dataLine, "5.0") {
			t.Errorf("AddMetricRow should format values: %q", dataLine)
		}
		if !strings.Contains(dataLine, " -  ") {
			t.Errorf("NaN value should display as dash in: %q", dataLine)
		}
	})
}

func TestMetricTableAlignment(t *testing.T) {
	table := NewMetricTable("One", "Two")
	table.AddRow("Short", []string{"1", "2"}, "", "")
	table.AddRow("Much Longer Label", []string{"100", "200"}, "", "")

	lines := strings.Split(strings.TrimRight(table.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines (header + 2 data), got %d", len(lines))
	}

	// right-aligned values end in the same column
	if len(lines[1]) != len(lines[2]) {
		t.Errorf("rows should have equal width:\n%q\n%q", lines[1], lines[2])
	}
	if !strings.HasPrefix(lines[1], "Short ") {
		t.Errorf("labels should be left-aligned: %q", lines[1])
	}
}
