package telemetry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Window dimensions expected by the inference endpoint: 30 time steps of 24
// sensor channels.
const (
	Rows  = 30
	Cols  = 24
	Total = Rows * Cols
)

// Window is one fixed-shape telemetry snapshot. Every value is finite.
type Window [Rows][Cols]float64

// Axis names the dimension a ShapeMismatchError refers to.
type Axis string

const (
	AxisRows    Axis = "rows"
	AxisColumns Axis = "columns"
	AxisTotal   Axis = "total"
)

// ErrShapeMismatch matches any *ShapeMismatchError via errors.Is.
var ErrShapeMismatch = errors.New("telemetry shape mismatch")

// ShapeMismatchError reports input whose dimensions do not match the 30×24
// window. Row is the 0-based offending row and is only meaningful for
// AxisColumns.
type ShapeMismatchError struct {
	Expected int
	Actual   int
	Axis     Axis
	Row      int
}

func (e *ShapeMismatchError) Error() string {
	switch e.Axis {
	case AxisRows:
		return fmt.Sprintf("invalid cycle count: expected %d rows, found %d", e.Expected, e.Actual)
	case AxisColumns:
		return fmt.Sprintf("cycle %d: expected %d sensors, found %d", e.Row+1, e.Expected, e.Actual)
	default:
		return fmt.Sprintf("reshape requires exactly %d values, found %d", e.Expected, e.Actual)
	}
}

func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// Parse turns raw comma-delimited text into a Window.
//
// Blank lines and empty fields are ignored. The remaining input must be
// exactly 30 lines of 24 fields, otherwise a *ShapeMismatchError is returned
// and no partial window is produced. Fields that do not parse as a number, or
// that parse to NaN or ±Inf, become 0.
func Parse(raw string) (Window, error) {
	var w Window

	lines := nonEmptyLines(raw)
	if len(lines) != Rows {
		return Window{}, &ShapeMismatchError{Expected: Rows, Actual: len(lines), Axis: AxisRows}
	}

	for i, line := range lines {
		fields := splitFields(line)
		if len(fields) != Cols {
			return Window{}, &ShapeMismatchError{Expected: Cols, Actual: len(fields), Axis: AxisColumns, Row: i}
		}
		for j, f := range fields {
			w[i][j] = parseValue(f)
		}
	}
	return w, nil
}

// Repair rewraps a flat block of 720 values (separated by commas and/or any
// whitespace) into 30 canonical CSV rows of 24 values. Tokens are copied
// verbatim so the repaired text parses to exactly what hand-authored rows
// would.
func Repair(raw string) (string, error) {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
	})
	if len(tokens) != Total {
		return "", &ShapeMismatchError{Expected: Total, Actual: len(tokens), Axis: AxisTotal}
	}

	rows := make([]string, 0, Rows)
	for i := 0; i < Total; i += Cols {
		rows = append(rows, strings.Join(tokens[i:i+Cols], ","))
	}
	return strings.Join(rows, "\n"), nil
}

// Format renders w as canonical CSV: shortest round-trip float text, commas
// between sensors, newlines between cycles. Parse(Format(w)) == w.
func Format(w Window) string {
	var sb strings.Builder
	for i, row := range w {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j, v := range row {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
	return sb.String()
}

// Sanitized returns a copy of w with any non-finite value replaced by 0.
func (w Window) Sanitized() Window {
	for i := range w {
		for j, v := range w[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				w[i][j] = 0
			}
		}
	}
	return w
}

// Shape is the live row/sensor count of raw input, as shown next to the
// input buffer while the operator types.
type Shape struct {
	Rows int
	Cols int // field count of the first non-empty row
}

// Valid reports whether the shape is exactly 30×24.
func (s Shape) Valid() bool {
	return s.Rows == Rows && s.Cols == Cols
}

// Inspect counts rows and first-row sensors using the same blank-line and
// empty-field rules as Parse.
func Inspect(raw string) Shape {
	lines := nonEmptyLines(raw)
	if len(lines) == 0 {
		return Shape{}
	}
	return Shape{Rows: len(lines), Cols: len(splitFields(lines[0]))}
}

func nonEmptyLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseValue reads a whole field as a float. Unparseable or non-finite
// fields become 0; "12.5abc" is 0, not 12.5.
func parseValue(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
