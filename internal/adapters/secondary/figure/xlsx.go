package figure

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Series is a labelled column of numbers
type Series struct {
	Labels []string
	Values []float64
}

// LoadSeriesXLSX reads labels from column A and values from column B of a
// worksheet. An empty sheet name selects the first sheet. Rows whose value
// is not a number, such as a header row, are skipped.
func LoadSeriesXLSX(path, sheet string) (*Series, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}

	series := &Series{}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			continue
		}
		series.Labels = append(series.Labels, strings.TrimSpace(row[0]))
		series.Values = append(series.Values, v)
	}
	if len(series.Values) == 0 {
		return nil, fmt.Errorf("sheet %s: %w", sheet, ErrNoData)
	}
	return series, nil
}
