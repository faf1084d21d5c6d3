// Package sheetsvc reads tabular data out of uploaded xlsx workbooks.
package sheetsvc

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/logopedika/kabinet/core"
)

// Rows returns the cell values of the workbook's first sheet, row by row.
// Trailing empty cells are absent from short rows, matching excelize.
func Rows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, core.NewParseError(errors.Wrap(err, "opening workbook"))
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.NewParseError(errors.New("workbook has no sheets"))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, core.NewParseError(errors.Wrap(err, "reading sheet"))
	}
	return rows, nil
}
