package sheet

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ReadHTMLTables converts every <table> in an HTML document into a RawGrid,
// so statement exports from accounting packages feed the same pipeline as
// xlsx workbooks. Tables are named "Table 1", "Table 2", ... in document
// order.
func ReadHTMLTables(r io.Reader, sourceFile string, modTime time.Time) ([]*RawGrid, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, sourceFile, err)
	}

	var grids []*RawGrid
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		grid := &RawGrid{
			SourceFile: sourceFile,
			SheetName:  fmt.Sprintf("Table %d", i+1),
			ModTime:    modTime,
		}
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cells []Cell
			row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, ParseCell(strings.TrimSpace(cell.Text())))
			})
			grid.Rows = append(grid.Rows, cells)
		})
		grids = append(grids, grid)
	})
	return grids, nil
}

// ReadHTMLFile opens an HTML statement export from disk.
func ReadHTMLFile(path string) ([]*RawGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, err)
	}
	defer f.Close()

	modTime := time.Now()
	if st, err := f.Stat(); err == nil {
		modTime = st.ModTime()
	}
	return ReadHTMLTables(f, path, modTime)
}
