package viz

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// NoData is the ESRI ASCII value of empty cells.
const NoData = -9999.0

// WriteASCII encodes g as an ESRI ASCII grid.
func WriteASCII(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\nnrows %d\nxllcorner %s\nyllcorner %s\ncellsize %s\nNODATA_value %s\n",
		g.Cols, g.Rows, num(g.XMin), num(g.YMin), num(g.CellSize), num(NoData))
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if col > 0 {
				bw.WriteByte(' ')
			}
			v := g.At(row, col)
			if math.IsNaN(v) {
				v = NoData
			}
			bw.WriteString(num(v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// SaveASCII writes g to path as an ESRI ASCII grid.
func SaveASCII(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create raster %s: %w", path, err)
	}
	if err := WriteASCII(f, g); err != nil {
		f.Close()
		return fmt.Errorf("failed to write raster %s: %w", path, err)
	}
	return f.Close()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
