package cnf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteDIMACS serializes c in the standard DIMACS CNF text format that every
// SAT-competition solver accepts on stdin or as a file argument.
func WriteDIMACS(w io.Writer, c *CNF) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", c.NumVars, len(c.Clauses)); err != nil {
		return err
	}

	buf := make([]byte, 0, 32)
	for _, clause := range c.Clauses {
		buf = buf[:0]
		for _, lit := range clause {
			buf = strconv.AppendInt(buf, int64(lit), 10)
			buf = append(buf, ' ')
		}
		buf = append(buf, '0', '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}

	return bw.Flush()
}
