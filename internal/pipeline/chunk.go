package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// ChunkWriter writes CSV rows into row-capped partition files named
// <prefix>_<n>.csv. Rollover happens right after the cap is reached.
type ChunkWriter struct {
	dir     string
	prefix  string
	header  []string
	capRows int

	file  *os.File
	w     *csv.Writer
	index int
	rows  int
	names []string
}

func NewChunkWriter(dir, prefix string, header []string, capRows int) (*ChunkWriter, error) {
	c := &ChunkWriter{dir: dir, prefix: prefix, header: header, capRows: capRows}
	if err := c.open(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ChunkWriter) open() error {
	name := fmt.Sprintf("%s_%d.csv", c.prefix, c.index)
	f, err := os.Create(filepath.Join(c.dir, name))
	if err != nil {
		return err
	}
	c.file = f
	c.w = csv.NewWriter(f)
	c.rows = 0
	c.names = append(c.names, name)
	return c.w.Write(c.header)
}

func (c *ChunkWriter) rotate() error {
	if err := c.closeCurrent(); err != nil {
		return err
	}
	c.index++
	return c.open()
}

func (c *ChunkWriter) Write(record []string) error {
	if err := c.w.Write(record); err != nil {
		return err
	}
	c.rows++
	if c.rows >= c.capRows {
		return c.rotate()
	}
	return nil
}

func (c *ChunkWriter) closeCurrent() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		_ = c.file.Close()
		return err
	}
	return c.file.Close()
}

func (c *ChunkWriter) Close() error {
	return c.closeCurrent()
}

func (c *ChunkWriter) Names() []string {
	return c.names
}
