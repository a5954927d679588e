package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mrops-br/sales-ingestion-api/internal/domain"
)

const maxLineBytes = 1024 * 1024

// FileSource reads fixed-width records line by line. Blank lines are skipped
// and never produce an Item.
type FileSource struct {
	scanner *bufio.Scanner
	lineNo  int
}

// NewFileSource creates a source over r
func NewFileSource(r io.Reader) *FileSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	return &FileSource{scanner: scanner}
}

func (s *FileSource) Kind() domain.BatchSource { return domain.BatchSourceFile }

func (s *FileSource) Next(ctx context.Context) (*Item, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading line %d: %w", s.lineNo+1, err)
			}
			return nil, io.EOF
		}
		s.lineNo++

		line := strings.TrimRight(s.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		item := &Item{Ref: fmt.Sprintf("line %d", s.lineNo)}
		rec, err := DecodeLine(line)
		if err != nil {
			item.ProductID, item.CustomerID = peekIDs(line)
			item.Err = err
			return item, nil
		}
		item.ProductID = rec.ProductID
		item.CustomerID = rec.CustomerID
		item.Record = rec
		return item, nil
	}
}
