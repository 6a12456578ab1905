package ingest

import (
	"io"

	"pv_potential/internal/model"
)

// Parser reads a production curve from a source and returns its readings.
type Parser interface {
	Parse(r io.Reader) ([]model.Reading, error)
}
