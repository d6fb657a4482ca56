package ports

import "skipcorr/domain/stats"

// MatrixReader loads a numeric sample matrix from an external source
// (spreadsheet, CSV, request payload).
type MatrixReader interface {
	Read() (*stats.Matrix, error)
}
