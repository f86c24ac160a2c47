package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run    RunMetadata          `json:"run"`
	Series map[string][]float64 `json:"series"`
}

// ExportJSON writes the metadata and series of a run as one JSON document.
// An empty path writes to stdout.
func ExportJSON(path string, meta *RunMetadata, table *Table) error {
	data := ExportData{
		Run:    *meta,
		Series: make(map[string][]float64, len(table.Names)),
	}
	for i, name := range table.Names {
		data.Series[name] = table.Columns[i]
	}

	var w io.Writer = os.Stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes table as CSV. An empty path writes to stdout.
func ExportCSV(path string, table *Table) error {
	if path == "" {
		return writeSeries(os.Stdout, table)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeSeries(file, table)
}
