package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Skipped    string        `json:"skipped,omitempty"`
	Rows       []BulletinRow `json:"rows"`
}

// WriteJSON writes rows as an indented document. skipped is the
// user-facing skipped-records message, omitted when empty.
func WriteJSON(w io.Writer, rows []BulletinRow, skipped string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(rows),
		Skipped:    skipped,
		Rows:       rows,
	}
	if export.Rows == nil {
		export.Rows = []BulletinRow{}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
