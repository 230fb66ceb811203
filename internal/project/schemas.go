package project

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ContractSchema is a contract declared by a JSON schema file.
type ContractSchema struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	SchemaPath string `json:"schema_path"`
}

// LoadContracts reads <specs>/contract_output/*.schema.json in file name
// order. The id is the file name up to its first dot; the label is the
// schema's title, else the id. A schema that does not parse still yields a
// contract, labelled by id.
func LoadContracts(layout Layout) []ContractSchema {
	if layout.SpecsRoot == "" {
		return nil
	}
	dir := filepath.Join(layout.SpecsRoot, "contract_output")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []ContractSchema
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".schema.json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		id, _, _ := strings.Cut(e.Name(), ".")

		label := id
		if v, err := loadCUE(path); err != nil {
			slog.Debug("contract schema unparsable", "path", path, "error", err)
		} else if title := stringField(v, "title"); title != "" {
			label = title
		}

		out = append(out, ContractSchema{
			ID:         id,
			Label:      label,
			SchemaPath: layout.Rel(path),
		})
	}
	return out
}
