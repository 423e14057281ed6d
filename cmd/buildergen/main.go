// Command buildergen renders builder, accessor, rendering and JSON code for
// the entities listed in a schema file.
//
// Usage (normally through go generate in the models package):
//
//	buildergen -schema schema.yaml [-out dir]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

func main() {
	schemaPath := flag.String("schema", "schema.yaml", "path to the entity schema")
	outDir := flag.String("out", "", "output directory (default: the schema's directory)")
	flag.Parse()

	if err := run(*schemaPath, *outDir); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(schemaPath, outDir string) error {
	s, err := LoadSchema(schemaPath)
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = filepath.Dir(schemaPath)
	}

	files, err := Generate(s)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			return fmt.Errorf("buildergen: write %s: %w", path, err)
		}
		slog.Info("buildergen: wrote", "file", path)
	}
	return nil
}
