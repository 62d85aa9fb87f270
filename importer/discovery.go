package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dgamaster/config"
)

// PlantSeparator splits the plant identifier from the rest of a folder name.
const PlantSeparator = " - "

// PlantSource is one plant folder and the workbook chosen for it. Path is
// empty when the folder holds no matching workbook or could not be read; in
// the latter case Warning says why.
type PlantSource struct {
	Plant   string
	Folder  string
	Path    string
	Warning string
}

var readDir = os.ReadDir

// DiscoverPlants lists plant folders under baseDir in lexical order and picks
// each folder's transformer workbook.
func DiscoverPlants(baseDir string, cfg config.DiscoveryConfig) ([]PlantSource, error) {
	entries, err := readDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("read base directory %s: %w", baseDir, err)
	}

	sources := make([]PlantSource, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), cfg.FolderSuffix) {
			continue
		}

		folder := filepath.Join(baseDir, entry.Name())
		source := PlantSource{Plant: PlantName(entry.Name()), Folder: folder}
		path, err := findWorkbook(folder, cfg)
		if err != nil {
			source.Warning = err.Error()
		}
		source.Path = path
		sources = append(sources, source)
	}

	sort.Slice(sources, func(i, j int) bool {
		return filepath.Base(sources[i].Folder) < filepath.Base(sources[j].Folder)
	})
	return sources, nil
}

// PlantName returns the folder name text before the first separator.
func PlantName(folderName string) string {
	plant, _, _ := strings.Cut(folderName, PlantSeparator)
	return strings.TrimSpace(plant)
}

func findWorkbook(folder string, cfg config.DiscoveryConfig) (string, error) {
	entries, err := readDir(folder)
	if err != nil {
		return "", fmt.Errorf("read plant folder %s: %w", folder, err)
	}

	token := strings.ToLower(cfg.FileToken)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") {
			continue
		}
		if !hasExtension(name, cfg.Extensions) {
			continue
		}
		if !strings.Contains(strings.ToLower(name), token) {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", nil
	}

	sort.Strings(names)
	return filepath.Join(folder, names[0]), nil
}

func hasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range extensions {
		if ext == strings.ToLower(strings.TrimSpace(candidate)) {
			return true
		}
	}
	return false
}
