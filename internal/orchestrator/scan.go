package orchestrator

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/farxc/projetus/internal/model"
)

// recognizedExtensions are tried in this order when resolving a file
// group's path — xlsx first, since a directory mixing formats per group is
// not expected but both must resolve the same way C2 would pick between
// them (§6.1: "{xlsx|csv}").
var recognizedExtensions = []string{".xlsx", ".csv"}

// FileGroupPaths maps each expected file group to the path found for it in
// a scanned directory. A missing entry means the group's file was absent —
// tolerated per §6.1, producing a partial run rather than a failure.
type FileGroupPaths map[model.FileGroup]string

// ScanDirectory implements the Orchestrator's SCAN_DIR state (§4.11): it
// looks for each of the three expected file group base names under dir,
// tolerates missing files, and warns on any file present that doesn't match
// a recognized group/extension pair.
func ScanDirectory(dir string) (FileGroupPaths, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	byBase := make(map[string]string) // lowercased base name (no ext) -> full path
	rankByBase := make(map[string]int) // lowercased base name -> index of its extension in recognizedExtensions
	var warnings []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		rank := -1
		for i, want := range recognizedExtensions {
			if ext == want {
				rank = i
				break
			}
		}
		if rank < 0 {
			warnings = append(warnings, "unrecognized file in raw directory, ignored: "+name)
			continue
		}
		if prev, exists := rankByBase[base]; !exists || rank < prev {
			byBase[base] = filepath.Join(dir, name)
			rankByBase[base] = rank
		}
	}

	paths := make(FileGroupPaths)
	for _, group := range model.AllFileGroups {
		if p, ok := byBase[string(group)]; ok {
			paths[group] = p
			delete(byBase, string(group))
		}
	}
	for base := range byBase {
		warnings = append(warnings, "unrecognized file in raw directory, ignored: "+base)
	}

	return paths, warnings, nil
}
