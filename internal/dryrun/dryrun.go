// Package dryrun implements C14 (§4.11, §4.12, §6.3 `run --dry-run`): C1–C6
// only, against the latest dated raw directory, with no transaction opened
// and no database touched at all. Grounded on the original's
// src/orchestrator/dry_run.py (find_latest_data_directory,
// infer_entity_type, _detect_relationships), reusing this module's own
// internal/orchestrator for the scan/parse plumbing instead of
// reimplementing it.
package dryrun

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/farxc/projetus/internal/model"
	"github.com/farxc/projetus/internal/orchestrator"
	"github.com/farxc/projetus/internal/proponent"
)

// Report is §4.12's dry-run shape: counts found per entity, every row or
// schema error surfaced, relationships inferred across the file groups that
// parsed, and warnings for anything skipped.
type Report struct {
	Timestamp            string
	DataDirectory        string
	EntitiesFound        map[string]int
	ValidationErrors     []string
	RelationshipsFound   []string
	Warnings             []string
}

var datedDirPattern = "2006-01-02"

// FindLatestDataDirectory mirrors the original's directory resolution: if
// root itself holds no dated subdirectories it is returned unchanged (a
// caller pointing straight at a day's directory still works).
func FindLatestDataDirectory(root string) string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return root
	}

	var latest string
	var latestTime time.Time
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		t, err := time.Parse(datedDirPattern, e.Name())
		if err != nil {
			continue
		}
		if latest == "" || t.After(latestTime) {
			latest = e.Name()
			latestTime = t
		}
	}
	if latest == "" {
		return root
	}
	return filepath.Join(root, latest)
}

// Run executes C1–C6 over dir's file groups and reports what it found,
// touching no database connection (§4.11: "no transaction opened").
func Run(dir string) Report {
	dataDir := FindLatestDataDirectory(dir)
	report := Report{
		Timestamp:     time.Now().Format(time.RFC3339),
		DataDirectory: dataDir,
		EntitiesFound: make(map[string]int),
	}

	if _, err := os.Stat(dataDir); err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("data directory not found: %s", dataDir))
		return report
	}

	paths, scanWarnings, err := orchestrator.ScanDirectory(dataDir)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("could not scan directory: %v", err))
		return report
	}
	report.Warnings = append(report.Warnings, scanWarnings...)

	if path, ok := paths[model.FileGroupPropostas]; ok {
		parsed, pe := orchestrator.ParsePropostas(path)
		if pe != nil {
			report.ValidationErrors = append(report.ValidationErrors, fmt.Sprintf("propostas: %s", pe.Error()))
		} else {
			report.EntitiesFound["propostas"] = len(parsed.Valid)
			report.EntitiesFound["proponentes"] = len(proponent.Build(parsed.Valid))
			for _, rowErr := range parsed.RowErrors {
				report.ValidationErrors = append(report.ValidationErrors, fmt.Sprintf("propostas: %s", rowErr.Error()))
			}
		}
	}

	if path, ok := paths[model.FileGroupProgramas]; ok {
		parsed, pe := orchestrator.ParseProgramas(path)
		if pe != nil {
			report.ValidationErrors = append(report.ValidationErrors, fmt.Sprintf("programas: %s", pe.Error()))
		} else {
			report.EntitiesFound["programas"] = len(parsed.Valid)
			for _, rowErr := range parsed.RowErrors {
				report.ValidationErrors = append(report.ValidationErrors, fmt.Sprintf("programas: %s", rowErr.Error()))
			}
		}
	}

	if path, ok := paths[model.FileGroupApoiadoresEmendas]; ok {
		parsed, pe := orchestrator.ParseApoiadoresEmendas(path)
		if pe != nil {
			report.ValidationErrors = append(report.ValidationErrors, fmt.Sprintf("apoiadores_emendas: %s", pe.Error()))
		} else {
			report.EntitiesFound["apoiadores"] = len(parsed.Relationship.Supporters)
			report.EntitiesFound["emendas"] = len(parsed.Relationship.Amendments)
			if parsed.Relationship.PartialRows > 0 {
				report.Warnings = append(report.Warnings, fmt.Sprintf("apoiadores_emendas: %d partial relationships in link rows", parsed.Relationship.PartialRows))
			}
		}
	}

	report.RelationshipsFound = detectRelationships(report.EntitiesFound)
	return report
}

// detectRelationships mirrors the original's pairwise check: it only
// reports a relationship as present when both sides of it actually parsed.
func detectRelationships(entitiesFound map[string]int) []string {
	var relationships []string
	_, hasPropostas := entitiesFound["propostas"]
	_, hasApoiadores := entitiesFound["apoiadores"]
	_, hasEmendas := entitiesFound["emendas"]
	_, hasProgramas := entitiesFound["programas"]

	if hasPropostas && hasApoiadores {
		relationships = append(relationships, "propostas <-> apoiadores (proposta_id)")
	}
	if hasPropostas && hasEmendas {
		relationships = append(relationships, "propostas <-> emendas (proposta_id)")
	}
	if hasPropostas && hasProgramas {
		relationships = append(relationships, "propostas <-> programas (programa_id)")
	}
	sort.Strings(relationships)
	return relationships
}

// ExitCode implements §6.3: dry-run exits 2 when validation errors were
// reported and no entity was found at all, and 0 otherwise — row errors
// alongside at least one parsed file group still exit 0.
func (r Report) ExitCode() int {
	if len(r.ValidationErrors) > 0 && len(r.EntitiesFound) == 0 {
		return 2
	}
	return 0
}
