// Package sync reconciles the manifest's binary-target list with the
// source files on disk.
package sync

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/schaermu/bintool/internal/config"
	"github.com/schaermu/bintool/internal/lang"
	"github.com/schaermu/bintool/internal/manifest"
	"github.com/schaermu/bintool/internal/source"
)

// ErrExists indicates the target source file for a new binary already
// exists; the tool never overwrites user code.
var ErrExists = errors.New("file already exists")

// EntryPointDetector reports whether source text defines the
// conventional entry-point function. lang.Language satisfies it; a real
// parser can be plugged in without touching the engine.
type EntryPointDetector interface {
	HasEntryPoint(src []byte) bool
}

// Engine orchestrates manifest scaffolding and reconciliation for one
// project.
type Engine struct {
	cfg          *config.Config
	manifestPath string
	root         string // manifest directory; bin paths are relative to it
	lang         lang.Language
	detector     EntryPointDetector
	logger       *slog.Logger
	dryRun       bool
}

// NewEngine creates an engine for the project owning manifestPath.
func NewEngine(cfg *config.Config, manifestPath string, logger *slog.Logger, dryRun bool) (*Engine, error) {
	l, err := lang.ByName(cfg.Language)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:          cfg,
		manifestPath: manifestPath,
		root:         filepath.Dir(manifestPath),
		lang:         l,
		detector:     l,
		logger:       logger,
		dryRun:       dryRun,
	}, nil
}

// NewBin scaffolds a new entry-point source file in the source
// directory and registers it in the manifest. The file write and the
// manifest write are not transactional: a manifest failure after the
// file was created is surfaced without rollback.
func (e *Engine) NewBin(name string) error {
	fileName, binName, err := e.normalizeName(name)
	if err != nil {
		return err
	}

	relPath := path.Join(filepath.ToSlash(e.cfg.SourceDir), fileName)
	absPath := filepath.Join(e.root, e.cfg.SourceDir, fileName)

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return fmt.Errorf("failed to create source directory: %w", err)
	}

	f, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s: %w", relPath, ErrExists)
		}
		return fmt.Errorf("failed to create %s: %w", relPath, err)
	}
	_, werr := f.Write(e.lang.Stub())
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, werr)
	}
	if cerr != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, cerr)
	}

	doc, err := manifest.Load(e.manifestPath)
	if err != nil {
		return err
	}
	if err := doc.AddBin(manifest.Bin{Name: binName, Path: relPath}); err != nil {
		return err
	}
	if err := doc.Save(e.manifestPath); err != nil {
		return err
	}

	e.logger.Info("created binary", "name", binName, "path", relPath)
	return nil
}

// normalizeName turns the user-supplied name into the source file name
// and the manifest record name. The extension is appended when missing.
func (e *Engine) normalizeName(name string) (fileName, binName string, err error) {
	if name == "" {
		return "", "", fmt.Errorf("binary name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return "", "", fmt.Errorf("binary name must not contain path separators: %s", name)
	}

	fileName = name
	if !strings.HasSuffix(fileName, e.lang.Ext) {
		fileName += e.lang.Ext
	}
	binName = strings.TrimSuffix(fileName, e.lang.Ext)
	if binName == "" {
		return "", "", fmt.Errorf("binary name cannot be just the extension: %s", name)
	}
	return fileName, binName, nil
}

// Tidy reconciles the manifest's binary-target list with the source
// directory: records pointing at missing files or files without an
// entry point are removed, detected entry-point files not yet
// registered are added, and valid records are left untouched.
func (e *Engine) Tidy() error {
	doc, err := manifest.Load(e.manifestPath)
	if err != nil {
		return err
	}

	plan, err := e.buildPlan(doc)
	if err != nil {
		return fmt.Errorf("failed to build tidy plan: %w", err)
	}

	e.logger.Info("tidy plan", "add", len(plan.Add), "remove", len(plan.Remove))

	if e.dryRun {
		e.logPlanDetails(plan)
		e.logger.Info("dry-run complete, no changes applied")
		return nil
	}

	if len(plan.Add) == 0 && len(plan.Remove) == 0 {
		e.logger.Info("manifest already in sync")
		return nil
	}

	if err := e.applyPlan(doc, plan); err != nil {
		return fmt.Errorf("failed to apply tidy plan: %w", err)
	}
	if err := doc.Save(e.manifestPath); err != nil {
		return err
	}

	e.logger.Info("tidy completed", "added", len(plan.Add), "removed", len(plan.Remove))
	return nil
}

// buildPlan computes the diff between the entry-point files on disk and
// the current manifest records.
func (e *Engine) buildPlan(doc *manifest.Document) (*Plan, error) {
	desired, err := e.desiredBins()
	if err != nil {
		return nil, err
	}

	current, err := doc.Bins()
	if err != nil {
		return nil, err
	}

	registered := make(map[string]bool, len(current))
	for _, b := range current {
		registered[b.Path] = true
	}

	plan := &Plan{}
	for _, b := range current {
		valid, err := e.isValid(b)
		if err != nil {
			return nil, err
		}
		if !valid {
			plan.Remove = append(plan.Remove, b)
		}
	}
	for _, b := range desired {
		if !registered[b.Path] {
			plan.Add = append(plan.Add, b)
		}
	}

	return plan, nil
}

// isValid reports whether a registered record still points at an
// existing regular file that defines an entry point.
func (e *Engine) isValid(b manifest.Bin) (bool, error) {
	path := filepath.Join(e.root, filepath.FromSlash(b.Path))

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", b.Path, err)
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", b.Path, err)
	}
	return e.detector.HasEntryPoint(data), nil
}

// desiredBins scans the source directory and returns one record per
// entry-point file. Duplicate derived names are resolved
// deterministically: the first candidate in enumeration order wins and
// later ones are skipped with a warning.
func (e *Engine) desiredBins() ([]manifest.Bin, error) {
	srcDir := filepath.Join(e.root, e.cfg.SourceDir)
	files, err := source.Discover(srcDir, e.lang.Ext, e.cfg.Tidy.Recursive)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing to scan; tidy still prunes stale records.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan %s: %w", srcDir, err)
	}

	seen := make(map[string]string) // derived name -> path that claimed it
	var bins []manifest.Bin
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		if !e.detector.HasEntryPoint(data) {
			continue
		}

		rel, err := filepath.Rel(e.root, file)
		if err != nil {
			return nil, fmt.Errorf("failed to compute relative path for %s: %w", file, err)
		}
		rel = filepath.ToSlash(rel)

		name := source.BinName(file)
		if kept, ok := seen[name]; ok {
			e.logger.Warn("skipping duplicate binary name", "name", name, "path", rel, "kept", kept)
			continue
		}
		seen[name] = rel

		bins = append(bins, manifest.Bin{Name: name, Path: rel})
	}

	return bins, nil
}

// applyPlan mutates the document in place
func (e *Engine) applyPlan(doc *manifest.Document, plan *Plan) error {
	for _, b := range plan.Remove {
		e.logger.Info("removing record", "name", b.Name, "path", b.Path)
		doc.RemoveBin(b.Path)
	}

	for _, b := range plan.Add {
		e.logger.Info("adding record", "name", b.Name, "path", b.Path)
		if err := doc.AddBin(b); err != nil {
			return fmt.Errorf("failed to add record %s: %w", b.Name, err)
		}
	}

	return nil
}

// logPlanDetails logs detailed plan information for dry-run
func (e *Engine) logPlanDetails(plan *Plan) {
	for _, b := range plan.Add {
		e.logger.Info("[dry-run] would add", "name", b.Name, "path", b.Path)
	}
	for _, b := range plan.Remove {
		e.logger.Info("[dry-run] would remove", "name", b.Name, "path", b.Path)
	}
}
