// Package importer reconciles registered note sources with the
// database: new markdown notes become flashcard notes with one or two
// cards, and notes whose content disappeared from the source are
// removed.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kojaberamokhe/pkm-system/internal/domain"
	"github.com/kojaberamokhe/pkm-system/internal/fingerprint"
	"github.com/kojaberamokhe/pkm-system/internal/gitsource"
	"github.com/kojaberamokhe/pkm-system/internal/parser"
	"github.com/kojaberamokhe/pkm-system/internal/storage"
)

// Importer syncs note sources into storage.
type Importer struct {
	store    *storage.DB
	reposDir string
	log      *slog.Logger
}

// New creates an importer that keeps git clones under reposDir.
func New(store *storage.DB, reposDir string, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{store: store, reposDir: reposDir, log: log}
}

// Run reconciles every registered source.
func (imp *Importer) Run(ctx context.Context) error {
	sources, err := imp.store.AllSources(ctx)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}
	if len(sources) == 0 {
		imp.log.Info("no sources configured")
		return nil
	}

	if err := os.MkdirAll(imp.reposDir, 0o755); err != nil {
		return fmt.Errorf("create repos directory: %w", err)
	}

	for _, source := range sources {
		imp.log.Info("syncing source", "id", source.ID, "kind", source.Kind, "path", source.Path)

		dir := source.Path
		if source.Kind == domain.SourceGit {
			localPath, err := gitsource.LocalPath(imp.reposDir, source.Path)
			if err != nil {
				imp.log.Error("cannot map git source to a local path", "url", source.Path, "error", err)
				continue
			}
			if err := gitsource.Sync(ctx, source.Path, localPath); err != nil {
				imp.log.Error("git sync failed", "url", source.Path, "error", err)
				continue
			}
			dir = localPath
		}

		if err := imp.reconcile(ctx, source, dir); err != nil {
			imp.log.Error("reconciliation failed", "source", source.Path, "error", err)
		}
	}
	return nil
}

// reconcile walks one source directory, imports unseen notes, and drops
// notes no longer present in the source.
func (imp *Importer) reconcile(ctx context.Context, source domain.Source, dir string) error {
	found := make(map[string]bool)
	var imported, parseErrors int

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		parsed, err := parser.ParseFile(path)
		if err != nil {
			parseErrors++
			imp.log.Warn("failed to parse file", "path", path, "error", err)
			return nil
		}

		for _, note := range parsed {
			fp := fingerprint.Note(note.Front, note.Back, note.Context)
			found[fp] = true

			if err := imp.importNote(ctx, source, note, fp); err != nil {
				parseErrors++
				imp.log.Warn("failed to import note", "path", path, "error", err)
			} else {
				imported++
			}
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walk %s: %w", dir, walkErr)
	}

	orphans, err := imp.deleteOrphans(ctx, source, found)
	if err != nil {
		return err
	}

	if err := imp.store.TouchSource(ctx, source.ID, time.Now()); err != nil {
		imp.log.Warn("failed to update last scanned", "source", source.ID, "error", err)
	}

	imp.log.Info("source reconciled",
		"path", source.Path,
		"notes", len(found),
		"orphans_deleted", orphans,
		"errors", parseErrors,
	)
	return nil
}

// importNote inserts a note and its card(s) unless the same content was
// imported before.
func (imp *Importer) importNote(ctx context.Context, source domain.Source, note parser.Note, fp string) error {
	_, err := imp.store.NoteByFingerprint(ctx, fp)
	if err == nil {
		return nil // already imported
	}
	if !errors.Is(err, storage.ErrNoteNotFound) {
		return err
	}

	sourceID := source.ID
	n := &domain.Note{
		Title:       noteTitle(note.Front),
		Content:     note.Context,
		Flashcard:   true,
		Fingerprint: fp,
		SourceID:    &sourceID,
	}
	if err := imp.store.CreateNote(ctx, n); err != nil {
		return err
	}

	card := &domain.Card{
		NoteID:    n.ID,
		Front:     note.Front,
		Back:      note.Back,
		Direction: domain.FrontToBack,
	}
	if _, err := imp.store.CreateCard(ctx, card, note.Reverse); err != nil {
		return err
	}
	imp.log.Info("note imported", "note", n.ID, "reverse", note.Reverse)
	return nil
}

// deleteOrphans removes previously-imported notes whose content is no
// longer in the source; their cards cascade.
func (imp *Importer) deleteOrphans(ctx context.Context, source domain.Source, found map[string]bool) (int, error) {
	existing, err := imp.store.NotesBySource(ctx, source.ID)
	if err != nil {
		return 0, fmt.Errorf("load notes for source %d: %w", source.ID, err)
	}

	var deleted int
	for _, n := range existing {
		if n.Fingerprint == "" || found[n.Fingerprint] {
			continue
		}
		if err := imp.store.DeleteNote(ctx, n.ID); err != nil {
			imp.log.Warn("failed to delete orphaned note", "note", n.ID, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

// noteTitle derives a display title from the first line of the front.
func noteTitle(front string) string {
	title, _, _ := strings.Cut(front, "\n")
	const maxTitle = 80
	if len(title) > maxTitle {
		title = title[:maxTitle]
	}
	return title
}
