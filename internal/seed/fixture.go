// Package seed loads YAML fixture documents into the editor.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"vecteditor/internal/domain"
	"vecteditor/internal/domain/models/svgdoc"
	svgdocSvc "vecteditor/internal/domain/services/svgdoc"

	"gopkg.in/yaml.v3"
)

// PeerID is recorded as the author of seeded content
const PeerID = "seed"

// Parse decodes a fixture. Unknown keys are rejected so typos in
// hand-written fixtures surface instead of silently dropping attributes.
func Parse(r io.Reader) (*svgdoc.Tree, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var tree svgdoc.Tree
	if err := dec.Decode(&tree); err != nil {
		if errors.Is(err, io.EOF) {
			return &svgdoc.Tree{}, nil
		}
		return nil, fmt.Errorf("%w: fixture: %v", domain.ErrValidation, err)
	}
	return &tree, nil
}

// ParseFile decodes the fixture at path
func ParseFile(path string) (*svgdoc.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Seeder replaces documents with fixture content through the editor
// service, so fixtures obey the same limits as client imports.
type Seeder struct {
	editor svgdocSvc.EditorService
	logger *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(editor svgdocSvc.EditorService, logger *slog.Logger) *Seeder {
	return &Seeder{
		editor: editor,
		logger: logger,
	}
}

// SeedFile loads path into documentID and returns the resulting view
func (s *Seeder) SeedFile(ctx context.Context, documentID, path string) (*svgdocSvc.SourceView, error) {
	tree, err := ParseFile(path)
	if err != nil {
		return nil, err
	}

	view, err := s.editor.ReplaceTree(ctx, documentID, PeerID, tree)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", documentID, err)
	}

	s.logger.Info("document seeded",
		"document_id", documentID,
		"fixture", path,
		"entries", len(view.Entries),
		"revision", view.Revision,
	)
	return view, nil
}
