package host

import (
	"context"
	"os"
	"path/filepath"

	"github.com/nikbrunner/bmc/internal/exporter"
	"github.com/nikbrunner/bmc/internal/model"
)

// Safari has no readable bookmark store. Created folders and bookmarks are
// collected in a session tree that Close writes as Netscape HTML, ready for
// File > Import From > Bookmarks HTML File.
type Safari struct {
	session *Memory
	outPath string
	created bool
}

// NewSafari returns a Safari host that writes its import file to outPath.
func NewSafari(outPath string) *Safari {
	return &Safari{
		session: NewMemory(model.Safari, nil),
		outPath: outPath,
	}
}

// OutPath returns where Close writes the import file.
func (s *Safari) OutPath() string { return s.outPath }

func (s *Safari) Platform() model.Platform { return model.Safari }

func (s *Safari) Tree(context.Context) (*model.Node, error) {
	return nil, ErrTreeUnavailable
}

// Children reports what this session created under parentID, so repeated
// requests for one folder name reuse it.
func (s *Safari) Children(ctx context.Context, parentID string) ([]*model.Node, error) {
	return s.session.Children(ctx, parentID)
}

func (s *Safari) Create(ctx context.Context, params model.CreateParams) (*model.Node, error) {
	node, err := s.session.Create(ctx, params)
	if err != nil {
		return nil, err
	}
	s.session.mu.Lock()
	s.created = true
	s.session.mu.Unlock()
	return node, nil
}

// Close writes the import file when anything was created.
func (s *Safari) Close() error {
	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	if !s.created {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.outPath), 0o755); err != nil {
		return err
	}
	// The favorites container itself is not exported, only what is in it.
	bar := s.session.tree.Find("BookmarksBar")
	return os.WriteFile(s.outPath, []byte(exporter.ExportHTML(bar)), 0o644)
}
