package navigation

import (
	"context"
	"log/slog"

	"github.com/artstock/console/internal/auth"
)

// View is the navigation rendered for one request.
type View struct {
	RealRole      auth.Role `json:"realRole"`
	EffectiveRole auth.Role `json:"effectiveRole"`
	Previewing    bool      `json:"previewing"`
	Sections      []Section `json:"sections"`
}

// Service assembles navigation views.
type Service struct {
	tree   []Section
	badges BadgeSource
	logger *slog.Logger
}

// NewService constructs a Service over tree. badges may be nil.
func NewService(tree []Section, badges BadgeSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{tree: tree, badges: badges, logger: logger}
}

// Tree returns the full tree.
func (s *Service) Tree() []Section {
	return s.tree
}

// Build filters the tree for the effective role derived from real and
// override, marks the item at path active and overlays live badges.
func (s *Service) Build(ctx context.Context, real auth.Role, override, path string) View {
	effective := EffectiveRole(real, override)
	sections := Filter(s.tree, effective)
	if s.badges != nil {
		counts, err := s.badges.Badges(ctx)
		if err != nil {
			s.logger.Warn("navigation badges unavailable", slog.Any("error", err))
		}
		ApplyBadges(sections, counts)
	}
	MarkActive(sections, path)
	return View{
		RealRole:      real,
		EffectiveRole: effective,
		Previewing:    effective != real,
		Sections:      sections,
	}
}
