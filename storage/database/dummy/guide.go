package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/guide"
)

type guideRepository struct {
	db *guideTable
}

var _ guide.Repository = (*guideRepository)(nil) // interface compliance check

func NewGuideRepository(db *DB) guide.Repository {
	return &guideRepository{db: db.guide}
}

func (repo *guideRepository) query() []guide.Guide {
	guides := make([]guide.Guide, 0, len(repo.db.table))
	for _, g := range repo.db.table {
		guides = append(guides, *g)
	}
	sort.Slice(guides, func(i, j int) bool { return guides[i].CreatedAt.After(guides[j].CreatedAt) })
	return guides
}

func (repo *guideRepository) CreateGuide(ctx context.Context, g guide.Guide, exec ...core.DBExecutor) (guide.Guide, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	g.ID = uuid.New().String()
	repo.db.table[g.ID] = &g
	return g, nil
}

func (repo *guideRepository) GetGuideByID(ctx context.Context, id string, exec ...core.DBExecutor) (guide.Guide, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.table[id]; ok {
		return *g, nil
	}
	return guide.Guide{}, guide.ErrNotFound
}

func (repo *guideRepository) QueryGuides(ctx context.Context, filter *guide.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]guide.Guide, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	guides := repo.query()
	if filter == nil {
		return guides, nil
	}

	// club-scoped queries also surface shared (club-less) guides
	if filter.ClubID != "" {
		var filtered []guide.Guide
		for _, g := range guides {
			if !g.ClubID.Valid || g.ClubID.String == filter.ClubID {
				filtered = append(filtered, g)
			}
		}
		guides = filtered
	}
	if guides != nil && filter.Search != "" {
		var filtered []guide.Guide
		search := strings.ToLower(filter.Search)
		for _, g := range guides {
			if strings.Contains(strings.ToLower(g.Title), search) ||
				strings.Contains(strings.ToLower(g.Description), search) {
				filtered = append(filtered, g)
			}
		}
		guides = filtered
	}

	return guides, nil
}

func (repo *guideRepository) DeleteGuidesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
