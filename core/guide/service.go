package guide

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/trezcool/kitabu/core"
)

var (
	// errors
	ErrNotFound = errors.New("guide not found")
)

type (
	// FileStore persists guide documents. Save returns the stored name, which
	// may differ from the requested one to avoid collisions.
	FileStore interface {
		Save(ctx context.Context, name string, src io.Reader) (storedName string, size int64, err error)
		Open(ctx context.Context, storedName string) (io.ReadCloser, error)
		Delete(ctx context.Context, storedName string) error
	}

	Repository interface {
		CreateGuide(ctx context.Context, g Guide, exec ...core.DBExecutor) (Guide, error)
		GetGuideByID(ctx context.Context, id string, exec ...core.DBExecutor) (Guide, error)
		// QueryGuides applies AND operation on available QueryFilter fields;
		// a ClubID filter also matches guides shared with every club.
		QueryGuides(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Guide, error)
		DeleteGuidesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Upload(ctx context.Context, uploadedBy string, ng NewGuide, src io.Reader) (Guide, error)
		GetByID(ctx context.Context, id string) (Guide, error)
		Open(ctx context.Context, id string) (Guide, io.ReadCloser, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Guide, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo  Repository
		store FileStore
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, store FileStore) *service {
	return &service{
		repo:  repo,
		store: store,
	}
}

// Upload stores the document first, then its metadata; the stored file is
// removed again if the metadata write fails.
func (svc *service) Upload(ctx context.Context, uploadedBy string, ng NewGuide, src io.Reader) (Guide, error) {
	storedName, size, err := svc.store.Save(ctx, ng.FileName, src)
	if err != nil {
		return Guide{}, err
	}
	g := Guide{
		ClubID:      ng.ClubID,
		Title:       ng.Title,
		Description: ng.Description,
		FileName:    storedName,
		ContentType: ng.ContentType,
		Size:        size,
		UploadedBy:  uploadedBy,
		CreatedAt:   time.Now().UTC(),
	}
	g, err = svc.repo.CreateGuide(ctx, g)
	if err != nil {
		_ = svc.store.Delete(ctx, storedName)
		return Guide{}, err
	}
	return g, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Guide, error) {
	return svc.repo.GetGuideByID(ctx, id)
}

func (svc *service) Open(ctx context.Context, id string) (Guide, io.ReadCloser, error) {
	g, err := svc.repo.GetGuideByID(ctx, id)
	if err != nil {
		return Guide{}, nil, err
	}
	rc, err := svc.store.Open(ctx, g.FileName)
	if err != nil {
		return Guide{}, nil, err
	}
	return g, rc, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Guide, error) {
	return svc.repo.QueryGuides(ctx, filter, ordering)
}

// Delete removes metadata first; file removal is best-effort since orphaned
// files are harmless and can be swept offline.
func (svc *service) Delete(ctx context.Context, ids ...string) error {
	guides := make([]Guide, 0, len(ids))
	for _, id := range ids {
		g, err := svc.repo.GetGuideByID(ctx, id)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return err
		}
		guides = append(guides, g)
	}
	if err := svc.repo.DeleteGuidesByID(ctx, ids); err != nil {
		return err
	}
	for _, g := range guides {
		_ = svc.store.Delete(ctx, g.FileName)
	}
	return nil
}
