package service

import (
	"context"

	"rental-backend/internal/domain"
	"rental-backend/internal/repository"
	"rental-backend/internal/storage"
)

type catalogService struct {
	itemRepo repository.ItemRepository
	photos   storage.PhotoStorage
}

func NewCatalogService(itemRepo repository.ItemRepository, photos storage.PhotoStorage) CatalogService {
	return &catalogService{itemRepo: itemRepo, photos: photos}
}

// ListAvailable returns in-stock items ordered by name.
func (s *catalogService) ListAvailable(ctx context.Context, query, size string) ([]domain.Item, error) {
	items, err := s.itemRepo.List(ctx, domain.ItemFilter{Query: query, Size: size, InStockOnly: true})
	if err != nil {
		return nil, err
	}
	for i := range items {
		withPhotoURL(s.photos, &items[i])
	}
	return items, nil
}

func (s *catalogService) GetItem(ctx context.Context, id int32) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	withPhotoURL(s.photos, item)
	return item, nil
}

func withPhotoURL(photos storage.PhotoStorage, item *domain.Item) {
	if photos != nil && item.PhotoKey != "" {
		item.PhotoURL = photos.URL(item.PhotoKey)
	}
}
