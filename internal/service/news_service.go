package service

import (
	"context"
	"fmt"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

const defaultNewsLimit = 10

// NewsService serves recent company headlines.
type NewsService struct {
	provider domain.NewsProvider
}

// NewNewsService creates a NewsService on top of the given provider.
func NewNewsService(provider domain.NewsProvider) *NewsService {
	return &NewsService{provider: provider}
}

// News returns up to limit recent headlines for a symbol. A limit of zero or
// less falls back to the default of 10.
func (s *NewsService) News(ctx context.Context, symbol string, limit int) ([]domain.NewsItem, error) {
	if s.provider == nil {
		return []domain.NewsItem{}, nil
	}
	if limit <= 0 {
		limit = defaultNewsLimit
	}

	items, err := s.provider.News(ctx, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("news_service: %s: %w", symbol, err)
	}
	if items == nil {
		items = []domain.NewsItem{}
	}
	return items, nil
}
