package services

import (
	"fmt"
	"log"

	"quitPathAPI/internal/catalog"
	"quitPathAPI/internal/engine"
	"quitPathAPI/internal/types/challengetype"
)

// CatalogService serves the static challenge-type catalog. Everything is
// loaded and validated once at startup; reads after that are lock-free.
type CatalogService struct {
	byID   map[string]*challengetype.ChallengeType
	bySlug map[string]*challengetype.ChallengeType
	order  []*challengetype.ChallengeType
}

func NewCatalogService(path string) (*CatalogService, error) {
	types, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge catalog: %w", err)
	}

	s := &CatalogService{
		byID:   make(map[string]*challengetype.ChallengeType, len(types)),
		bySlug: make(map[string]*challengetype.ChallengeType, len(types)),
	}
	for i := range types {
		ct := &types[i]
		s.byID[ct.ID] = ct
		s.bySlug[ct.Slug] = ct
		s.order = append(s.order, ct)
	}
	log.Printf("Challenge catalog loaded: %d types", len(types))
	return s, nil
}

func (s *CatalogService) GetChallengeType(id string) (*challengetype.ChallengeType, error) {
	if ct, ok := s.byID[id]; ok {
		return ct, nil
	}
	if ct, ok := s.bySlug[id]; ok {
		return ct, nil
	}
	return nil, fmt.Errorf("%w: challenge type %q", engine.ErrNotFound, id)
}

func (s *CatalogService) ListChallengeTypes() []*challengetype.ChallengeType {
	return s.order
}
