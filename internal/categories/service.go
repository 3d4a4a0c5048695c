package categories

import (
	"fmt"

	"github.com/tally-dev/tally/internal/model"
)

// Service provides in-memory lookup and editing over the category list.
// Persistence is the caller's job: read the slice back with All and hand it
// to the store after mutating.
type Service struct {
	cats   []model.Category
	byCode map[string]model.Category
}

// NewService creates a Service from a slice of categories.
func NewService(cats []model.Category) *Service {
	byCode := make(map[string]model.Category, len(cats))
	for _, c := range cats {
		byCode[c.Code] = c
	}
	return &Service{cats: cats, byCode: byCode}
}

// All returns all categories in their stored order.
func (s *Service) All() []model.Category {
	return s.cats
}

// Get returns a category by code.
func (s *Service) Get(code string) (model.Category, bool) {
	c, ok := s.byCode[code]
	return c, ok
}

// Exists reports whether a category code exists.
func (s *Service) Exists(code string) bool {
	_, ok := s.byCode[code]
	return ok
}

// ByType returns all categories of the given type.
func (s *Service) ByType(ct model.CategoryType) []model.Category {
	var result []model.Category
	for _, c := range s.cats {
		if c.Type == ct {
			result = append(result, c)
		}
	}
	return result
}

// Add appends a new category. The code must be unique.
func (s *Service) Add(c model.Category) error {
	if c.Code == "" {
		return fmt.Errorf("category code is required")
	}
	if s.Exists(c.Code) {
		return fmt.Errorf("category code %q already exists", c.Code)
	}
	s.cats = append(s.cats, c)
	s.byCode[c.Code] = c
	return nil
}

// Update replaces the category with the same code.
func (s *Service) Update(c model.Category) error {
	if !s.Exists(c.Code) {
		return fmt.Errorf("category code %q not found", c.Code)
	}
	for i := range s.cats {
		if s.cats[i].Code == c.Code {
			s.cats[i] = c
			break
		}
	}
	s.byCode[c.Code] = c
	return nil
}

// Remove deletes the category with the given code.
func (s *Service) Remove(code string) error {
	if !s.Exists(code) {
		return fmt.Errorf("category code %q not found", code)
	}
	kept := s.cats[:0]
	for _, c := range s.cats {
		if c.Code != code {
			kept = append(kept, c)
		}
	}
	s.cats = kept
	delete(s.byCode, code)
	return nil
}
