package service

import (
	"github.com/netvista/ispconsole-backend/internal/model"
	"github.com/netvista/ispconsole-backend/internal/repository"
)

type RecipientService struct {
	RecipientRepo repository.RecipientRepositoryInterface
}

// Search returns the selectable recipient pool for the given filters. The
// full filtered set is returned; bounding the pool before dispatch is the
// coordinator's responsibility, not the selector's.
func (s *RecipientService) Search(typeFilter, query, status string) ([]model.Recipient, error) {
	var typ model.RecipientType
	switch typeFilter {
	case "customers", "customer":
		typ = model.RecipientCustomer
	case "employees", "employee":
		typ = model.RecipientEmployee
	default:
		// "all" or empty keeps both types.
	}

	return s.RecipientRepo.Search(typ, query, status)
}
