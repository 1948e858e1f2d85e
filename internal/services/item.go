package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/billing"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

// ItemService manages the catalog line items are copied from.
type ItemService struct {
	repos *Repositories
	taxes *billing.TaxTable
	log   zerolog.Logger
}

func (s *ItemService) check(req ItemRequest) validation.Violations {
	v := validation.Struct(req)
	if req.TaxID != "" && !s.taxes.Has(req.TaxID) {
		v.Add("taxId", "taxId is not a known tax category")
	}
	return v
}

func (s *ItemService) List(ctx context.Context, merchantID string) validation.Result[[]*models.Item] {
	list, err := s.repos.Items.ListByMerchant(ctx, merchantID)
	if err != nil {
		return failure[[]*models.Item](s.log, err)
	}
	return validation.OK(list, "")
}

func (s *ItemService) Get(ctx context.Context, merchantID, id string) validation.Result[*models.Item] {
	it, err := lookup[models.Item](ctx, s.repos.Items, models.EntityItem, merchantID, id, true)
	if err != nil {
		return failure[*models.Item](s.log, err)
	}
	return validation.OK(it, "")
}

func (s *ItemService) Create(ctx context.Context, merchantID string, req ItemRequest) validation.Result[*models.Item] {
	if _, err := activeMerchant(ctx, s.repos, merchantID); err != nil {
		return failure[*models.Item](s.log, err)
	}
	if v := s.check(req); !v.Empty() {
		return validation.Invalid[*models.Item](v, "")
	}
	it, err := s.repos.Items.Add(ctx, &models.Item{
		MerchantID: merchantID,
		Name:       strings.TrimSpace(req.Name),
		UnitPrice:  req.UnitPrice,
		TaxID:      req.TaxID,
		CreatedBy:  ActorFrom(ctx),
	})
	if err != nil {
		return failure[*models.Item](s.log, err)
	}
	return validation.OK(it, "Item created successfully.")
}

func (s *ItemService) Update(ctx context.Context, merchantID, id string, req ItemRequest) validation.Result[*models.Item] {
	if _, err := active[models.Item](ctx, s.repos.Items, models.EntityItem, merchantID, id); err != nil {
		return failure[*models.Item](s.log, err)
	}
	if v := s.check(req); !v.Empty() {
		return validation.Invalid[*models.Item](v, "")
	}
	it, err := update(ctx, s.repos.Items, id, req.Version, func(it *models.Item) {
		it.Name = strings.TrimSpace(req.Name)
		it.UnitPrice = req.UnitPrice
		it.TaxID = req.TaxID
	})
	if err != nil {
		return failure[*models.Item](s.log, err)
	}
	return validation.OK(it, "Item updated successfully.")
}

// Delete soft deletes an item no active document line refers to.
func (s *ItemService) Delete(ctx context.Context, merchantID, id string) validation.Result[struct{}] {
	if _, err := active[models.Item](ctx, s.repos.Items, models.EntityItem, merchantID, id); err != nil {
		return failure[struct{}](s.log, err)
	}
	for _, kind := range models.DocumentKinds {
		docs, err := s.repos.Documents[kind].ListByMerchant(ctx, merchantID)
		if err != nil {
			return failure[struct{}](s.log, err)
		}
		for _, d := range docs {
			for _, li := range d.Items {
				if li.ItemID == id {
					return failure[struct{}](s.log, stateErr(models.EntityItem, id, "item is used by %s %s", kindLabel(kind), d.Number))
				}
			}
		}
	}
	if err := s.repos.Items.SoftDelete(ctx, id); err != nil {
		return failure[struct{}](s.log, err)
	}
	return validation.OK(struct{}{}, "Item deleted successfully.")
}
