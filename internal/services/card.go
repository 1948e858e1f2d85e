package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/store"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

// CardService manages the payment cards a merchant keeps on file.
type CardService struct {
	repos *Repositories
	now   store.Clock
	log   zerolog.Logger
}

func (s *CardService) check(req CardRequest) validation.Violations {
	v := validation.Struct(req)
	if v.Empty() {
		now := s.now()
		// a card is valid through the last day of its expiry month
		if req.ExpYear < now.Year() || (req.ExpYear == now.Year() && time.Month(req.ExpMonth) < now.Month()) {
			v.Add("expYear", "card is expired")
		}
	}
	return v
}

func (s *CardService) List(ctx context.Context, merchantID string) validation.Result[[]*models.MerchantCard] {
	list, err := s.repos.Cards.ListByMerchant(ctx, merchantID)
	if err != nil {
		return failure[[]*models.MerchantCard](s.log, err)
	}
	return validation.OK(list, "")
}

func (s *CardService) Get(ctx context.Context, merchantID, id string) validation.Result[*models.MerchantCard] {
	c, err := lookup[models.MerchantCard](ctx, s.repos.Cards, models.EntityMerchantCard, merchantID, id, true)
	if err != nil {
		return failure[*models.MerchantCard](s.log, err)
	}
	return validation.OK(c, "")
}

func (s *CardService) Create(ctx context.Context, merchantID string, req CardRequest) validation.Result[*models.MerchantCard] {
	if _, err := activeMerchant(ctx, s.repos, merchantID); err != nil {
		return failure[*models.MerchantCard](s.log, err)
	}
	if v := s.check(req); !v.Empty() {
		return validation.Invalid[*models.MerchantCard](v, "")
	}
	c, err := s.repos.Cards.Add(ctx, &models.MerchantCard{
		MerchantID: merchantID,
		Brand:      req.Brand,
		Last4:      req.Last4,
		ExpMonth:   req.ExpMonth,
		ExpYear:    req.ExpYear,
		HolderName: req.HolderName,
	})
	if err != nil {
		return failure[*models.MerchantCard](s.log, err)
	}
	return validation.OK(c, "Card added successfully.")
}

func (s *CardService) Update(ctx context.Context, merchantID, id string, req CardRequest) validation.Result[*models.MerchantCard] {
	if _, err := active[models.MerchantCard](ctx, s.repos.Cards, models.EntityMerchantCard, merchantID, id); err != nil {
		return failure[*models.MerchantCard](s.log, err)
	}
	if v := s.check(req); !v.Empty() {
		return validation.Invalid[*models.MerchantCard](v, "")
	}
	c, err := update(ctx, s.repos.Cards, id, req.Version, func(c *models.MerchantCard) {
		c.Brand = req.Brand
		c.Last4 = req.Last4
		c.ExpMonth = req.ExpMonth
		c.ExpYear = req.ExpYear
		c.HolderName = req.HolderName
	})
	if err != nil {
		return failure[*models.MerchantCard](s.log, err)
	}
	return validation.OK(c, "Card updated successfully.")
}

func (s *CardService) Delete(ctx context.Context, merchantID, id string) validation.Result[struct{}] {
	if _, err := active[models.MerchantCard](ctx, s.repos.Cards, models.EntityMerchantCard, merchantID, id); err != nil {
		return failure[struct{}](s.log, err)
	}
	if err := s.repos.Cards.SoftDelete(ctx, id); err != nil {
		return failure[struct{}](s.log, err)
	}
	return validation.OK(struct{}{}, "Card removed successfully.")
}
