package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

// ClientService manages a merchant's customers.
type ClientService struct {
	repos *Repositories
	log   zerolog.Logger
}

func (s *ClientService) List(ctx context.Context, merchantID string) validation.Result[[]*models.Client] {
	list, err := s.repos.Clients.ListByMerchant(ctx, merchantID)
	if err != nil {
		return failure[[]*models.Client](s.log, err)
	}
	return validation.OK(list, "")
}

func (s *ClientService) Get(ctx context.Context, merchantID, id string) validation.Result[*models.Client] {
	c, err := lookup[models.Client](ctx, s.repos.Clients, models.EntityClient, merchantID, id, true)
	if err != nil {
		return failure[*models.Client](s.log, err)
	}
	return validation.OK(c, "")
}

func (s *ClientService) Create(ctx context.Context, merchantID string, req ClientRequest) validation.Result[*models.Client] {
	if _, err := activeMerchant(ctx, s.repos, merchantID); err != nil {
		return failure[*models.Client](s.log, err)
	}
	if v := validation.Struct(req); !v.Empty() {
		return validation.Invalid[*models.Client](v, "")
	}
	c, err := s.repos.Clients.Add(ctx, &models.Client{
		MerchantID:  merchantID,
		Name:        strings.TrimSpace(req.Name),
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		CreatedBy:   ActorFrom(ctx),
	})
	if err != nil {
		return failure[*models.Client](s.log, err)
	}
	return validation.OK(c, "Client created successfully.")
}

func (s *ClientService) Update(ctx context.Context, merchantID, id string, req ClientRequest) validation.Result[*models.Client] {
	if _, err := active[models.Client](ctx, s.repos.Clients, models.EntityClient, merchantID, id); err != nil {
		return failure[*models.Client](s.log, err)
	}
	if v := validation.Struct(req); !v.Empty() {
		return validation.Invalid[*models.Client](v, "")
	}
	c, err := update(ctx, s.repos.Clients, id, req.Version, func(c *models.Client) {
		c.Name = strings.TrimSpace(req.Name)
		c.Email = req.Email
		c.PhoneNumber = req.PhoneNumber
		c.Address = req.Address
	})
	if err != nil {
		return failure[*models.Client](s.log, err)
	}
	return validation.OK(c, "Client updated successfully.")
}

// Delete soft deletes a client that no active document or schedule refers to.
func (s *ClientService) Delete(ctx context.Context, merchantID, id string) validation.Result[struct{}] {
	if _, err := active[models.Client](ctx, s.repos.Clients, models.EntityClient, merchantID, id); err != nil {
		return failure[struct{}](s.log, err)
	}
	for _, kind := range models.DocumentKinds {
		docs, err := s.repos.Documents[kind].ListByMerchant(ctx, merchantID)
		if err != nil {
			return failure[struct{}](s.log, err)
		}
		for _, d := range docs {
			if d.ClientID == id {
				return failure[struct{}](s.log, stateErr(models.EntityClient, id, "client is referenced by %s %s", kindLabel(kind), d.Number))
			}
		}
	}
	schedules, err := s.repos.Schedules.ListByMerchant(ctx, merchantID)
	if err != nil {
		return failure[struct{}](s.log, err)
	}
	for _, sc := range schedules {
		if sc.ClientID == id {
			return failure[struct{}](s.log, stateErr(models.EntityClient, id, "client is referenced by schedule %q", sc.ScheduleName))
		}
	}
	if err := s.repos.Clients.SoftDelete(ctx, id); err != nil {
		return failure[struct{}](s.log, err)
	}
	return validation.OK(struct{}{}, "Client deleted successfully.")
}
