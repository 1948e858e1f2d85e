package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/billing"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/recurrence"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/store"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

// ScheduleService manages auto-issuance schedules and runs the due ones.
type ScheduleService struct {
	repos    *Repositories
	invoices *DocumentService
	now      store.Clock
	log      zerolog.Logger
}

// RunReport summarizes one RunDue pass.
type RunReport struct {
	RunAt    time.Time `json:"runAt"`
	Issued   []string  `json:"issued"`
	Skipped  int       `json:"skipped"`
	Failures []string  `json:"failures,omitempty"`
}

type scheduleFields struct {
	next, start, end *time.Time
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func (s *ScheduleService) check(ctx context.Context, merchantID string, req ScheduleRequest) (scheduleFields, error) {
	v := validation.Struct(req)
	f := scheduleFields{next: parseDate(req.NextIssuanceDate), start: parseDate(req.StartDate), end: parseDate(req.EndDate)}
	if f.start != nil && f.end != nil && f.end.Before(*f.start) {
		v.Add("endDate", "endDate must not be before startDate")
	}
	if req.NextIssuanceDate == "" && req.StartDate == "" {
		v.Add("nextIssuanceDate", "nextIssuanceDate or startDate is required")
	}

	if req.ClientID != "" {
		_, err := active[models.Client](ctx, s.repos.Clients, models.EntityClient, merchantID, req.ClientID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			v.Add("clientId", "client not found")
		case err != nil:
			return f, err
		}
	}
	if req.TemplateID != "" {
		_, err := active[models.Document](ctx, s.repos.Documents[models.KindInvoice], "invoice", merchantID, req.TemplateID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			v.Add("templateId", "template invoice not found")
		case err != nil:
			return f, err
		}
	}
	if !v.Empty() {
		return f, &ValidationError{Violations: v}
	}
	if f.next == nil {
		f.next = f.start
	}
	return f, nil
}

func (s *ScheduleService) List(ctx context.Context, merchantID string) validation.Result[[]*models.AutoIssuanceSchedule] {
	list, err := s.repos.Schedules.ListByMerchant(ctx, merchantID)
	if err != nil {
		return failure[[]*models.AutoIssuanceSchedule](s.log, err)
	}
	return validation.OK(list, "")
}

func (s *ScheduleService) Get(ctx context.Context, merchantID, id string) validation.Result[*models.AutoIssuanceSchedule] {
	sc, err := lookup[models.AutoIssuanceSchedule](ctx, s.repos.Schedules, models.EntitySchedule, merchantID, id, true)
	if err != nil {
		return failure[*models.AutoIssuanceSchedule](s.log, err)
	}
	return validation.OK(sc, "")
}

func (s *ScheduleService) Create(ctx context.Context, merchantID string, req ScheduleRequest) validation.Result[*models.AutoIssuanceSchedule] {
	if _, err := activeMerchant(ctx, s.repos, merchantID); err != nil {
		return failure[*models.AutoIssuanceSchedule](s.log, err)
	}
	f, err := s.check(ctx, merchantID, req)
	if err != nil {
		return failure[*models.AutoIssuanceSchedule](s.log, err)
	}
	sc, err := s.repos.Schedules.Add(ctx, &models.AutoIssuanceSchedule{
		MerchantID:       merchantID,
		ScheduleName:     req.ScheduleName,
		ClientID:         req.ClientID,
		IntervalType:     req.IntervalType,
		IntervalValue:    req.IntervalValue,
		NextIssuanceDate: *f.next,
		StartDate:        f.start,
		EndDate:          f.end,
		TemplateID:       req.TemplateID,
		Enabled:          req.Enabled,
	})
	if err != nil {
		return failure[*models.AutoIssuanceSchedule](s.log, err)
	}
	return validation.OK(sc, "Schedule created successfully.")
}

func (s *ScheduleService) Update(ctx context.Context, merchantID, id string, req ScheduleRequest) validation.Result[*models.AutoIssuanceSchedule] {
	if _, err := active[models.AutoIssuanceSchedule](ctx, s.repos.Schedules, models.EntitySchedule, merchantID, id); err != nil {
		return failure[*models.AutoIssuanceSchedule](s.log, err)
	}
	f, err := s.check(ctx, merchantID, req)
	if err != nil {
		return failure[*models.AutoIssuanceSchedule](s.log, err)
	}
	sc, err := update(ctx, s.repos.Schedules, id, req.Version, func(sc *models.AutoIssuanceSchedule) {
		sc.ScheduleName = req.ScheduleName
		sc.ClientID = req.ClientID
		sc.IntervalType = req.IntervalType
		sc.IntervalValue = req.IntervalValue
		sc.NextIssuanceDate = *f.next
		sc.StartDate = f.start
		sc.EndDate = f.end
		sc.TemplateID = req.TemplateID
		sc.Enabled = req.Enabled
	})
	if err != nil {
		return failure[*models.AutoIssuanceSchedule](s.log, err)
	}
	return validation.OK(sc, "Schedule updated successfully.")
}

func (s *ScheduleService) Delete(ctx context.Context, merchantID, id string) validation.Result[struct{}] {
	if _, err := active[models.AutoIssuanceSchedule](ctx, s.repos.Schedules, models.EntitySchedule, merchantID, id); err != nil {
		return failure[struct{}](s.log, err)
	}
	if err := s.repos.Schedules.SoftDelete(ctx, id); err != nil {
		return failure[struct{}](s.log, err)
	}
	return validation.OK(struct{}{}, "Schedule deleted successfully.")
}

// Activate makes the schedule eligible for issuance.
func (s *ScheduleService) Activate(ctx context.Context, merchantID, id string) validation.Result[*models.AutoIssuanceSchedule] {
	return s.transition(ctx, merchantID, id, recurrence.Activate, "Schedule activated.")
}

// Deactivate returns the schedule to draft.
func (s *ScheduleService) Deactivate(ctx context.Context, merchantID, id string) validation.Result[*models.AutoIssuanceSchedule] {
	return s.transition(ctx, merchantID, id, recurrence.Deactivate, "Schedule deactivated.")
}

func (s *ScheduleService) transition(ctx context.Context, merchantID, id string, fn func(*models.AutoIssuanceSchedule) recurrence.State, msg string) validation.Result[*models.AutoIssuanceSchedule] {
	if _, err := active[models.AutoIssuanceSchedule](ctx, s.repos.Schedules, models.EntitySchedule, merchantID, id); err != nil {
		return failure[*models.AutoIssuanceSchedule](s.log, err)
	}
	var state recurrence.State
	sc, err := s.repos.Schedules.Update(ctx, id, func(sc *models.AutoIssuanceSchedule) { state = fn(sc) })
	if err != nil {
		return failure[*models.AutoIssuanceSchedule](s.log, err)
	}
	s.log.Info().Str("schedule_id", id).Str("state", string(state)).Msg("schedule state changed")
	return validation.OK(sc, msg)
}

// RunDue issues one draft invoice for every due schedule of every active merchant and
// advances the schedule. A schedule that is several periods behind catches up one period
// per run.
func (s *ScheduleService) RunDue(ctx context.Context) validation.Result[*RunReport] {
	now := s.now()
	report := &RunReport{RunAt: now, Issued: []string{}}

	merchants, err := s.repos.Merchants.List(ctx)
	if err != nil {
		return failure[*RunReport](s.log, err)
	}
	for _, m := range merchants {
		if !m.IsActive() {
			continue
		}
		schedules, err := s.repos.Schedules.ListByMerchant(ctx, m.ID)
		if err != nil {
			return failure[*RunReport](s.log, err)
		}
		for _, sc := range schedules {
			if sc.Enabled && recurrence.Expired(sc, now) {
				if err := s.expire(ctx, sc); err != nil {
					report.Failures = append(report.Failures, sc.ID+": "+err.Error())
				}
				report.Skipped++
				continue
			}
			if !recurrence.Due(sc, now) {
				report.Skipped++
				continue
			}
			doc, err := s.issue(ctx, m, sc, now)
			if err != nil {
				s.log.Warn().Err(err).Str("schedule_id", sc.ID).Msg("schedule issuance failed")
				report.Failures = append(report.Failures, sc.ID+": "+err.Error())
				continue
			}
			report.Issued = append(report.Issued, doc.ID)
		}
	}
	s.log.Info().Int("issued", len(report.Issued)).Int("skipped", report.Skipped).Int("failed", len(report.Failures)).Msg("schedule run finished")
	return validation.OK(report, "Schedules processed.")
}

// expire deactivates a schedule whose end date has passed.
func (s *ScheduleService) expire(ctx context.Context, sc *models.AutoIssuanceSchedule) error {
	if _, err := s.repos.Schedules.Update(ctx, sc.ID, func(cur *models.AutoIssuanceSchedule) { recurrence.Deactivate(cur) }); err != nil {
		s.log.Warn().Err(err).Str("schedule_id", sc.ID).Msg("schedule expiry failed")
		return err
	}
	s.log.Info().Str("schedule_id", sc.ID).Msg("schedule expired")
	return nil
}

func (s *ScheduleService) issue(ctx context.Context, m *models.Merchant, sc *models.AutoIssuanceSchedule, now time.Time) (*models.Document, error) {
	tpl, err := active[models.Document](ctx, s.invoices.docs, "invoice", m.ID, sc.TemplateID)
	if err != nil {
		return nil, err
	}
	doc := derive(tpl, models.KindInvoice, sc.ClientID, sc.NextIssuanceDate)
	billing.Recompute(doc, s.invoices.taxes)
	created, err := s.invoices.insert(ctx, m, doc)
	if err != nil {
		return nil, err
	}
	_, err = s.repos.Schedules.Update(ctx, sc.ID, func(cur *models.AutoIssuanceSchedule) {
		if _, advErr := recurrence.Advance(cur, now); advErr == nil {
			issued := now
			cur.LastIssuedAt = &issued
		}
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
