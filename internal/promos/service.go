package promos

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/angelmondragon/tillpoint/pkg/config"
	"github.com/angelmondragon/tillpoint/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/angelmondragon/tillpoint/pkg/logger"
	"github.com/angelmondragon/tillpoint/pkg/metrics"
	pkgpagination "github.com/angelmondragon/tillpoint/pkg/pagination"
	"github.com/google/uuid"
)

type promoRepository interface {
	ActivePromos(ctx context.Context, tenantID uuid.UUID, at time.Time) ([]models.Promo, error)
	List(ctx context.Context, opts listQuery) ([]models.Promo, error)
}

// Service prices carts and exposes the promo catalog of a tenant.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Export(ctx context.Context, tenantID uuid.UUID, w io.Writer) error
}

// QuoteInput is a cart snapshot to price.
type QuoteInput struct {
	TenantID uuid.UUID
	Lines    []CartLine
}

// Quote is a priced cart.
type Quote struct {
	PricingResult
	Currency     string      `json:"currency"`
	EvaluatedAt  time.Time   `json:"evaluated_at"`
	SkippedRules []RuleIssue `json:"skipped_rules,omitempty"`
	// PromosUnavailable is set when the rules could not be loaded and the
	// cart was priced without discounts.
	PromosUnavailable bool `json:"promos_unavailable,omitempty"`
}

// ServiceParams groups the service dependencies.
type ServiceParams struct {
	Repo    promoRepository
	Metrics *metrics.PricingMetrics
	Logger  *logger.Logger
	Config  config.PricingConfig
	Now     func() time.Time
}

type service struct {
	repo    promoRepository
	metrics *metrics.PricingMetrics
	logg    *logger.Logger
	cfg     config.PricingConfig
	now     func() time.Time
}

// NewService builds the promo service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("promo repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.Repo,
		metrics: params.Metrics,
		logg:    params.Logger,
		cfg:     params.Config,
		now:     now,
	}, nil
}

func (s *service) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	started := time.Now()
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart has no lines")
	}
	if s.cfg.MaxCartLines > 0 && len(input.Lines) > s.cfg.MaxCartLines {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart has too many lines").
			WithDetails(map[string]any{"max_lines": s.cfg.MaxCartLines, "lines": len(input.Lines)})
	}

	at := s.now().UTC()
	unavailable := false
	set, skipped, err := s.ruleSet(ctx, input.TenantID, at)
	if err != nil {
		// a checkout never blocks on promotions; price at list price instead
		s.logg.Error(s.logg.WithTenantID(ctx, input.TenantID.String()), "promos.rules_unavailable", err)
		set, skipped, unavailable = RuleSet{}, nil, true
	}

	result := Evaluate(input.Lines, set)
	for _, issue := range result.Issues {
		s.logg.Warnf(ctx, "promos.line_invalid", map[string]any{
			"tenant_id":  input.TenantID.String(),
			"line_index": issue.Index,
			"reason":     issue.Message,
		})
	}
	for level, n := range result.AppliedCounts() {
		s.metrics.AddApplied(string(level), n)
	}
	outcome := "ok"
	switch {
	case unavailable:
		outcome = "degraded"
	case len(result.Issues) > 0:
		outcome = "partial"
	}
	s.metrics.ObserveQuote(outcome, time.Since(started))

	return &Quote{
		PricingResult: result,
		Currency:      s.cfg.Currency,
		EvaluatedAt:   at,
		SkippedRules:  skipped,

		PromosUnavailable: unavailable,
	}, nil
}

// ruleSet loads the rules active at at. Dropped rules are logged and returned
// alongside the usable set.
func (s *service) ruleSet(ctx context.Context, tenantID uuid.UUID, at time.Time) (RuleSet, []RuleIssue, error) {
	promos, err := s.repo.ActivePromos(ctx, tenantID, at)
	if err != nil {
		return RuleSet{}, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active promos")
	}
	active := promos[:0:0]
	for _, p := range promos {
		if p.ActiveAt(at) {
			active = append(active, p)
		}
	}

	set, buildErr := BuildRuleSet(active)
	skipped := RuleIssues(buildErr)
	for _, issue := range skipped {
		s.metrics.IncSkipped(string(issue.Level))
		s.logg.Warnf(ctx, "promos.rule_skipped", map[string]any{
			"tenant_id": tenantID.String(),
			"promo_id":  issue.PromoID.String(),
			"rule_id":   issue.RuleID.String(),
			"level":     string(issue.Level),
			"reason":    issue.Reason,
		})
	}
	return set, skipped, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}

	query := listQuery{
		tenantID: params.TenantID,
		limit:    pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promos")
	}

	rows, nextCursor := pkgpagination.Trim(rows, params.Limit, func(p models.Promo) pkgpagination.Cursor {
		return pkgpagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})

	items := make([]ListItem, len(rows))
	for i, row := range rows {
		items[i] = toListItem(row)
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func (s *service) Export(ctx context.Context, tenantID uuid.UUID, w io.Writer) error {
	if tenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	set, _, err := s.ruleSet(ctx, tenantID, s.now().UTC())
	if err != nil {
		return err
	}
	if err := WriteWorkbook(w, set); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write promo workbook")
	}
	return nil
}
