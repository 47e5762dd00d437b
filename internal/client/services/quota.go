package services

import (
	"fmt"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
)

// QuotaError reports a gated feature whose monthly limit is used up.
type QuotaError struct {
	Feature models.Feature
	Plan    models.Plan
	Limit   int
	Used    int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s limit reached for %s plan (%d/%d)", e.Feature, e.Plan, e.Used, e.Limit)
}

func (e *QuotaError) Unwrap() error { return common.ErrQuotaExceeded }

// checkQuota fails when one more use of f would exceed the plan's limit.
func checkQuota(limits models.LimitTable, plan models.UserPlan, f models.Feature) error {
	limit := limits.For(plan.Plan).Limit(f)
	if limit == models.Unlimited {
		return nil
	}
	used := plan.FeaturesUsed.Used(f)
	if used >= limit {
		return &QuotaError{Feature: f, Plan: plan.Plan, Limit: limit, Used: used}
	}
	return nil
}
