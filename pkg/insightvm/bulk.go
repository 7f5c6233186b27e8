package insightvm

import (
	"context"
	"fmt"
)

// Plan describes a bulk mutation across an ordered set of target
// identifiers. Processing order is always the input order of Targets.
type Plan[ID comparable] struct {
	Targets         []ID
	DryRun          bool
	ContinueOnError bool
}

// Failure records one target that could not be mutated (or, under
// dry-run, described) together with why.
type Failure[ID comparable] struct {
	Target  ID
	Message string
	Err     error
}

// PreviewEntry is one dry-run preview record: the target plus whatever
// detail the describe function returned for it.
type PreviewEntry[ID comparable] struct {
	Target ID
	Detail any
}

// Result aggregates a bulk mutation's outcome. Partial failure is data,
// not an error: callers inspect the result to act on mixed outcomes.
type Result[ID comparable] struct {
	DryRun    bool
	Succeeded []ID
	Failed    []Failure[ID]
	Preview   []PreviewEntry[ID]
}

// SuccessCount returns the number of targets mutated, or that would be
// mutated under dry-run.
func (r *Result[ID]) SuccessCount() int {
	return len(r.Succeeded)
}

// FailureCount returns the number of failed targets.
func (r *Result[ID]) FailureCount() int {
	return len(r.Failed)
}

// MutateFunc applies the mutation to one target.
type MutateFunc[ID comparable] func(ctx context.Context, target ID) error

// DescribeFunc performs a read-only lookup of one target, used to build
// dry-run previews. Each call fetches fresh remote state; previews are
// never served from a snapshot or cache.
type DescribeFunc[ID comparable] func(ctx context.Context, target ID) (any, error)

// ExecutePlan runs a bulk mutation plan.
//
// Under dry-run, describe is invoked per target in input order to build
// preview entries and mutate is never called; targets whose describe call
// fails land in the failure list. With a nil describe, previews carry
// only the identifiers.
//
// Otherwise mutate is invoked per target in input order. A failing target
// is appended to the failure list; with ContinueOnError unset, processing
// stops there and untried targets appear in neither list. Mutations
// already applied are never rolled back — the remote API offers no
// multi-target transaction to build one on.
func ExecutePlan[ID comparable](ctx context.Context, plan Plan[ID], mutate MutateFunc[ID], describe DescribeFunc[ID]) (*Result[ID], error) {
	result := &Result[ID]{DryRun: plan.DryRun}

	if plan.DryRun {
		return previewPlan(ctx, plan, result, describe)
	}

	if mutate == nil {
		return nil, ErrMutateFuncRequired
	}

	for _, target := range plan.Targets {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("bulk mutation interrupted: %w", err)
		}

		err := mutate(ctx, target)
		if err != nil {
			result.Failed = append(result.Failed, Failure[ID]{
				Target:  target,
				Message: err.Error(),
				Err:     err,
			})

			if !plan.ContinueOnError {
				break
			}

			continue
		}

		result.Succeeded = append(result.Succeeded, target)
	}

	return result, nil
}

func previewPlan[ID comparable](ctx context.Context, plan Plan[ID], result *Result[ID], describe DescribeFunc[ID]) (*Result[ID], error) {
	for _, target := range plan.Targets {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("bulk preview interrupted: %w", err)
		}

		entry := PreviewEntry[ID]{Target: target}

		if describe != nil {
			detail, err := describe(ctx, target)
			if err != nil {
				result.Failed = append(result.Failed, Failure[ID]{
					Target:  target,
					Message: err.Error(),
					Err:     err,
				})

				continue
			}

			entry.Detail = detail
		}

		result.Preview = append(result.Preview, entry)
		result.Succeeded = append(result.Succeeded, target)
	}

	return result, nil
}
