package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/player/internal/record"
	"github.com/mesh-intelligence/player/pkg/types"
)

// PropagationReport describes one fan-out.
type PropagationReport struct {
	// Visited counts the child classes and players examined.
	Visited int
	// Updated lists the records rewritten, in visit order.
	Updated []types.Key
	// Failed lists the records that could not be refreshed.
	Failed []types.Key
}

// Propagate refreshes every record that inherits from the class under key:
// child classes first, depth first, then players. Only records whose
// inherited values changed are written. Each record is refreshed on its own;
// a failure is recorded and the walk continues. The returned error joins
// every failure.
func (r *Registry) Propagate(ctx context.Context, key types.Key) (*PropagationReport, error) {
	tmpl, err := r.effectiveClass(ctx, key)
	if err != nil {
		return nil, err
	}
	report := &PropagationReport{}
	var errs []error
	r.fanOut(ctx, key, tmpl, map[types.Key]bool{key: true}, report, &errs)
	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}
	return report, nil
}

func (r *Registry) fanOut(ctx context.Context, key types.Key, tmpl *types.PlayerClass, seen map[types.Key]bool, report *PropagationReport, errs *[]error) {
	fail := func(k types.Key, err error) {
		r.logger.Error("propagation failed", "key", k, "class", key, "error", err)
		report.Failed = append(report.Failed, k)
		*errs = append(*errs, fmt.Errorf("refresh %s: %w", k, err))
	}

	classes, err := r.store.Dependents(ctx, key, types.KindClass)
	if err != nil {
		fail(key, err)
		return
	}
	for _, rec := range classes {
		if seen[rec.Key] {
			fail(rec.Key, types.ErrCyclicParent)
			continue
		}
		seen[rec.Key] = true
		report.Visited++
		child, err := record.DecodeClass(rec.Data)
		if err != nil {
			fail(rec.Key, err)
			continue
		}
		if child.Parent == nil || *child.Parent != key {
			fail(rec.Key, types.ErrParentMismatch)
			continue
		}
		if types.PropagateClass(tmpl, child) {
			if err := r.writeClass(ctx, rec.Key, child); err != nil {
				fail(rec.Key, err)
				continue
			}
			report.Updated = append(report.Updated, rec.Key)
		}
		r.fanOut(ctx, rec.Key, child.Effective(tmpl), seen, report, errs)
	}

	players, err := r.store.Dependents(ctx, key, types.KindPlayer)
	if err != nil {
		fail(key, err)
		return
	}
	for _, rec := range players {
		report.Visited++
		p, err := record.DecodePlayer(rec.Data)
		if err != nil {
			fail(rec.Key, err)
			continue
		}
		if p.Parent != key {
			fail(rec.Key, types.ErrParentMismatch)
			continue
		}
		if !types.Propagate(tmpl, p) {
			continue
		}
		if err := r.writePlayer(ctx, rec.Key, p); err != nil {
			fail(rec.Key, err)
			continue
		}
		report.Updated = append(report.Updated, rec.Key)
	}
}

// RefreshPlayer brings one player's cached inherited values up to date and
// reports whether it was rewritten.
func (r *Registry) RefreshPlayer(ctx context.Context, key types.Key) (bool, error) {
	p, err := r.loadPlayer(ctx, key)
	if err != nil {
		return false, err
	}
	tmpl, err := r.effectiveClass(ctx, p.Parent)
	if err != nil {
		return false, err
	}
	if !types.Propagate(tmpl, p) {
		return false, nil
	}
	if err := r.writePlayer(ctx, key, p); err != nil {
		return false, err
	}
	return true, nil
}
