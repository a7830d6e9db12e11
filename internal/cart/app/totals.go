package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"golang.org/x/sync/errgroup"
)

const defaultResolveConcurrency = 8

// Totals is derived from the cart on every read and never stored.
type Totals struct {
	Lines    int
	Units    int
	Currency string
	Amount   int64

	// Missing lists lines left out of Amount because their product could
	// not be resolved or is priced in another currency.
	Missing []domain.Key
}

// Totals prices the current cart through resolver. Lines whose product
// cannot be resolved count as zero value and are reported in Missing.
// The only error returned is ctx's.
func (s *Store) Totals(ctx context.Context, resolver ProductResolver) (Totals, error) {
	state := s.Snapshot()
	return ComputeTotals(ctx, state, resolver, s.log)
}

func ComputeTotals(ctx context.Context, state domain.CartState, resolver ProductResolver, log *slog.Logger) (Totals, error) {
	if log == nil {
		log = slog.Default()
	}

	out := Totals{
		Lines: state.LineCount(),
		Units: state.UnitCount(),
	}
	if state.IsEmpty() || resolver == nil {
		for _, ln := range state.Lines {
			out.Missing = append(out.Missing, ln.Key)
		}
		return out, nil
	}

	// One lookup per product, not per line: variants share a price.
	ids := make([]string, 0, len(state.Lines))
	index := make(map[string]int, len(state.Lines))
	for _, ln := range state.Lines {
		if _, ok := index[ln.ProductID]; ok {
			continue
		}
		index[ln.ProductID] = len(ids)
		ids = append(ids, ln.ProductID)
	}

	products := make([]*Product, len(ids))
	var g errgroup.Group
	g.SetLimit(defaultResolveConcurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			p, err := resolver.Resolve(ctx, id)
			if err != nil {
				if !errors.Is(err, ErrProductNotFound) && ctx.Err() == nil {
					log.Warn("product resolve failed", slog.String("product_id", id), slog.Any("err", err))
				}
				return nil
			}
			products[i] = &p
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Totals{}, err
	}

	for _, ln := range state.Lines {
		p := products[index[ln.ProductID]]
		if p == nil {
			out.Missing = append(out.Missing, ln.Key)
			continue
		}
		if out.Currency == "" {
			out.Currency = p.UnitPrice.Currency
		}
		if p.UnitPrice.Currency != out.Currency {
			out.Missing = append(out.Missing, ln.Key)
			continue
		}
		out.Amount += p.UnitPrice.Amount * int64(ln.Quantity)
	}

	if len(out.Missing) > 0 {
		log.Warn("cart lines excluded from totals",
			slog.Int("count", len(out.Missing)),
			slog.Any("keys", out.Missing),
		)
	}
	return out, nil
}
