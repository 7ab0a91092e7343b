package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/jask/jaskbooks/internal/database/repository"
	"github.com/jask/jaskbooks/internal/logger"
)

// Deduper flags likely duplicate entries among unconfirmed transactions.
// Confirmed rows are never touched: once a transaction is in the books it
// stays there.
type Deduper struct {
	Transactions *repository.TransactionRepo
}

// DuplicatePair is a candidate duplicate. Keep is always the older entry.
type DuplicatePair struct {
	Keep       repository.Transaction
	Drop       repository.Transaction
	Similarity float64
	Exact      bool
}

// Scan runs the 2-stage detection over the user's unconfirmed transactions.
func (d *Deduper) Scan(ctx context.Context, userID string) ([]DuplicatePair, error) {
	confirmed := false
	txs, err := d.Transactions.List(ctx, userID, repository.TransactionFilters{Confirmed: &confirmed})
	if err != nil {
		return nil, err
	}
	var pairs []DuplicatePair
	for i := 0; i < len(txs); i++ {
		for j := i + 1; j < len(txs); j++ {
			a, b := txs[i], txs[j]
			// Stage1 exact
			if matchExact(a, b) {
				keep, drop := chooseKeep(a, b)
				pairs = append(pairs, DuplicatePair{Keep: keep, Drop: drop, Similarity: 1, Exact: true})
				continue
			}
			// Stage2 fuzzy
			sim, ok := matchFuzzy(a, b)
			if !ok {
				continue
			}
			keep, drop := chooseKeep(a, b)
			pairs = append(pairs, DuplicatePair{Keep: keep, Drop: drop, Similarity: sim})
		}
	}
	return pairs, nil
}

// Merge removes the newer unconfirmed entry of a confirmed pair. Refuses to
// touch anything already confirmed.
func (d *Deduper) Merge(ctx context.Context, userID string, pair DuplicatePair) error {
	drop, err := d.Transactions.Get(ctx, userID, pair.Drop.ID)
	if err != nil {
		return err
	}
	if drop == nil {
		return ErrNotFound
	}
	if drop.Confirmed {
		return ErrConfirmedImmutable
	}
	if err := d.Transactions.Delete(ctx, userID, drop.ID); err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("kept", pair.Keep.ID).
		Str("dropped", drop.ID).
		Float64("similarity", pair.Similarity).
		Msg("duplicate merged")
	return nil
}

func matchExact(a, b repository.Transaction) bool {
	return a.AmountCents == b.AmountCents &&
		a.Direction == b.Direction &&
		a.Date.Equal(b.Date) &&
		strings.EqualFold(strings.TrimSpace(a.Description), strings.TrimSpace(b.Description))
}

func matchFuzzy(a, b repository.Transaction) (float64, bool) {
	if a.AmountCents != b.AmountCents || a.Direction != b.Direction {
		return 0, false
	}
	if daysApart(a.Date, b.Date) > 3 {
		return 0, false
	}
	sim := similarity(a.Description, b.Description)
	return sim, sim >= 0.85
}

func similarity(a, b string) float64 {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	maxlen := len(a)
	if len(b) > maxlen {
		maxlen = len(b)
	}
	if maxlen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxlen)
}

func daysApart(a, b time.Time) int {
	return int(math.Abs(a.Sub(b).Hours()) / 24)
}

// chooseKeep keeps the earlier entry; ties break on creation time.
func chooseKeep(a, b repository.Transaction) (keep, drop repository.Transaction) {
	if b.Date.Before(a.Date) {
		return b, a
	}
	if a.Date.Equal(b.Date) && b.CreatedAt.Before(a.CreatedAt) {
		return b, a
	}
	return a, b
}
