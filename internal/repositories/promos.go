package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/onlyhub/internal/models"
	"github.com/desertthunder/onlyhub/internal/services"
	"github.com/desertthunder/onlyhub/internal/shared"
)

// Promos stores the promo card of each slot as a single row keyed by the slot name.
type Promos struct {
	local  *LocalStore
	remote Tables
	logger *log.Logger
	now    func() time.Time
}

// NewPromos creates the promo card repository. Remote may be nil.
func NewPromos(local *LocalStore, remote Tables, logger *log.Logger) *Promos {
	if logger == nil {
		logger = shared.NopLogger()
	}
	if isNil(remote) {
		remote = nil
	}
	return &Promos{
		local:  local,
		remote: remote,
		logger: shared.WithLogger(logger, "table", TablePromos),
		now:    time.Now,
	}
}

func slotKey(slot models.Slot) (Key, error) {
	switch slot {
	case models.SlotTop:
		return KeyTopPromo, nil
	case models.SlotBottom:
		return KeyBottomPromo, nil
	default:
		return "", fmt.Errorf("%w: unknown promo slot %q", shared.ErrValidation, slot)
	}
}

// Get returns the card of slot, preferring the remote row and falling back to the mirror.
// A slot with no stored card yields the empty inactive card.
func (p *Promos) Get(ctx context.Context, slot models.Slot) (models.PromoCard, error) {
	key, err := slotKey(slot)
	if err != nil {
		return models.PromoCard{}, err
	}

	if p.remote != nil {
		var row promoRow
		q := services.Query{Filters: []services.Filter{services.Eq("id", string(slot))}, Single: true}
		err := p.remote.Select(ctx, TablePromos, q, &row)
		if err == nil {
			return promoFromRow(row), nil
		}
		p.logger.Warn("remote read failed, using local mirror", "slot", slot, "error", err)
	}

	var card models.PromoCard
	if _, err := p.local.GetJSON(ctx, key, &card); err != nil {
		return models.PromoCard{}, err
	}
	return card, nil
}

// All returns the cards of every slot.
func (p *Promos) All(ctx context.Context) (map[models.Slot]models.PromoCard, error) {
	cards := make(map[models.Slot]models.PromoCard, len(models.Slots))
	for _, slot := range models.Slots {
		card, err := p.Get(ctx, slot)
		if err != nil {
			return nil, err
		}
		cards[slot] = card
	}
	return cards, nil
}

// Save writes the card of slot to the mirror, then upserts it remotely.
func (p *Promos) Save(ctx context.Context, slot models.Slot, card models.PromoCard) (SyncResult, error) {
	key, err := slotKey(slot)
	if err != nil {
		return SyncResult{}, err
	}

	if err := p.local.PutJSON(ctx, key, card); err != nil {
		return SyncResult{}, err
	}

	if p.remote == nil {
		return unsynced(shared.ErrBackendNotConfigured), nil
	}

	if err := p.remote.Upsert(ctx, TablePromos, []promoRow{promoToRow(slot, card, p.now())}, "id"); err != nil {
		p.logger.Warn("remote sync failed, saved locally only", "slot", slot, "error", err)
		return unsynced(fmt.Errorf("failed to upsert promo %s: %w", slot, err)), nil
	}
	return synced(), nil
}
