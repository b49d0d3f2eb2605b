package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/onlyhub/internal/models"
	"github.com/urfave/cli/v3"
)

// PromoGet prints one promo card, or both when no slot is given.
func (r *Runner) PromoGet(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	cards := map[models.Slot]models.PromoCard{}
	if arg := cmd.StringArg("slot"); arg != "" {
		slot, err := models.ParseSlot(arg)
		if err != nil {
			return err
		}
		card, err := r.catalog.Promos.Get(ctx, slot)
		if err != nil {
			return err
		}
		cards[slot] = card
	} else {
		all, err := r.catalog.Promos.All(ctx)
		if err != nil {
			return err
		}
		cards = all
	}

	if cmd.Bool("json") {
		return r.writeJSON(cards, cmd.Bool("pretty"))
	}

	for _, slot := range models.Slots {
		card, ok := cards[slot]
		if !ok {
			continue
		}
		r.writePlainHeader(fmt.Sprintf("%s promo", slot))
		status := "hidden"
		if card.IsActive {
			status = "active"
		}
		r.writePlain("Status:      %s\n", status)
		r.writePlain("Title:       %s\n", card.Title)
		r.writePlain("Description: %s\n", card.Description)
		r.writePlain("Button:      %s -> %s\n", card.ButtonText, card.ButtonLink)
	}
	return nil
}

// PromoSave overwrites a promo card. Flags left unset keep the stored value.
func (r *Runner) PromoSave(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}

	slot, err := models.ParseSlot(cmd.StringArg("slot"))
	if err != nil {
		return err
	}

	card, err := r.catalog.Promos.Get(ctx, slot)
	if err != nil {
		return err
	}
	if cmd.IsSet("title") {
		card.Title = cmd.String("title")
	}
	if cmd.IsSet("description") {
		card.Description = cmd.String("description")
	}
	if cmd.IsSet("button-text") {
		card.ButtonText = cmd.String("button-text")
	}
	if cmd.IsSet("button-link") {
		card.ButtonLink = cmd.String("button-link")
	}
	if cmd.IsSet("active") {
		card.IsActive = cmd.Bool("active")
	}

	result, err := r.catalog.Promos.Save(ctx, slot, card)
	if err != nil {
		return err
	}
	return r.reportSync(fmt.Sprintf("%s promo", slot), result)
}
