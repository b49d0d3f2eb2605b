package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/onlyhub/internal/models"
)

var (
	_ list.Item = bannerItem{}
	_ list.Item = videoItem{}
	_ list.Item = noticeItem{}
	_ list.Item = promoItem{}
)

// bannerItem wraps [models.Banner] to implement [list.Item].
type bannerItem struct {
	banner models.Banner
}

func (i bannerItem) FilterValue() string { return i.banner.Link }
func (i bannerItem) Title() string {
	if i.banner.ButtonText != "" {
		return fmt.Sprintf("%d. %s", i.banner.SortOrder+1, i.banner.ButtonText)
	}
	return fmt.Sprintf("%d. %s banner", i.banner.SortOrder+1, i.banner.Type)
}
func (i bannerItem) Description() string {
	desc := fmt.Sprintf("%d %s", len(i.banner.Images), plural(len(i.banner.Images), "image", "images"))
	if i.banner.Link != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.banner.Link)
	}
	return desc
}

// videoItem wraps [models.VideoCard] to implement [list.Item].
type videoItem struct {
	video models.VideoCard
}

func (i videoItem) FilterValue() string { return i.video.Title }
func (i videoItem) Title() string {
	if i.video.Title == "" {
		return "(untitled)"
	}
	return i.video.Title
}
func (i videoItem) Description() string {
	desc := fmt.Sprintf("%d %s", len(i.video.Previews), plural(len(i.video.Previews), "preview", "previews"))
	if i.video.BuyLink != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.video.BuyLink)
	}
	return desc
}

// noticeItem wraps [models.Notice] to implement [list.Item].
type noticeItem struct {
	notice models.Notice
}

func (i noticeItem) FilterValue() string { return i.notice.Title }
func (i noticeItem) Title() string       { return i.notice.Title }
func (i noticeItem) Description() string {
	content := strings.Join(strings.Fields(i.notice.Content), " ")
	if i.notice.Date != "" {
		return fmt.Sprintf("%s • %s", i.notice.Date, content)
	}
	return content
}

// promoItem wraps a slot's [models.PromoCard] to implement [list.Item].
type promoItem struct {
	slot models.Slot
	card models.PromoCard
}

func (i promoItem) FilterValue() string { return string(i.slot) }
func (i promoItem) Title() string {
	state := "inactive"
	if i.card.IsActive {
		state = "active"
	}
	title := i.card.Title
	if title == "" {
		title = "(empty)"
	}
	return fmt.Sprintf("[%s] %s (%s)", i.slot, title, state)
}
func (i promoItem) Description() string {
	if i.card.ButtonLink == "" {
		return i.card.Description
	}
	return fmt.Sprintf("%s • %s", i.card.Description, i.card.ButtonLink)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
