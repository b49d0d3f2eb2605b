package repositories

import (
	"context"
	"time"

	"github.com/desertthunder/onlyhub/internal/models"
	"github.com/desertthunder/onlyhub/internal/services"
)

// Remote tables and their snake_case row shapes.
const (
	TableBanners = "banners"
	TableVideos  = "videos"
	TableNotices = "notices"
	TablePromos  = "promos"
)

const orderBySortOrder = "sort_order.asc"

// codec binds an entity type to its remote table, row shape and mirror key.
type codec[T any] struct {
	table string
	key   Key
	fetch func(ctx context.Context, remote Tables, filters ...services.Filter) ([]T, error)
	rows  func(items []T, now time.Time) any
}

func newCodec[T any, R any](table string, key Key, toRow func(T, time.Time) R, fromRow func(R) T) codec[T] {
	return codec[T]{
		table: table,
		key:   key,
		fetch: func(ctx context.Context, remote Tables, filters ...services.Filter) ([]T, error) {
			var rows []R
			q := services.Query{Filters: filters, Order: orderBySortOrder}
			if err := remote.Select(ctx, table, q, &rows); err != nil {
				return nil, err
			}
			items := make([]T, len(rows))
			for i, row := range rows {
				items[i] = fromRow(row)
			}
			return items, nil
		},
		rows: func(items []T, now time.Time) any {
			rows := make([]R, len(items))
			for i, item := range items {
				rows[i] = toRow(item, now)
			}
			return rows
		},
	}
}

func timestamp(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

// bannerRow keeps image_url populated with the first image for readers that predate the images column.
type bannerRow struct {
	ID         string   `json:"id"`
	Images     []string `json:"images"`
	ImageURL   string   `json:"image_url"`
	Link       string   `json:"link"`
	ButtonText string   `json:"button_text"`
	Type       string   `json:"type"`
	SortOrder  int      `json:"sort_order"`
	UpdatedAt  string   `json:"updated_at,omitempty"`
}

func bannerToRow(b models.Banner, now time.Time) bannerRow {
	kind := string(b.Type)
	if kind == "" {
		kind = string(models.MediaImage)
	}
	return bannerRow{
		ID:         b.ID,
		Images:     b.MediaURLs(),
		ImageURL:   b.PrimaryImage(),
		Link:       b.Link,
		ButtonText: b.ButtonText,
		Type:       kind,
		SortOrder:  b.SortOrder,
		UpdatedAt:  timestamp(now),
	}
}

func bannerFromRow(r bannerRow) models.Banner {
	images := models.CleanURLs(r.Images)
	if len(images) == 0 && r.ImageURL != "" {
		images = []string{r.ImageURL}
	}
	kind := models.MediaType(r.Type)
	if kind == "" {
		kind = models.MediaImage
	}
	return models.Banner{
		ID:         r.ID,
		Images:     images,
		Link:       r.Link,
		ButtonText: r.ButtonText,
		Type:       kind,
		SortOrder:  r.SortOrder,
	}
}

type videoRow struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	CoverURL           string   `json:"cover_url"`
	Previews           []string `json:"previews"`
	BuyLink            string   `json:"buy_link"`
	BuyButtonText      string   `json:"buy_button_text"`
	TelegramLink       string   `json:"telegram_link"`
	TelegramButtonText string   `json:"telegram_button_text"`
	SortOrder          int      `json:"sort_order"`
	UpdatedAt          string   `json:"updated_at,omitempty"`
}

func videoToRow(v models.VideoCard, now time.Time) videoRow {
	return videoRow{
		ID:                 v.ID,
		Title:              v.Title,
		CoverURL:           v.CoverURL,
		Previews:           models.CleanURLs(v.Previews),
		BuyLink:            v.BuyLink,
		BuyButtonText:      v.BuyButtonText,
		TelegramLink:       v.TelegramLink,
		TelegramButtonText: v.TelegramButtonText,
		SortOrder:          v.SortOrder,
		UpdatedAt:          timestamp(now),
	}
}

func videoFromRow(r videoRow) models.VideoCard {
	previews := r.Previews
	if previews == nil {
		previews = []string{}
	}
	return models.VideoCard{
		ID:                 r.ID,
		Title:              r.Title,
		CoverURL:           r.CoverURL,
		Previews:           previews,
		BuyLink:            r.BuyLink,
		BuyButtonText:      r.BuyButtonText,
		TelegramLink:       r.TelegramLink,
		TelegramButtonText: r.TelegramButtonText,
		SortOrder:          r.SortOrder,
	}
}

type noticeRow struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Date      string `json:"date"`
	SortOrder int    `json:"sort_order"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func noticeToRow(n models.Notice, now time.Time) noticeRow {
	return noticeRow{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Date:      n.Date,
		SortOrder: n.SortOrder,
		UpdatedAt: timestamp(now),
	}
}

func noticeFromRow(r noticeRow) models.Notice {
	return models.Notice{ID: r.ID, Title: r.Title, Content: r.Content, Date: r.Date, SortOrder: r.SortOrder}
}

type promoRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ButtonText  string `json:"button_text"`
	ButtonLink  string `json:"button_link"`
	IsActive    bool   `json:"is_active"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func promoToRow(slot models.Slot, p models.PromoCard, now time.Time) promoRow {
	return promoRow{
		ID:          string(slot),
		Title:       p.Title,
		Description: p.Description,
		ButtonText:  p.ButtonText,
		ButtonLink:  p.ButtonLink,
		IsActive:    p.IsActive,
		UpdatedAt:   timestamp(now),
	}
}

func promoFromRow(r promoRow) models.PromoCard {
	return models.PromoCard{
		Title:       r.Title,
		Description: r.Description,
		ButtonText:  r.ButtonText,
		ButtonLink:  r.ButtonLink,
		IsActive:    r.IsActive,
	}
}

var (
	bannerCodec = newCodec(TableBanners, KeyBanners, bannerToRow, bannerFromRow)
	videoCodec  = newCodec(TableVideos, KeyVideos, videoToRow, videoFromRow)
	noticeCodec = newCodec(TableNotices, KeyNotices, noticeToRow, noticeFromRow)
)
