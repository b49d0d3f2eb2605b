package models

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/desertthunder/onlyhub/internal/shared"
)

// Entity is implemented by the value types stored in ordered collections.
type Entity[T any] interface {
	Identifier() string           // Identifier returns the UUID of the entity
	WithIdentifier(id string) T   // WithIdentifier returns a copy carrying id
	WithSortOrder(position int) T // WithSortOrder returns a normalized copy at the given position
	MediaURLs() []string          // MediaURLs lists storage URLs referenced by the entity
	Validate() error              // Validate reports whether the entity can be persisted
}

// MediaType tags the media a banner shows.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

const (
	MaxBannerImages = 5
	MaxVideoPreview = 3

	DefaultBannerButtonText   = "Saiba Mais"
	DefaultVideoTitle         = "Premium Video"
	DefaultBuyButtonText      = "BUY ALL PACK"
	DefaultTelegramButtonText = "DM TELEGRAM"

	// NoticeDateLayout is the dd/mm/yyyy layout used for notice dates.
	NoticeDateLayout = "02/01/2006"
)

// Banner is one slide of the hero carousel.
type Banner struct {
	ID         string    `json:"id"`
	Images     []string  `json:"images"`
	Link       string    `json:"link"`
	ButtonText string    `json:"buttonText"`
	Type       MediaType `json:"type"`
	SortOrder  int       `json:"sortOrder"`
}

// NewBanner builds a banner with the admin form defaults and a fresh identifier.
func NewBanner(link string, images ...string) Banner {
	return Banner{
		ID:         shared.GenerateID(),
		Images:     CleanURLs(images),
		Link:       link,
		ButtonText: DefaultBannerButtonText,
		Type:       MediaImage,
	}
}

func (b Banner) Identifier() string { return b.ID }

func (b Banner) WithIdentifier(id string) Banner {
	b.ID = id
	return b
}

// WithSortOrder also drops blank image slots so they never reach storage.
func (b Banner) WithSortOrder(position int) Banner {
	b.SortOrder = position
	b.Images = CleanURLs(b.Images)
	return b
}

func (b Banner) MediaURLs() []string { return CleanURLs(b.Images) }

// PrimaryImage returns the first non-empty media URL.
func (b Banner) PrimaryImage() string {
	if urls := b.MediaURLs(); len(urls) > 0 {
		return urls[0]
	}
	return ""
}

func (b Banner) Validate() error {
	b.Images = CleanURLs(b.Images)
	err := validation.ValidateStruct(&b,
		validation.Field(&b.ID, validation.Required, is.UUID),
		validation.Field(&b.Images, validation.Length(0, MaxBannerImages), validation.By(atLeastOneURL)),
		validation.Field(&b.Type, validation.In(MediaImage, MediaVideo)),
	)
	return invalid("banner", err)
}

// VideoCard is one purchasable video pack.
type VideoCard struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	CoverURL           string   `json:"coverUrl"`
	Previews           []string `json:"previews"`
	BuyLink            string   `json:"buyLink"`
	BuyButtonText      string   `json:"buyButtonText"`
	TelegramLink       string   `json:"telegramLink"`
	TelegramButtonText string   `json:"telegramButtonText"`
	SortOrder          int      `json:"sortOrder"`
}

// NewVideoCard builds a video card with the admin form defaults and a fresh identifier.
func NewVideoCard(cover string, previews ...string) VideoCard {
	return VideoCard{
		ID:                 shared.GenerateID(),
		Title:              DefaultVideoTitle,
		CoverURL:           strings.TrimSpace(cover),
		Previews:           CleanURLs(previews),
		BuyButtonText:      DefaultBuyButtonText,
		TelegramButtonText: DefaultTelegramButtonText,
	}
}

func (v VideoCard) Identifier() string { return v.ID }

func (v VideoCard) WithIdentifier(id string) VideoCard {
	v.ID = id
	return v
}

func (v VideoCard) WithSortOrder(position int) VideoCard {
	v.SortOrder = position
	v.Previews = CleanURLs(v.Previews)
	return v
}

func (v VideoCard) MediaURLs() []string {
	return CleanURLs(append([]string{v.CoverURL}, v.Previews...))
}

func (v VideoCard) Validate() error {
	v.Previews = CleanURLs(v.Previews)
	err := validation.ValidateStruct(&v,
		validation.Field(&v.ID, validation.Required, is.UUID),
		validation.Field(&v.CoverURL, validation.Required.Error("cover is required")),
		validation.Field(&v.Previews, validation.Length(0, MaxVideoPreview)),
	)
	return invalid("video", err)
}

// Notice is a dated announcement.
type Notice struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Date      string `json:"date"`
	SortOrder int    `json:"sortOrder"`
}

// NewNotice builds a notice dated today with a fresh identifier.
func NewNotice(title, content string) Notice {
	return Notice{
		ID:      shared.GenerateID(),
		Title:   title,
		Content: content,
		Date:    time.Now().Format(NoticeDateLayout),
	}
}

func (n Notice) Identifier() string { return n.ID }

func (n Notice) WithIdentifier(id string) Notice {
	n.ID = id
	return n
}

func (n Notice) WithSortOrder(position int) Notice {
	n.SortOrder = position
	return n
}

// MediaURLs is always empty; notices carry no media.
func (n Notice) MediaURLs() []string { return nil }

func (n Notice) Validate() error {
	err := validation.ValidateStruct(&n,
		validation.Field(&n.ID, validation.Required, is.UUID),
		validation.Field(&n.Title, validation.Required),
		validation.Field(&n.Content, validation.Required),
	)
	return invalid("notice", err)
}

// Slot names one of the two promo card positions.
type Slot string

const (
	SlotTop    Slot = "top"
	SlotBottom Slot = "bottom"
)

// Slots lists the known promo slots in display order.
var Slots = []Slot{SlotTop, SlotBottom}

// ParseSlot validates a slot name.
func ParseSlot(s string) (Slot, error) {
	switch slot := Slot(strings.ToLower(strings.TrimSpace(s))); slot {
	case SlotTop, SlotBottom:
		return slot, nil
	default:
		return "", fmt.Errorf("%w: unknown promo slot %q", shared.ErrValidation, s)
	}
}

// PromoCard is the singleton promotional card shown in a slot.
type PromoCard struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ButtonText  string `json:"buttonText"`
	ButtonLink  string `json:"buttonLink"`
	IsActive    bool   `json:"isActive"`
}

// AdminUser is the identity behind an authenticated admin session.
type AdminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CleanURLs trims every URL and drops the empty ones.
func CleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func atLeastOneURL(value any) error {
	urls, _ := value.([]string)
	if len(CleanURLs(urls)) == 0 {
		return validation.NewError("validation_media_required", "at least one media URL is required")
	}
	return nil
}

func invalid(kind string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", shared.ErrValidation, kind, err)
}
