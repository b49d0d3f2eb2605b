package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/onlyhub/internal/models"
	"github.com/desertthunder/onlyhub/internal/repositories"
	"github.com/desertthunder/onlyhub/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSnapshot MsgKind = iota
	MsgBanners
	MsgVideos
	MsgNotices
	MsgPromos
	MsgActivity
)

type snapshotResult struct {
	snapshot repositories.Snapshot
	err      error
}

// SnapshotMsg is the constructor for [MsgSnapshot]
func SnapshotMsg(snapshot repositories.Snapshot, err error) Msg {
	return Msg{kind: MsgSnapshot, data: snapshotResult{snapshot, err}}
}

// BannersMsg is the constructor for [MsgBanners]
func BannersMsg(items []models.Banner) Msg {
	return Msg{kind: MsgBanners, data: items}
}

// VideosMsg is the constructor for [MsgVideos]
func VideosMsg(items []models.VideoCard) Msg {
	return Msg{kind: MsgVideos, data: items}
}

// NoticesMsg is the constructor for [MsgNotices]
func NoticesMsg(items []models.Notice) Msg {
	return Msg{kind: MsgNotices, data: items}
}

// PromosMsg is the constructor for [MsgPromos]
func PromosMsg(cards map[models.Slot]models.PromoCard) Msg {
	return Msg{kind: MsgPromos, data: cards}
}

// ActivityMsg is the constructor for [MsgActivity]
func ActivityMsg(update tasks.Update) Msg {
	return Msg{kind: MsgActivity, data: update}
}
