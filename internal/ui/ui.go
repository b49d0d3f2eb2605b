package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/onlyhub/internal/models"
	"github.com/desertthunder/onlyhub/internal/repositories"
	"github.com/desertthunder/onlyhub/internal/tasks"
)

const maxActivity = 50

// Tab represents a dashboard tab.
type Tab int

const (
	BannersTab Tab = iota
	VideosTab
	NoticesTab
	PromosTab
	ActivityTab
)

var tabs = []Tab{BannersTab, VideosTab, NoticesTab, PromosTab, ActivityTab}

func (t Tab) String() string {
	switch t {
	case BannersTab:
		return "Banners"
	case VideosTab:
		return "Videos"
	case NoticesTab:
		return "Notices"
	case PromosTab:
		return "Promos"
	case ActivityTab:
		return "Activity"
	default:
		return ""
	}
}

// Loader reads the full catalog. [*repositories.Catalog] implements it.
type Loader interface {
	Snapshot(ctx context.Context) (repositories.Snapshot, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	loader   Loader
	online   bool
	tab      Tab
	width    int
	height   int
	lists    map[Tab]*list.Model
	activity []tasks.Update
	updated  time.Time
	loading  bool
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates the dashboard. Online selects the backend label shown in the status line.
func NewModel(ctx context.Context, loader Loader, online bool) *Model {
	m := &Model{
		ctx:    ctx,
		loader: loader,
		online: online,
		tab:    BannersTab,
		lists:  make(map[Tab]*list.Model, 4),
		help:   help.New(),
		keys:   newKeyMap(),
	}
	for _, tab := range tabs[:ActivityTab] {
		l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
		l.Title = tab.String()
		l.SetShowHelp(false)
		l.SetFilteringEnabled(false)
		l.DisableQuitKeybindings()
		m.lists[tab] = &l
	}
	return m
}

// Init loads the initial snapshot.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.loadSnapshot()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range m.lists {
			l.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		m.tab = (m.tab + 1) % Tab(len(tabs))
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.tab = (m.tab + Tab(len(tabs)) - 1) % Tab(len(tabs))
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.loading = true
		return m, m.loadSnapshot()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSnapshot:
		res := msg.data.(snapshotResult)
		m.loading = false
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.err = nil
		m.setBanners(res.snapshot.Banners)
		m.setVideos(res.snapshot.Videos)
		m.setNotices(res.snapshot.Notices)
		m.setPromos(res.snapshot.Promos)
	case MsgBanners:
		m.setBanners(msg.data.([]models.Banner))
	case MsgVideos:
		m.setVideos(msg.data.([]models.VideoCard))
	case MsgNotices:
		m.setNotices(msg.data.([]models.Notice))
	case MsgPromos:
		m.setPromos(msg.data.(map[models.Slot]models.PromoCard))
	case MsgActivity:
		m.activity = append([]tasks.Update{msg.data.(tasks.Update)}, m.activity...)
		if len(m.activity) > maxActivity {
			m.activity = m.activity[:maxActivity]
		}
		return m, nil
	}
	m.updated = time.Now()
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	l, ok := m.lists[m.tab]
	if !ok {
		return m, nil
	}
	updated, cmd := l.Update(msg)
	*l = updated
	return m, cmd
}

func (m *Model) setBanners(items []models.Banner) {
	listItems := make([]list.Item, len(items))
	for i, b := range items {
		listItems[i] = bannerItem{banner: b}
	}
	m.setItems(BannersTab, listItems)
}

func (m *Model) setVideos(items []models.VideoCard) {
	listItems := make([]list.Item, len(items))
	for i, v := range items {
		listItems[i] = videoItem{video: v}
	}
	m.setItems(VideosTab, listItems)
}

func (m *Model) setNotices(items []models.Notice) {
	listItems := make([]list.Item, len(items))
	for i, n := range items {
		listItems[i] = noticeItem{notice: n}
	}
	m.setItems(NoticesTab, listItems)
}

func (m *Model) setPromos(cards map[models.Slot]models.PromoCard) {
	listItems := make([]list.Item, 0, len(models.Slots))
	for _, slot := range models.Slots {
		listItems = append(listItems, promoItem{slot: slot, card: cards[slot]})
	}
	m.setItems(PromosTab, listItems)
}

func (m *Model) setItems(tab Tab, items []list.Item) {
	l := m.lists[tab]
	l.SetItems(items)
	l.Title = fmt.Sprintf("%s (%d)", tab, len(items))
}

func (m *Model) loadSnapshot() tea.Cmd {
	return func() tea.Msg {
		snapshot, err := m.loader.Snapshot(m.ctx)
		return SnapshotMsg(snapshot, err)
	}
}

// View renders the active tab between the tab bar and the status line.
func (m *Model) View() string {
	var body string
	if m.tab == ActivityTab {
		body = m.renderActivity()
	} else {
		body = m.lists[m.tab].View()
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s\n%s", m.renderTabs(), body, m.renderStatus(), m.help.View(m.keys))
}

func (m *Model) renderTabs() string {
	rendered := make([]string, len(tabs))
	for i, tab := range tabs {
		if tab == m.tab {
			rendered[i] = styles.tabActive.Render(tab.String())
		} else {
			rendered[i] = styles.tabIdle.Render(tab.String())
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) renderActivity() string {
	title := styles.title.Render("Activity")
	if len(m.activity) == 0 {
		return title + "\n" + styles.help.Render("No changes received yet")
	}

	lines := make([]string, len(m.activity))
	for i, u := range m.activity {
		line := fmt.Sprintf("%s  %s", u.At.Format(time.TimeOnly), u.Message())
		switch u.Phase {
		case tasks.Failed:
			line = styles.err.Render(line)
		case tasks.Refreshed, tasks.Invalidated:
			line = styles.ok.Render(line)
		}
		lines[i] = line
	}
	return title + "\n" + strings.Join(lines, "\n")
}

func (m *Model) renderStatus() string {
	mode := styles.ok.Render("● live")
	if !m.online {
		mode = styles.warn.Render("○ local-only")
	}

	var status string
	switch {
	case m.err != nil:
		status = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	case m.loading:
		status = "Loading..."
	case !m.updated.IsZero():
		status = styles.help.Render("Updated " + m.updated.Format(time.TimeOnly))
	}
	return fmt.Sprintf("%s  %s", mode, status)
}
