// Package ui implements a live terminal dashboard using bubbletea's Elm architecture.
//
// The dashboard shows one tab per content collection plus an activity log:
//  1. [BannersTab] : Banners with their link and image count
//  2. [VideosTab] : Video cards with previews and purchase links
//  3. [NoticesTab] : Notices with their date
//  4. [PromosTab] : The top and bottom promo cards
//  5. [ActivityTab] : Change listener events, newest first
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Snapshots pushed by the change listener arrive through [tea.Program.Send] with the constructors in message.go,
// so the dashboard never polls.
//
// Keyboard navigation uses vim-style bindings (h/l or tab to switch, j/k to move, r to reload, q to quit) with contextual
// help displayed via charmbracelet/bubbles/help.
package ui
