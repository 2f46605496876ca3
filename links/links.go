package links

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownGroup = errors.New("unknown link group")
	ErrUnknownLink  = errors.New("unknown link")
)

// Group names.
const (
	GroupSites = "sites"
	GroupGames = "games"
)

// Link is one entry of the catalog.
type Link struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Emoji string `json:"emoji"`
}

var sites = []Link{
	{Name: "YouTube", URL: "https://youtube.com", Emoji: "▶️"},
	{Name: "GitHub", URL: "https://github.com", Emoji: "🐙"},
	{Name: "Facebook", URL: "https://facebook.com", Emoji: "👥"},
	{Name: "Gmail", URL: "https://mail.google.com", Emoji: "📧"},
	{Name: "Google", URL: "https://google.com", Emoji: "🔍"},
	{Name: "ChatGPT", URL: "https://chatgpt.com", Emoji: "🤖"},
	{Name: "X", URL: "https://x.com", Emoji: "❌"},
	{Name: "TikTok", URL: "https://tiktok.com", Emoji: "📱"},
	{Name: "Allegro", URL: "https://allegro.pl", Emoji: "🛍️"},
	{Name: "OLX", URL: "https://olx.pl", Emoji: "💼"},
	{Name: "Apple", URL: "https://apple.com", Emoji: "🍎"},
	{Name: "Rumble", URL: "https://rumble.com", Emoji: "🔴"},
}

var games = []Link{
	{Name: "Diep.io", URL: "https://diep.io", Emoji: "⚫"},
	{Name: "Slither.io", URL: "https://slither.io", Emoji: "🐍"},
	{Name: "Agar.io", URL: "https://agar.io", Emoji: "🟢"},
	{Name: "Mope.io", URL: "https://mope.io", Emoji: "🦁"},
	{Name: "Arras.io", URL: "https://arras.io", Emoji: "🎯"},
	{Name: "Chess.com", URL: "https://chess.com", Emoji: "♟️"},
}

// Groups returns the group names in display order.
func Groups() []string {
	return []string{GroupSites, GroupGames}
}

// Group returns a copy of the links in the named group.
func Group(name string) ([]Link, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case GroupSites:
		return append([]Link(nil), sites...), nil
	case GroupGames:
		return append([]Link(nil), games...), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
}

// Find looks a link up by name within a group, ignoring case.
func Find(group string, name string) (Link, error) {
	list, err := Group(group)
	if err != nil {
		return Link{}, err
	}
	for _, link := range list {
		if strings.EqualFold(link.Name, strings.TrimSpace(name)) {
			return link, nil
		}
	}
	return Link{}, fmt.Errorf("%w: %q in %s", ErrUnknownLink, name, group)
}
