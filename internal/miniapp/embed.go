package miniapp

import (
	"encoding/json"

	"github.com/trust-protocol/trust-client/internal/config"
)

// Embed is the fc:miniapp document a host reads from the page metadata to
// render the launch card.
type Embed struct {
	Version  string `json:"version"`
	ImageURL string `json:"imageUrl"`
	Button   struct {
		Title  string `json:"title"`
		Action struct {
			Type                  string `json:"type"`
			Name                  string `json:"name"`
			SplashImageURL        string `json:"splashImageUrl"`
			SplashBackgroundColor string `json:"splashBackgroundColor"`
		} `json:"action"`
	} `json:"button"`
}

func NewEmbed(site config.SiteConfig) Embed {
	var e Embed
	e.Version = "1"
	e.ImageURL = site.ImageURL
	e.Button.Title = site.ButtonTitle
	e.Button.Action.Type = "launch_miniapp"
	e.Button.Action.Name = site.AppName
	e.Button.Action.SplashImageURL = site.SplashImageURL
	e.Button.Action.SplashBackgroundColor = site.SplashBackgroundColor
	return e
}

func (e Embed) String() string {
	data, _ := json.Marshal(e)
	return string(data)
}
