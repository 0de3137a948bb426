package server

import (
	"html/template"

	"github.com/trust-protocol/trust-client/internal/config"
	"github.com/trust-protocol/trust-client/internal/miniapp"
)

// Image is an OpenGraph image entry.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt"`
}

// Metadata is the document metadata rendered by the root layout.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	OpenGraph   struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Images      []Image `json:"images"`
	} `json:"openGraph"`
	MiniApp miniapp.Embed `json:"fc:miniapp"`
}

func NewMetadata(site config.SiteConfig) Metadata {
	m := Metadata{
		Title:       site.Title,
		Description: site.Description,
		MiniApp:     miniapp.NewEmbed(site),
	}
	m.OpenGraph.Title = site.AppName
	m.OpenGraph.Description = site.Description
	m.OpenGraph.Images = []Image{{URL: site.ImageURL, Width: 800, Height: 533, Alt: site.AppName}}
	return m
}

type layoutData struct {
	Metadata
	Embed   string
	Account string
	Chains  []string
	State   miniapp.State
}

var layoutTemplate = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}">
<meta property="og:title" content="{{.OpenGraph.Title}}">
<meta property="og:description" content="{{.OpenGraph.Description}}">
{{- range .OpenGraph.Images}}
<meta property="og:image" content="{{.URL}}">
<meta property="og:image:width" content="{{.Width}}">
<meta property="og:image:height" content="{{.Height}}">
<meta property="og:image:alt" content="{{.Alt}}">
{{- end}}
<meta name="fc:miniapp" content="{{.Embed}}">
<link rel="preconnect" href="https://auth.farcaster.xyz">
</head>
<body>
<main>
<h1>{{.OpenGraph.Title}}</h1>
<p>{{.Description}}</p>
{{- if .Account}}
<p id="account">Connected: {{.Account}}</p>
{{- else}}
<p id="account">Wallet not connected</p>
{{- end}}
<ul id="chains">
{{- range .Chains}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- if .State.IsMiniApp}}
<p id="miniapp">Running inside a mini-app host</p>
{{- end}}
</main>
</body>
</html>
`))
