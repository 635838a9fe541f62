// Package rss renders domain.Channel/domain.Item into an RSS 2.0 XML
// document, the way pkg/feed/types.go and pkg/feed/generator.go do in the
// teacher repo, generalized from a fixed news-reader layout to the full
// field set spec.md §6 requires.
package rss

import "encoding/xml"

// Document is the root RSS 2.0 element.
type Document struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title          string      `xml:"title"`
	Link           string      `xml:"link"`
	Description    string      `xml:"description"`
	Language       string      `xml:"language,omitempty"`
	Copyright      string      `xml:"copyright,omitempty"`
	ManagingEditor string      `xml:"managingEditor,omitempty"`
	WebMaster      string      `xml:"webMaster,omitempty"`
	PubDate        string      `xml:"pubDate,omitempty"`
	LastBuildDate  string      `xml:"lastBuildDate,omitempty"`
	Categories     []category  `xml:"category,omitempty"`
	Generator      string      `xml:"generator,omitempty"`
	Docs           string      `xml:"docs,omitempty"`
	Cloud          *cloud      `xml:"cloud,omitempty"`
	Rating         string      `xml:"rating,omitempty"`
	TTL            string      `xml:"ttl,omitempty"`
	Image          *image      `xml:"image,omitempty"`
	TextInput      *textInput  `xml:"textInput,omitempty"`
	SkipHours      []string    `xml:"skipHours>hour,omitempty"`
	SkipDays       []string    `xml:"skipDays>day,omitempty"`
	Items          []item      `xml:"item"`
}

type category struct {
	Domain string `xml:"domain,attr,omitempty"`
	Name   string `xml:",chardata"`
}

type cloud struct {
	Domain            string `xml:"domain,attr"`
	Port              string `xml:"port,attr"`
	Path              string `xml:"path,attr"`
	RegisterProcedure string `xml:"registerProcedure,attr"`
	Protocol          string `xml:"protocol,attr"`
}

type image struct {
	URL         string `xml:"url"`
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Width       string `xml:"width,omitempty"`
	Height      string `xml:"height,omitempty"`
	Description string `xml:"description,omitempty"`
}

type textInput struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Name        string `xml:"name"`
	Link        string `xml:"link"`
}

type item struct {
	Title       string     `xml:"title,omitempty"`
	Link        string     `xml:"link,omitempty"`
	Description string     `xml:"description,omitempty"`
	Author      string     `xml:"author,omitempty"`
	Categories  []category `xml:"category,omitempty"`
	Comments    string     `xml:"comments,omitempty"`
	Enclosure   *enclosure `xml:"enclosure,omitempty"`
	GUID        *guid      `xml:"guid,omitempty"`
	PubDate     string     `xml:"pubDate,omitempty"`
	Source      *source    `xml:"source,omitempty"`
}

type enclosure struct {
	URL    string `xml:"url,attr"`
	Length string `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

type guid struct {
	Permalink bool   `xml:"isPermaLink,attr"`
	Value     string `xml:",chardata"`
}

type source struct {
	URL   string `xml:"url,attr"`
	Title string `xml:",chardata"`
}
