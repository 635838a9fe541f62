package rss

import (
	"encoding/xml"
	"fmt"

	"github.com/siriusmart/scrapyard/pkg/domain"
)

// Render converts a feed's channel metadata and merged items into an RSS
// 2.0 XML document string, prefixed with the XML declaration (spec.md §6).
// ident is either used verbatim as the <generator>, or composed as
// "<ident> with <channel.generator>" when the feed supplies its own
// generator value (original_source/src/bindings/pseudoitem.rs).
func Render(ch domain.Channel, items []domain.Item, ident string) (string, error) {
	generator := ident
	if ch.Generator != "" {
		generator = fmt.Sprintf("%s with %s", ident, ch.Generator)
	}

	doc := Document{
		Version: "2.0",
		Channel: channel{
			Title:          ch.Title,
			Link:           ch.Link,
			Description:    ch.Description,
			Language:       ch.Language,
			Copyright:      ch.Copyright,
			ManagingEditor: ch.ManagingEditor,
			WebMaster:      ch.WebMaster,
			PubDate:        ch.PubDate,
			LastBuildDate:  ch.LastBuildDate,
			Categories:     renderCategories(ch.Categories),
			Generator:      generator,
			Docs:           ch.Docs,
			Cloud:          renderCloud(ch.Cloud),
			Rating:         ch.Rating,
			TTL:            ch.TTL,
			Image:          renderImage(ch.Image),
			TextInput:      renderTextInput(ch.TextInput),
			SkipHours:      ch.SkipHours,
			SkipDays:       ch.SkipDays,
			Items:          renderItems(items),
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal rss: %w", err)
	}
	return xml.Header + string(out), nil
}

func renderCategories(cats []domain.Category) []category {
	if len(cats) == 0 {
		return nil
	}
	out := make([]category, len(cats))
	for i, c := range cats {
		out[i] = category{Domain: c.Domain, Name: c.Name}
	}
	return out
}

func renderCloud(c *domain.Cloud) *cloud {
	if c == nil {
		return nil
	}
	return &cloud{
		Domain:            c.Domain,
		Port:              c.Port,
		Path:              c.Path,
		RegisterProcedure: c.RegisterProcedure,
		Protocol:          c.Protocol,
	}
}

func renderImage(img *domain.Image) *image {
	if img == nil {
		return nil
	}
	return &image{
		URL:         img.URL,
		Title:       img.Title,
		Link:        img.Link,
		Width:       img.Width,
		Height:      img.Height,
		Description: img.Description,
	}
}

func renderTextInput(t *domain.TextInput) *textInput {
	if t == nil {
		return nil
	}
	return &textInput{Title: t.Title, Description: t.Description, Name: t.Name, Link: t.Link}
}

func renderItems(items []domain.Item) []item {
	out := make([]item, len(items))
	for i, it := range items {
		out[i] = item{
			Title:       it.Title,
			Link:        it.Link,
			Description: it.Description,
			Author:      it.Author,
			Categories:  renderCategories(it.Categories),
			Comments:    it.Comments,
			Enclosure:   renderEnclosure(it.Enclosure),
			GUID:        renderGUID(it.GUID),
			PubDate:     it.PubDate,
			Source:      renderSource(it.Source),
		}
	}
	return out
}

func renderEnclosure(e *domain.Enclosure) *enclosure {
	if e == nil {
		return nil
	}
	return &enclosure{URL: e.URL, Length: e.Length, Type: e.Type}
}

func renderGUID(g *domain.GUID) *guid {
	if g == nil {
		return nil
	}
	return &guid{Permalink: g.Permalink, Value: g.Value}
}

func renderSource(s *domain.Source) *source {
	if s == nil {
		return nil
	}
	return &source{URL: s.URL, Title: s.Title}
}
