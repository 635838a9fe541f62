package domain

import "fmt"

// Default values for FeedOption fields left unset in feeds.json, per
// spec.md §3.
const (
	DefaultMaxLength   = 50
	DefaultFetchLength = 10
	DefaultInterval    = 3600
	DefaultIdleLimit   = 172800
)

// FeedOption is the static per-feed configuration loaded from feeds.json.
type FeedOption struct {
	Origin      string   `json:"origin"`
	Label       string   `json:"label"`
	MaxLength   int      `json:"max-length"`
	FetchLength int      `json:"fetch-length"`
	Interval    int64    `json:"interval"`
	IdleLimit   int64    `json:"idle-limit"`
	Sort        bool     `json:"sort"`
	Extractor   []string `json:"extractor"`
	Fetch       bool     `json:"fetch"`

	// Channel is embedded anonymously so its fields flatten into the same
	// JSON object as the fields above, both when feeds.json is decoded and
	// when a FeedOption is flattened into an extractor argument document
	// (spec.md §4.3, §6).
	Channel
}

// ApplyDefaults fills in zero-valued fields with the defaults from
// spec.md §3. Fetch and Sort default to true, which a bare zero value
// can't distinguish from "explicitly false" — pkg/config.loadFeeds
// pre-seeds a FeedOption with both set to true before unmarshaling, so
// this is a no-op for those two fields given that calling convention.
func (f *FeedOption) ApplyDefaults() {
	if f.MaxLength == 0 {
		f.MaxLength = DefaultMaxLength
	}
	if f.FetchLength == 0 {
		f.FetchLength = DefaultFetchLength
	}
	if f.Interval == 0 {
		f.Interval = DefaultInterval
	}
	if f.IdleLimit == 0 {
		f.IdleLimit = DefaultIdleLimit
	}
}

// Validate checks the invariants spec.md §3/§4.6 place on a feed's static
// configuration. It does not check Label for path separators or ".." —
// spec.md §3 makes that the caller's responsibility.
func (f *FeedOption) Validate() error {
	if f.Label == "" {
		return fmt.Errorf("feed %q: label must not be empty", f.Origin)
	}
	if len(f.Extractor) == 0 {
		return fmt.Errorf("feed %q: extractor argv must not be empty", f.Label)
	}
	if f.Origin == "" {
		return fmt.Errorf("feed %q: origin must not be empty", f.Label)
	}
	return nil
}

// Channel carries the embedded channel metadata from feeds.json, rendered
// verbatim into the output RSS document. Field names match the JSON
// exceptions called out in spec.md §6.
type Channel struct {
	Title         string      `json:"title"`
	Link          string      `json:"link"`
	Description   string      `json:"description"`
	Language      string      `json:"language,omitempty"`
	Copyright     string      `json:"copyright,omitempty"`
	ManagingEditor string     `json:"managingEditor,omitempty"`
	WebMaster     string      `json:"webMaster,omitempty"`
	PubDate       string      `json:"pubDate,omitempty"`
	LastBuildDate string      `json:"lastBuildDate,omitempty"`
	Categories    []Category  `json:"category,omitempty"`
	Generator     string      `json:"generator,omitempty"`
	Docs          string      `json:"docs,omitempty"`
	Cloud         *Cloud      `json:"cloud,omitempty"`
	Rating        string      `json:"rating,omitempty"`
	TTL           string      `json:"ttl,omitempty"`
	Image         *Image      `json:"image,omitempty"`
	TextInput     *TextInput  `json:"textInput,omitempty"`
	SkipHours     []string    `json:"skipHours,omitempty"`
	SkipDays      []string    `json:"skipDays,omitempty"`
}

// Cloud mirrors an RSS <cloud> element.
type Cloud struct {
	Domain            string `json:"domain"`
	Port              string `json:"port"`
	Path              string `json:"path"`
	RegisterProcedure string `json:"registerProcedure"`
	Protocol          string `json:"protocol"`
}

// Image mirrors an RSS <image> element.
type Image struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Width       string `json:"width,omitempty"`
	Height      string `json:"height,omitempty"`
	Description string `json:"description,omitempty"`
}

// TextInput mirrors an RSS <textInput> element.
type TextInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Name        string `json:"name"`
	Link        string `json:"link"`
}

// FeedDocument bundles a feed's channel metadata with its current items,
// the shape the Read API's *_object operations return (spec.md §4.7).
type FeedDocument struct {
	Channel Channel `json:"channel"`
	Items   []Item  `json:"items"`
}
