package domain

// ItemizerArg is the JSON argument document written to args.json and
// handed to the extractor subprocess (spec.md §4.3, §6). FeedOption is
// flattened into the same object so extractors can read feed-specific
// fields (label, custom channel metadata, ...) alongside the reserved
// ones below.
type ItemizerArg struct {
	URL        string `json:"url"`
	WebStr     *string `json:"webstr"`
	Preexists  []Item `json:"preexists"`
	LengthLeft int    `json:"lengthLeft"`
	FeedOption
}

// ItemizerRes is the JSON reply the extractor prints to stdout.
type ItemizerRes struct {
	Items        []Item  `json:"items"`
	Continuation *string `json:"continuation,omitempty"`
}
