package scraper

// Rules holds the thresholds and denylists the extractors were tuned with.
// They depend on the layout of the list article and are loaded from config.
type Rules struct {
	Marker                 string
	MaxItems               int
	MinBlockLength         int
	NameScanLines          int
	MaxNameLength          int
	MinNameWords           int
	NameDenylist           []string
	HeadingDenylist        []string
	MaxHeadingLength       int
	MaxSiblingNodes        int
	FallbackMinText        int
	FallbackDescriptionMax int
	VenuePathMarker        string
}

// DefaultRules returns the values tuned against the London cafés list
func DefaultRules() Rules {
	return Rules{
		Marker:                 "What is it?",
		MaxItems:               20,
		MinBlockLength:         20,
		NameScanLines:          5,
		MaxNameLength:          100,
		MinNameWords:           2,
		NameDenylist:           []string{"recommended", "stars", "shopping", "out of"},
		HeadingDenylist:        []string{"best café", "top", "london", "time out"},
		MaxHeadingLength:       100,
		MaxSiblingNodes:        10,
		FallbackMinText:        50,
		FallbackDescriptionMax: 500,
		VenuePathMarker:        "/venue/",
	}
}

// withDefaults fills zero values from DefaultRules
func (r Rules) withDefaults() Rules {
	def := DefaultRules()
	if r.Marker == "" {
		r.Marker = def.Marker
	}
	if r.MaxItems <= 0 {
		r.MaxItems = def.MaxItems
	}
	if r.MinBlockLength <= 0 {
		r.MinBlockLength = def.MinBlockLength
	}
	if r.NameScanLines <= 0 {
		r.NameScanLines = def.NameScanLines
	}
	if r.MaxNameLength <= 0 {
		r.MaxNameLength = def.MaxNameLength
	}
	if r.MinNameWords <= 0 {
		r.MinNameWords = def.MinNameWords
	}
	if r.NameDenylist == nil {
		r.NameDenylist = def.NameDenylist
	}
	if r.HeadingDenylist == nil {
		r.HeadingDenylist = def.HeadingDenylist
	}
	if r.MaxHeadingLength <= 0 {
		r.MaxHeadingLength = def.MaxHeadingLength
	}
	if r.MaxSiblingNodes <= 0 {
		r.MaxSiblingNodes = def.MaxSiblingNodes
	}
	if r.FallbackMinText <= 0 {
		r.FallbackMinText = def.FallbackMinText
	}
	if r.FallbackDescriptionMax <= 0 {
		r.FallbackDescriptionMax = def.FallbackDescriptionMax
	}
	if r.VenuePathMarker == "" {
		r.VenuePathMarker = def.VenuePathMarker
	}
	return r
}
