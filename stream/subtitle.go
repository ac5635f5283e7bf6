package stream

// DefaultSubtitle returns the subtitle applied at session start. The
// preferred code is reduced to its base language, then matched against each
// candidate's code exactly or by base language. The first match in catalog
// order wins; an empty preference selects nothing.
func (c *Catalog) DefaultSubtitle(preferredCode string) (*Subtitle, bool) {
	base := BaseLanguage(preferredCode)
	if base == "" {
		return nil, false
	}

	for _, opt := range c.Subtitles[1:] {
		if opt.Code == base || BaseLanguage(opt.Code) == base {
			return opt.Track, true
		}
	}
	return nil, false
}

// Subtitle looks up a subtitle by code, exact match first, then base language.
func (c *Catalog) Subtitle(code string) (*Subtitle, bool) {
	if code == "" {
		return nil, false
	}

	for _, opt := range c.Subtitles[1:] {
		if opt.Code == code {
			return opt.Track, true
		}
	}

	base := BaseLanguage(code)
	for _, opt := range c.Subtitles[1:] {
		if BaseLanguage(opt.Code) == base {
			return opt.Track, true
		}
	}
	return nil, false
}
