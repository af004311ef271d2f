package domain

// Track is supplied by the catalog integration and passed through untouched.
type Track struct {
	ID         string   `json:"id" validate:"required,max=128"`
	Name       string   `json:"name" validate:"max=512"`
	Artists    []string `json:"artists" validate:"max=64"`
	Album      string   `json:"album" validate:"max=512"`
	DurationMs int64    `json:"duration_ms" validate:"gte=0"`
	URI        string   `json:"uri" validate:"max=1024"`
	PreviewURL *string  `json:"preview_url" validate:"omitempty,max=2048"`
	Image      string   `json:"image" validate:"max=2048"`
}

func (t *Track) Clone() *Track {
	if t == nil {
		return nil
	}

	c := *t
	if t.Artists != nil {
		c.Artists = append([]string(nil), t.Artists...)
	}
	if t.PreviewURL != nil {
		u := *t.PreviewURL
		c.PreviewURL = &u
	}

	return &c
}

// Playlist is fixed when the room is created.
type Playlist struct {
	list []Track
}

func NewPlaylist(tracks []Track) Playlist {
	list := make([]Track, 0, len(tracks))
	for i := range tracks {
		list = append(list, *tracks[i].Clone())
	}

	return Playlist{list: list}
}

func (p Playlist) AsList() []Track {
	out := make([]Track, len(p.list))
	copy(out, p.list)
	return out
}

func (p Playlist) Length() int {
	return len(p.list)
}
