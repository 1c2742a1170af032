package models

import (
	"strings"
	"time"
)

// Post is a feed item.
type Post struct {
	ID        string    `json:"$id"`
	CreatorID string    `json:"creator"`
	Caption   string    `json:"caption"`
	ImageURL  string    `json:"imageUrl"`
	Location  string    `json:"location"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"$createdAt"`
}

// NewPost is the post form input. Tags are entered comma separated.
type NewPost struct {
	Caption  string
	Location string
	Tags     string
}

// EditFrom pre-fills the post form with p, tags joined by commas.
func EditFrom(p Post) NewPost {
	return NewPost{Caption: p.Caption, Location: p.Location, Tags: strings.Join(p.Tags, ",")}
}

// SplitTags turns "a, b,,c " into ["a" "b" "c"].
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
