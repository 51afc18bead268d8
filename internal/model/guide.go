package model

import (
	"time"
)

// Guide is a training article rendered from a markdown file shipped
// with the server.
type Guide struct {
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Date        time.Time `json:"date"`
	Author      string    `json:"author,omitempty"`
	Description string    `json:"description,omitempty"`
	Sport       string    `json:"sport,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Content     string    `json:"-"`
	HTMLContent string    `json:"html,omitempty"`
	ReadTime    int       `json:"readTime"`
}
