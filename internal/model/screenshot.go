package model

import "time"

// Screenshot is a platform marketing asset in the flat screenshot bucket.
type Screenshot struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updatedAt"`
}
