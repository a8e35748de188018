package audit

import (
	"time"

	"github.com/dmmdmlingbakery/mdm-ling-audit/app/feed"
)

// Report is the finalized audit handed to the report surface
type Report struct {
	ID          string    `json:"id"`
	FeedURL     string    `json:"feed_url"`
	FeedTitle   string    `json:"feed_title,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Summary     Summary   `json:"summary"`
	Rows        []Row     `json:"rows"`
}

type Summary struct {
	Total          int `json:"total"`
	SoldOut        int `json:"sold_out"`
	VariantSoldOut int `json:"variant_sold_out"`
	CheckFailed    int `json:"check_failed"`
}

type Row struct {
	Name   string      `json:"name"`
	Status string      `json:"status"`
	Code   feed.Status `json:"code"`
	Detail string      `json:"detail"`
	URL    string      `json:"url,omitempty"`
}
