package feed

import (
	"bytes"
	"log/slog"

	"github.com/mmcdole/gofeed"
)

const itemContainer = "item"

var recordFields = []string{FieldTitle, FieldAvailability, FieldLink}

type Parser struct {
	gofeedParser *gofeed.Parser
	match        NameMatcher
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		match:        SuffixMatch,
	}
}

// Run extracts one RawRecord per item container found anywhere in the
// document. Only document-level parse failures are errors; items missing
// fields are returned as they are.
func (p *Parser) Run(data []byte) ([]RawRecord, *Metadata, error) {
	data = stripDefaultNamespace(data)

	root, err := BuildTree(data)
	if err != nil {
		return nil, nil, err
	}

	items := FindAll(root, itemContainer, p.match)
	records := make([]RawRecord, 0, len(items))
	for _, item := range items {
		records = append(records, p.extractRecord(item))
	}

	return records, p.extractMetadata(data), nil
}

func (p *Parser) extractRecord(item Node) RawRecord {
	record := make(RawRecord, len(recordFields))

	for _, field := range recordFields {
		child, ok := FirstChild(item, field, p.match)
		if !ok {
			continue
		}

		value := child.Text()
		if value == "" && field == FieldLink {
			value = child.Attr("href")
		}
		record[field] = value
	}

	return record
}

// extractMetadata reads channel level information for the report header.
// Feeds gofeed cannot classify still audit fine, only without a title.
func (p *Parser) extractMetadata(data []byte) *Metadata {
	metadata := &Metadata{}

	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		slog.Debug("Feed metadata unavailable", "error", err)
		return metadata
	}

	metadata.Title = feed.Title
	metadata.Link = feed.Link
	if feed.UpdatedParsed != nil {
		metadata.UpdatedAt = feed.UpdatedParsed
	} else if feed.PublishedParsed != nil {
		metadata.UpdatedAt = feed.PublishedParsed
	}

	return metadata
}
