package blog

import (
	"bytes"
	"encoding/xml"
	"strings"
	"time"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// feed renders the RSS document for the newest entries.
func (b *Blog) feed(now time.Time) ([]byte, error) {
	base := strings.TrimSuffix(b.cfg.SiteLink, "/")
	entries := b.entries[:min(len(b.entries), MaxFeedItems)]

	items := make([]rssItem, 0, len(entries))
	for _, entry := range entries {
		link := base + "/" + entry.DestPath()
		items = append(items, rssItem{
			Title:       entry.Title,
			Link:        link,
			Description: entry.Description,
			PubDate:     b.dates[entry].Format(time.RFC1123Z),
			GUID:        link,
		})
	}
	doc := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:         b.cfg.MainTitle,
			Link:          b.cfg.SiteLink,
			Description:   b.cfg.Description,
			LastBuildDate: now.Format(time.RFC1123Z),
			Items:         items,
		},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.InternalError("cannot encode RSS feed: %v", err).Build()
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
