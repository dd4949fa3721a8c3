package feed

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/lectio/app/cfg"
	"github.com/lysyi3m/lectio/app/database"
	"github.com/lysyi3m/lectio/app/readings"
	"github.com/lysyi3m/lectio/app/usccb"
)

const (
	channelTitle       = "Daily Readings"
	channelDescription = "Daily Mass readings from the USCCB with API.Bible translations"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders stored reading rows, newest first, as an RSS 2.0 channel. Rows
// whose body cannot be decoded are skipped.
func (g *Generator) Run(rows []database.Reading) (string, error) {
	var buf bytes.Buffer

	baseURL := g.baseURL()

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channelTitle, 4)
	g.writeElement(&buf, "link", baseURL, 4)
	g.writeElement(&buf, "description", channelDescription, 4)

	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(baseURL+"/feeds/readings")))

	lastBuildDate := time.Now().In(time.Local)
	if len(rows) > 0 && !rows[0].CreatedAt.IsZero() {
		lastBuildDate = rows[0].CreatedAt.In(time.Local)
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Lectio/%s", cfg.Get().Version), 4)
	g.writeElement(&buf, "language", "en-us", 4)

	for _, row := range rows {
		var daily readings.DailyReadings
		if err := json.Unmarshal([]byte(row.Content), &daily); err != nil {
			slog.Warn("Skipping undecodable reading row", "date", row.Date, "error", err)
			continue
		}
		g.writeItem(&buf, baseURL, row, &daily)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, baseURL string, row database.Reading, daily *readings.DailyReadings) {
	link := baseURL + "/api/readings/date/" + row.Date

	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"true\">")
	xml.EscapeText(buf, []byte(link))
	buf.WriteString("</guid>\n")

	title := row.Title
	if daily.DateLabel != "" {
		title = fmt.Sprintf("%s (%s)", row.Title, daily.DateLabel)
	}
	g.writeElement(buf, "title", title, 6)
	g.writeElement(buf, "link", link, 6)

	var references []string
	for _, r := range daily.Readings {
		if r.Reference != "" {
			references = append(references, r.Reference)
		}
	}
	description := strings.Join(references, "; ")
	if description == "" {
		description = "No references available"
	}
	g.writeElement(buf, "description", description, 6)

	if content := g.renderContent(daily); content != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(content, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	if day, err := usccb.ParseDate(row.Date); err == nil {
		g.writeElement(buf, "pubDate", day.Format(time.RFC1123Z), 6)
	}

	g.writeElement(buf, "category", row.Source, 6)

	buf.WriteString("    </item>\n")
}

// renderContent lays each reading out as a heading, its reference and one
// paragraph per blank-line separated block.
func (g *Generator) renderContent(daily *readings.DailyReadings) string {
	var b strings.Builder

	for _, r := range daily.Readings {
		b.WriteString("<h3>")
		b.WriteString(html.EscapeString(r.Title))
		b.WriteString("</h3>")

		if r.Reference != "" {
			b.WriteString("<h4>")
			b.WriteString(html.EscapeString(r.Reference))
			b.WriteString("</h4>")
		}

		for _, paragraph := range strings.Split(r.Content, "\n\n") {
			if paragraph = strings.TrimSpace(paragraph); paragraph == "" {
				continue
			}
			b.WriteString("<p>")
			b.WriteString(strings.ReplaceAll(html.EscapeString(paragraph), "\n", "<br/>"))
			b.WriteString("</p>")
		}
	}

	return b.String()
}

func (g *Generator) baseURL() string {
	c := cfg.Get()
	if c.BaseUrl != "" {
		return strings.TrimRight(c.BaseUrl, "/")
	}
	return fmt.Sprintf("http://localhost:%s", c.Port)
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
