package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ccj_tracker/config"
	"ccj_tracker/httputil"
	"ccj_tracker/models"
)

// ScheduleHandler extracts raw schedule rows from the news listing page.
// It does no date parsing; rows come back as verbatim strings in ascending
// chronological order of appearance.
type ScheduleHandler struct {
	client  *http.Client
	newsURL string
	keyword string
}

func NewScheduleHandler(client *http.Client, src *config.SourceConfig) *ScheduleHandler {
	return &ScheduleHandler{
		client:  client,
		newsURL: src.NewsURL,
		keyword: src.ScheduleKeyword,
	}
}

func (h *ScheduleHandler) FetchRaw(ctx context.Context) ([]models.RawScheduleEvent, error) {
	req, err := httputil.NewPageRequest(ctx, h.newsURL)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return h.parseNews(resp.Body)
}

// parseNews walks the news list items that mention the schedule keyword
// and contain an embedded table. The site renders newest-first at both
// levels, so rows are reversed per table and the table groups reversed
// overall to yield chronological order.
func (h *ScheduleHandler) parseNews(r io.Reader) ([]models.RawScheduleEvent, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var groups [][]models.RawScheduleEvent
	doc.Find(".list > li").Each(func(_ int, li *goquery.Selection) {
		if !strings.Contains(li.Text(), h.keyword) {
			return
		}
		table := li.Find("table").First()
		if table.Length() == 0 {
			return
		}

		var rows []models.RawScheduleEvent
		table.Find("tr").Each(func(i int, tr *goquery.Selection) {
			if i == 0 {
				return // header row
			}
			cells := tr.Find("td")
			if cells.Length() < 3 {
				return
			}
			dateRange := strings.TrimSpace(cells.Eq(0).Text())
			start, end, _ := strings.Cut(dateRange, " - ")
			rows = append(rows, models.RawScheduleEvent{
				StartText: start,
				EndText:   end,
				EvenTime:  strings.TrimSpace(cells.Eq(1).Text()),
				OddTime:   strings.TrimSpace(cells.Eq(2).Text()),
			})
		})

		slices.Reverse(rows)
		groups = append(groups, rows)
	})

	slices.Reverse(groups)

	var events []models.RawScheduleEvent
	for _, g := range groups {
		events = append(events, g...)
	}
	return events, nil
}
