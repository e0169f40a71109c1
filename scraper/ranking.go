package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"ccj_tracker/config"
	"ccj_tracker/httputil"
	"ccj_tracker/models"
	"ccj_tracker/services"
)

const bannerPrefix = "最終更新:"

var charaIconPattern = regexp.MustCompile(`icon_(\d+)`)

// RankingHandler fetches and parses the paged leaderboard.
type RankingHandler struct {
	client  *http.Client
	baseURL string
	pages   int
	loc     *time.Location
}

func NewRankingHandler(client *http.Client, src *config.SourceConfig, loc *time.Location) *RankingHandler {
	return &RankingHandler{
		client:  client,
		baseURL: src.RankingURL,
		pages:   src.Pages,
		loc:     loc,
	}
}

// PageResult is the typed outcome of one page task: entries on success,
// a cause on failure. A failed page contributes zero entries without
// affecting its siblings.
type PageResult struct {
	Page    int
	Entries []models.RankingEntry
	Err     error
}

// FetchAll fetches and parses all leaderboard pages concurrently and
// joins the partial results. Per-page failures are logged and swallowed;
// there is no retry.
func (h *RankingHandler) FetchAll(ctx context.Context) []models.RankingEntry {
	results := make([]PageResult, h.pages)

	var wg sync.WaitGroup
	for i := 0; i < h.pages; i++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			entries, err := h.fetchPage(ctx, page)
			results[page] = PageResult{Page: page, Entries: entries, Err: err}
		}(i)
	}
	wg.Wait()

	var all []models.RankingEntry
	for _, res := range results {
		if res.Err != nil {
			log.Printf("Ranking page %d failed: %v", res.Page, res.Err)
			continue
		}
		all = append(all, res.Entries...)
	}
	return all
}

func (h *RankingHandler) pageURL(index int) string {
	// rid is the current year-month in the site's zone
	month := time.Now().In(h.loc).Format("200601")
	return fmt.Sprintf("%s?page=%d&rid=%s", h.baseURL, index, month)
}

func (h *RankingHandler) fetchPage(ctx context.Context, page int) ([]models.RankingEntry, error) {
	req, err := httputil.NewPageRequest(ctx, h.pageURL(page))
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

	return h.parsePage(resp.Body)
}

// parsePage extracts the ranking entries from one page. The page's "last
// updated" banner is resolved once and stamped onto every entry.
func (h *RankingHandler) parsePage(r io.Reader) ([]models.RankingEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	recordedAt, err := h.bannerTime(doc)
	if err != nil {
		return nil, fmt.Errorf("banner time: %w", err)
	}

	var entries []models.RankingEntry
	doc.Find("#ranking_data li").Each(func(i int, li *goquery.Selection) {
		if i == 0 {
			return // header row, not data
		}
		entry, err := parseEntry(li)
		if err != nil {
			log.Printf("Skipping ranking row %d: %v", i, err)
			return
		}
		entry.RecordedAt = recordedAt
		entries = append(entries, *entry)
	})

	return entries, nil
}

func (h *RankingHandler) bannerTime(doc *goquery.Document) (time.Time, error) {
	raw := strings.TrimSpace(doc.Find(".hr0").Eq(1).Next().Text())
	raw = strings.TrimPrefix(raw, bannerPrefix)
	return services.ParseBannerTime(raw, h.loc)
}

func parseEntry(li *goquery.Selection) (*models.RankingEntry, error) {
	rank, err := strconv.Atoi(strings.TrimSpace(li.Find("div").First().Text()))
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	pointText := strings.TrimSpace(li.Find("div").Eq(2).Text())
	points, err := strconv.Atoi(strings.TrimSuffix(pointText, "P"))
	if err != nil {
		return nil, fmt.Errorf("points: %w", err)
	}

	profile := li.Find("div").Eq(1)

	chara := "0"
	if src, ok := profile.Find("p").Eq(0).Find("img").Attr("src"); ok {
		if m := charaIconPattern.FindStringSubmatch(src); m != nil {
			chara = m[1]
		}
	}

	// The name block mixes a bare text node with decorated child elements;
	// the player name is only the text-node part.
	name := directText(profile.Find("p").Last())

	ach := profile.Find("p").Eq(1).Find("span").First()
	title := strings.TrimSpace(ach.Text())
	iconFirst := iconClass(ach.Find("span").First())
	iconLast := iconClass(ach.Find("span").Last())

	// Markup is the title rendering with the decorative icons removed.
	ach.Find("span.icon").Remove()
	var markup *string
	if inner, err := ach.Html(); err == nil {
		trimmed := strings.TrimSpace(inner)
		markup = &trimmed
	}

	return &models.RankingEntry{
		Rank:       rank,
		Points:     models.PointState{Current: points},
		CharaID:    chara,
		PlayerName: name,
		Achievement: models.ScrapedAchievement{
			Title:     title,
			Markup:    markup,
			IconFirst: iconFirst,
			IconLast:  iconLast,
		},
	}, nil
}

// directText concatenates the immediate text children of sel, ignoring
// nested elements.
func directText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, node := range sel.Nodes {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// iconClass pulls the decorative icon id off a span's class list. The site
// renders id "0" for rows without an icon; that normalizes to absent.
func iconClass(sel *goquery.Selection) *string {
	class, ok := sel.Attr("class")
	if !ok {
		return nil
	}
	for _, c := range strings.Fields(class) {
		if strings.HasPrefix(c, "icon_") {
			id := strings.TrimPrefix(c, "icon_")
			if id == "" || id == "0" {
				return nil
			}
			return &id
		}
	}
	return nil
}
