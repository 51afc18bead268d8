package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/habitedge/habitedge/internal/markdown"
	"github.com/habitedge/habitedge/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GuideService serves the training guide library: markdown articles
// shipped under CONTENT_PATH/guides.
type GuideService struct {
	parser      *markdown.Parser
	contentPath string
}

func NewGuideService(contentPath string) *GuideService {
	return &GuideService{
		parser:      markdown.NewParser(),
		contentPath: contentPath,
	}
}

func (s *GuideService) Guides() ([]*model.Guide, error) {
	pattern := filepath.Join(s.contentPath, "guides", "*.md")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	var guides []*model.Guide
	for _, file := range files {
		guide, err := s.Guide(strings.TrimSuffix(filepath.Base(file), ".md"))
		if err != nil {
			continue
		}
		guides = append(guides, guide)
	}

	sort.Slice(guides, func(i, j int) bool {
		return guides[i].Date.After(guides[j].Date)
	})

	return guides, nil
}

func (s *GuideService) Guide(slug string) (*model.Guide, error) {
	path := filepath.Join(s.contentPath, "guides", slug+".md")
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("guide not found: %s", slug)
	}

	htmlContent, meta, err := s.parser.ParseWithFrontmatter(content)
	if err != nil {
		return nil, err
	}

	guide := &model.Guide{
		Slug:        slug,
		HTMLContent: string(htmlContent),
		Content:     string(content),
	}

	title, ok := meta["title"].(string)
	if ok {
		guide.Title = title
	} else {
		guide.Title = titleFromSlug(slug)
	}

	author, ok := meta["author"].(string)
	if ok {
		guide.Author = author
	}

	description, ok := meta["description"].(string)
	if ok {
		guide.Description = description
	}

	sport, ok := meta["sport"].(string)
	if ok {
		guide.Sport = sport
	}

	dateStr, ok := meta["date"].(string)
	if ok {
		date, err := time.Parse("2006-01-02", dateStr)
		if err == nil {
			guide.Date = date
		}
	}

	tags, ok := meta["tags"].([]any)
	if ok {
		for _, tag := range tags {
			tagStr, ok := tag.(string)
			if ok {
				guide.Tags = append(guide.Tags, tagStr)
			}
		}
	}

	guide.ReadTime = calculateReadTime(string(content))

	return guide, nil
}

// GuidesBySport filters guides for one sport. Guides without a sport
// in their frontmatter apply to every sport and are always included.
func (s *GuideService) GuidesBySport(sport string) ([]*model.Guide, error) {
	allGuides, err := s.Guides()
	if err != nil {
		return nil, err
	}

	var guides []*model.Guide
	for _, guide := range allGuides {
		if guide.Sport == "" || strings.EqualFold(guide.Sport, sport) {
			guides = append(guides, guide)
		}
	}

	return guides, nil
}

func (s *GuideService) GuidesByTag(tag string) ([]*model.Guide, error) {
	allGuides, err := s.Guides()
	if err != nil {
		return nil, err
	}

	var guides []*model.Guide
	for _, guide := range allGuides {
		for _, guideTag := range guide.Tags {
			if strings.EqualFold(guideTag, tag) {
				guides = append(guides, guide)
				break
			}
		}
	}

	return guides, nil
}

func titleFromSlug(slug string) string {
	slug = strings.ReplaceAll(slug, "-", " ")
	slug = strings.ReplaceAll(slug, "_", " ")

	words := strings.Fields(slug)
	caser := cases.Title(language.English)
	for i, word := range words {
		words[i] = caser.String(word)
	}

	return strings.Join(words, " ")
}

func calculateReadTime(content string) int {
	words := strings.Fields(content)
	wordsPerMinute := 200
	readTime := len(words) / wordsPerMinute
	if readTime < 1 {
		readTime = 1
	}
	return readTime
}
