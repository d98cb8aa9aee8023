// ABOUTME: Selector settings domain model used by page capture
// ABOUTME: Holds CSS selectors for article, title, content and images

package domain

// SelectorSettings are the CSS selectors used to scrape standard pages
type SelectorSettings struct {
	Article string `json:"article" yaml:"article"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Images  string `json:"images" yaml:"images"`
}

// DefaultSelectorSettings returns selectors that fit common article layouts
func DefaultSelectorSettings() SelectorSettings {
	return SelectorSettings{
		Article: `article, .article, .post, [class*="article"], [class*="post"], main`,
		Title:   `h1, .title, .headline, .article-title, .post-title`,
		Content: `article p, .article p, .post p, .content p, [class*="article"] p, [class*="post"] p, main p`,
		Images:  `article img, .article img, .post img, [class*="article"] img, [class*="post"] img, main img`,
	}
}

// Merge overlays non-empty fields of overrides onto s
func (s SelectorSettings) Merge(overrides SelectorSettings) SelectorSettings {
	if overrides.Article != "" {
		s.Article = overrides.Article
	}
	if overrides.Title != "" {
		s.Title = overrides.Title
	}
	if overrides.Content != "" {
		s.Content = overrides.Content
	}
	if overrides.Images != "" {
		s.Images = overrides.Images
	}
	return s
}
