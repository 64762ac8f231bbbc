package cardpress

import "encoding/json"

const schemaContext = "https://schema.org"

type jsonLDRef struct {
	Type string `json:"@type"`
	Name string `json:"name,omitempty"`
	ID   string `json:"@id,omitempty"`
}

type websiteJSONLD struct {
	Context     string     `json:"@context"`
	Type        string     `json:"@type"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Description string     `json:"description,omitempty"`
	Image       string     `json:"image"`
	Author      *jsonLDRef `json:"author,omitempty"`
}

type postingJSONLD struct {
	Context          string     `json:"@context"`
	Type             string     `json:"@type"`
	Headline         string     `json:"headline"`
	Description      string     `json:"description,omitempty"`
	DatePublished    string     `json:"datePublished"`
	URL              string     `json:"url"`
	Image            string     `json:"image"`
	MainEntityOfPage jsonLDRef  `json:"mainEntityOfPage"`
	Author           *jsonLDRef `json:"author,omitempty"`
	Publisher        *jsonLDRef `json:"publisher,omitempty"`
	Keywords         string     `json:"keywords,omitempty"`
}

// WebsiteJsonLD returns the WebSite structured data for the home page. The
// site card is its image.
func WebsiteJsonLD(cfg SiteConfig) string {
	return marshalJsonLD(websiteJSONLD{
		Context:     schemaContext,
		Type:        "WebSite",
		Name:        cfg.Name,
		URL:         BuildURL(cfg.URL),
		Description: cfg.Description,
		Image:       CardURL(cfg.URL, cfg.Name),
		Author:      person(cfg.Author),
	})
}

// BlogPostingJsonLD returns the BlogPosting structured data for a post, with
// the post's preview card as its image.
func BlogPostingJsonLD(post BlogPost, cfg SiteConfig) string {
	postURL := BuildURL(cfg.URL, "blog", post.Slug)
	ld := postingJSONLD{
		Context:          schemaContext,
		Type:             "BlogPosting",
		Headline:         post.Title,
		Description:      post.Summary,
		DatePublished:    post.Date,
		URL:              postURL,
		Image:            CardURL(cfg.URL, post.Title),
		MainEntityOfPage: jsonLDRef{Type: "WebPage", ID: postURL},
		Author:           person(cfg.Author),
		Keywords:         joinTags(post.Tags),
	}
	if cfg.Name != "" {
		ld.Publisher = &jsonLDRef{Type: "Organization", Name: cfg.Name}
	}
	return marshalJsonLD(ld)
}

func person(name string) *jsonLDRef {
	if name == "" {
		return nil
	}
	return &jsonLDRef{Type: "Person", Name: name}
}

func marshalJsonLD(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
