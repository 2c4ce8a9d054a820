package api

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/prakhar1989/blag/internal/blog"
)

const atomNamespace = "http://www.w3.org/2005/Atom"

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Xmlns   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type atomEntry struct {
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Link    atomLink    `xml:"link"`
	Content atomContent `xml:"content"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

// AtomFeed serves the published listing in Atom form, from the same cache
// entry as the JSON listing.
func (h *Handler) AtomFeed(w http.ResponseWriter, r *http.Request) {
	defer h.observe(r)()

	posts, _, err := h.cache.PublishedListing(r.Context(), false)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	feed := buildAtomFeed("Blag", "urn:blag:feed", posts)

	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	xml.NewEncoder(w).Encode(feed)
}

func buildAtomFeed(title, feedID string, posts []blog.Post) atomFeed {
	feed := atomFeed{
		Xmlns: atomNamespace,
		Title: title,
		ID:    feedID,
		Links: []atomLink{{Href: "/feed.atom", Rel: "self"}},
	}

	// Feed updated is the newest entry's modification time; listing order
	// already has the newest created first, but an old post may carry the
	// latest edit.
	var updated time.Time
	for _, post := range posts {
		if post.LastModified.After(updated) {
			updated = post.LastModified
		}
		feed.Entries = append(feed.Entries, atomEntry{
			Title:   post.Subject,
			ID:      fmt.Sprintf("%s:post:%d", feedID, post.ID),
			Updated: post.LastModified.UTC().Format(time.RFC3339),
			Link:    atomLink{Href: fmt.Sprintf("/posts/%d", post.ID)},
			Content: atomContent{Type: "html", Body: post.Content},
		})
	}
	if updated.IsZero() {
		updated = time.Now()
	}
	feed.Updated = updated.UTC().Format(time.RFC3339)

	return feed
}
