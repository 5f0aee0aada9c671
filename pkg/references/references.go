// Package references turns the references attached to an answer into
// citations for display.
package references

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/anmerino-pnd/proyectoCenace/pkg/chatstream"
)

const (
	CollectionDocuments = "documentos"
	CollectionSolutions = "soluciones"
	CollectionTickets   = "tickets"
)

// Field is a labelled metadata value.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Citation is a reference ready for display.
type Citation struct {
	// Title is "<kind> <n>" plus ": <title>" when the reference has one.
	Title string `json:"title"`

	// ID is the reference id.
	ID string `json:"id"`

	// URL opens the source document. Empty for non-documents.
	URL string `json:"url,omitempty"`

	Fields []Field `json:"fields,omitempty"`
}

// String renders the citation as plain text lines.
func (c Citation) String() string {
	var b strings.Builder
	b.WriteString(c.Title)
	fmt.Fprintf(&b, "\n  ID: %s", c.ID)
	if c.URL != "" {
		fmt.Fprintf(&b, "\n  Abrir documento: %s", c.URL)
	}
	for _, f := range c.Fields {
		fmt.Fprintf(&b, "\n  %s: %s", f.Name, f.Value)
	}
	return b.String()
}

// Kind returns the display prefix for a collection.
func Kind(collection string) string {
	switch collection {
	case CollectionDocuments:
		return "Documento"
	case CollectionSolutions:
		return "Solución"
	case CollectionTickets:
		return "Ticket"
	default:
		return "Referencia"
	}
}

// Describe builds the citation of the reference at zero-based index.
// apiBase is the backend URL used for document links.
func Describe(index int, ref chatstream.Reference, apiBase string) Citation {
	md := ref.Metadata

	title := fmt.Sprintf("%s %d", Kind(md.Collection), index+1)
	if md.Title != "" {
		title += ": " + md.Title
	}

	c := Citation{Title: title, ID: ref.Reference}
	if md.Collection == CollectionDocuments && md.Filename != "" {
		c.URL = strings.TrimRight(apiBase, "/") + "/view_document/" + url.PathEscape(md.Filename)
	}

	for _, f := range []Field{
		{Name: "page number", Value: string(md.PageNumber)},
		{Name: "author", Value: string(md.Author)},
		{Name: "subject", Value: md.Subject},
		{Name: "source", Value: md.Source},
		{Name: "categories", Value: string(md.Categories)},
	} {
		if f.Value != "" {
			c.Fields = append(c.Fields, f)
		}
	}

	return c
}

// DescribeAll builds the citations of every reference with an id. Numbering
// follows the position in refs.
func DescribeAll(refs []chatstream.Reference, apiBase string) []Citation {
	out := make([]Citation, 0, len(refs))
	for i, ref := range refs {
		if ref.Reference == "" {
			continue
		}
		out = append(out, Describe(i, ref, apiBase))
	}
	return out
}
