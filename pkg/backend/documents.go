package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Documents lists the documents corpus sorted by filename.
func (c *Client) Documents(ctx context.Context) ([]Document, error) {
	var byName map[string]Document
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("documents"), nil, &byName); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(byName))
	for name, doc := range byName {
		doc.Filename = name
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs, nil
}

// UploadDocuments uploads files as the multipart field "files".
func (c *Client) UploadDocuments(ctx context.Context, paths []string) (*UploadResult, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to upload")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range paths {
		if err := addFile(mw, p); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("upload_documents"), &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	out := &UploadResult{}
	if err := c.do(c.http, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func addFile(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("adding %s: %w", path, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// LoadDocuments indexes the uploaded files of a collection. With force the
// backend reprocesses files it already indexed.
func (c *Client) LoadDocuments(ctx context.Context, collection string, force bool) (*LoadResult, error) {
	q := url.Values{}
	q.Set("collection_name", collection)
	q.Set("force_reload", strconv.FormatBool(force))
	target := c.endpoint("load_documents") + "?" + q.Encode()

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, target, nil, &raw); err != nil {
		return nil, err
	}

	// The backend answers [documents, new, chunks]; older revisions answer
	// a status object, which carries no counts.
	out := &LoadResult{}
	var counts []int
	if err := json.Unmarshal(raw, &counts); err == nil {
		if len(counts) > 0 {
			out.Documents = counts[0]
		}
		if len(counts) > 1 {
			out.New = counts[1]
		}
		if len(counts) > 2 {
			out.Chunks = counts[2]
		}
	}
	return out, nil
}

// DeleteDocuments removes documents by reference id.
func (c *Client) DeleteDocuments(ctx context.Context, refs []string) error {
	return c.doJSON(ctx, http.MethodPost, c.endpoint("delete_document"), referenceIDs{ReferenceIDs: refs}, nil)
}

// DocumentURL is the browser URL of an uploaded document.
func (c *Client) DocumentURL(filename string) string {
	return c.endpoint("view_document", filename)
}

// ViewDocument downloads an uploaded document. The caller must close the
// returned body.
func (c *Client) ViewDocument(ctx context.Context, filename string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DocumentURL(filename), nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("GET /view_document: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, "", newAPIError(resp)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}
