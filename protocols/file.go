package protocols

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// FileHandler implements the file scheme: stat the referenced path, and
// for HTML files extract children exactly like the http handler; for a
// directory, list its entries as children (component design §4.2).
type FileHandler struct{}

func NewFileHandler() *FileHandler { return &FileHandler{} }

func (h *FileHandler) Check(ctx context.Context, item *urlitem.Item) Outcome {
	u, err := url.Parse(item.Canonical)
	if err != nil {
		return errOutcome(urlitem.WarnURLInvalid, err.Error())
	}
	localPath := u.Path
	if localPath == "" {
		localPath = "/"
	}

	start := time.Now()
	info, err := os.Stat(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errOutcome(urlitem.WarnUnreachable, err.Error())
		}
		return errOutcome(urlitem.WarnUnreachable, err.Error())
	}
	duration := time.Since(start)

	if info.IsDir() {
		entries, err := os.ReadDir(localPath)
		if err != nil {
			return errOutcome(urlitem.WarnUnreachable, err.Error())
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		sort.Strings(names)
		children := make([]Child, 0, len(names))
		for i, n := range names {
			children = append(children, Child{Raw: n, Line: i + 1})
		}
		return Outcome{Valid: true, Duration: duration, ContentType: "text/directory", Children: children}
	}

	contentType := contentTypeByExt(filepath.Ext(localPath))
	out := Outcome{Valid: true, Duration: duration, ContentType: contentType, Size: info.Size()}

	if contentType != "text/html" {
		return out
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return errOutcome(urlitem.WarnUnreachable, err.Error())
	}
	if int64(len(data)) > maxBodyBytes {
		out.Warning = &urlitem.Warning{Tag: urlitem.WarnContentTooLarge, Text: "file exceeds size limit"}
		out.Valid = false
		return out
	}
	out.Children = ExtractHTML(data)
	if item.Anchor != "" && !HasAnchor(data, item.Anchor) {
		out.Warning = &urlitem.Warning{Tag: urlitem.WarnAnchorNotFound, Text: "anchor #" + item.Anchor + " not found"}
		out.Valid = false
	}
	return out
}

func contentTypeByExt(ext string) string {
	switch ext {
	case ".html", ".htm":
		return "text/html"
	case ".css":
		return "text/css"
	default:
		return "application/octet-stream"
	}
}
