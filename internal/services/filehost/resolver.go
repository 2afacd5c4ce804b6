package filehost

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"mediaarchive/internal/domain/ports"
)

// Resolver implements ports.FileResolver. Pixeldrain links are answered by
// the info API; any other link falls back to a HEAD request and finally to
// the last path segment.
type Resolver struct {
	pixeldrain *Pixeldrain
	http       *http.Client
}

func NewResolver(pixeldrain *Pixeldrain, client *http.Client) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &Resolver{pixeldrain: pixeldrain, http: client}
}

// PixeldrainID extracts the file id of pixeldrain.com/u/{id} and
// pixeldrain.com/api/file/{id} links.
func PixeldrainID(link string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || !strings.HasSuffix(strings.ToLower(u.Hostname()), "pixeldrain.com") {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case len(parts) >= 2 && parts[0] == "u":
		return parts[1], parts[1] != ""
	case len(parts) >= 3 && parts[0] == "api" && parts[1] == "file":
		return parts[2], parts[2] != ""
	default:
		return "", false
	}
}

// Normalize rewrites pixeldrain share pages to their direct download url.
func (r *Resolver) Normalize(link string) string {
	link = strings.TrimSpace(link)
	id, ok := PixeldrainID(link)
	if !ok {
		return link
	}
	u, _ := url.Parse(link)
	return u.Scheme + "://" + u.Host + "/api/file/" + id
}

func (r *Resolver) Resolve(ctx context.Context, link string) (ports.FileInfo, error) {
	link = r.Normalize(link)
	if id, ok := PixeldrainID(link); ok && r.pixeldrain != nil {
		f, err := r.pixeldrain.Info(ctx, id)
		if err == nil && f.Name != "" {
			return ports.FileInfo{Name: f.Name, SizeBytes: f.Size}, nil
		}
		if errors.Is(err, ErrNotFound) {
			return ports.FileInfo{}, err
		}
	}

	info, err := r.head(ctx, link)
	if err == nil && info.Name != "" {
		return info, nil
	}
	if name := lastSegment(link); name != "" {
		info.Name = name
		return info, nil
	}
	if err == nil {
		err = errors.New("filehost: no filename for link")
	}
	return ports.FileInfo{}, err
}

func (r *Resolver) head(ctx context.Context, link string) (ports.FileInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		return ports.FileInfo{}, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return ports.FileInfo{}, err
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ports.FileInfo{}, ErrNotFound
	}
	info := ports.FileInfo{SizeBytes: max(resp.ContentLength, 0)}
	if resp.StatusCode < 300 {
		info.Name = dispositionFilename(resp.Header.Get("Content-Disposition"))
	}
	return info, nil
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["filename"])
}

// lastSegment skips segments without a dot, which are ids rather than names.
func lastSegment(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	name, err := url.PathUnescape(path.Base(u.Path))
	if err != nil || name == "." || name == "/" || !strings.Contains(name, ".") {
		return ""
	}
	return name
}
