// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package workshop

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"wayvid.dev/wayvid/internal/wlog"
)

// steamAPIBase is the Steam Web API endpoint used to resolve Workshop
// item metadata.
const steamAPIBase = "https://api.steampowered.com"

// ItemDetails is a Workshop item's metadata, as returned by the Steam API.
type ItemDetails struct {
	ID            uint64
	Title         string
	Description   string
	Creator       string
	PreviewURL    string
	FileURL       string
	Subscriptions uint64
	Favorited     uint64
	Tags          []string
}

type apiResponse struct {
	Response struct {
		PublishedFileDetails []struct {
			PublishedFileID string `json:"publishedfileid"`
			Title           string `json:"title"`
			Description     string `json:"description"`
			Creator         string `json:"creator"`
			PreviewURL      string `json:"preview_url"`
			FileURL         string `json:"file_url"`
			Subscriptions   uint64 `json:"subscriptions"`
			Favorited       uint64 `json:"favorited"`
			Tags            []struct {
				Tag string `json:"tag"`
			} `json:"tags"`
		} `json:"publishedfiledetails"`
	} `json:"response"`
}

// Downloader fetches Workshop item metadata and content into a Cache.
type Downloader struct {
	client *http.Client
	cache  *Cache
}

// NewDownloader wraps cache with an HTTP client sized for large media
// downloads.
func NewDownloader(cache *Cache) *Downloader {
	return &Downloader{client: &http.Client{Timeout: 300 * time.Second}, cache: cache}
}

// GetItemDetails fetches one item's metadata from the Steam Web API.
func (d *Downloader) GetItemDetails(ctx context.Context, itemID uint64) (*ItemDetails, error) {
	endpoint := steamAPIBase + "/ISteamRemoteStorage/GetPublishedFileDetails/v1/"
	form := url.Values{
		"itemcount":             {"1"},
		"publishedfileids[0]": {strconv.FormatUint(itemID, 10)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("workshop: building item details request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workshop: fetching item %d details: %w", itemID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("workshop: Steam API returned %s", resp.Status)
	}

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return nil, fmt.Errorf("workshop: parsing item %d details: %w", itemID, err)
	}
	if len(api.Response.PublishedFileDetails) == 0 {
		return nil, fmt.Errorf("workshop: item %d not found", itemID)
	}
	d0 := api.Response.PublishedFileDetails[0]
	tags := make([]string, len(d0.Tags))
	for i, t := range d0.Tags {
		tags[i] = t.Tag
	}
	return &ItemDetails{
		ID: itemID, Title: d0.Title, Description: d0.Description, Creator: d0.Creator,
		PreviewURL: d0.PreviewURL, FileURL: d0.FileURL,
		Subscriptions: d0.Subscriptions, Favorited: d0.Favorited, Tags: tags,
	}, nil
}

// Search is a pass-through stub: the public Steam Web API has no
// unauthenticated search endpoint.
func (d *Downloader) Search(ctx context.Context, query string) ([]ItemDetails, error) {
	wlog.Warn("workshop: Steam Web API search requires authentication; browse the Workshop directly and use \"workshop download <id>\"", "query", query)
	return nil, nil
}

// Download fetches itemID's content into the cache, extracting it if it is
// a zip archive, and records it in the cache manifest. Returns the item's
// on-disk directory.
func (d *Downloader) Download(ctx context.Context, itemID uint64) (string, error) {
	details, err := d.GetItemDetails(ctx, itemID)
	if err != nil {
		return "", err
	}

	itemDir := d.cache.ItemDir(itemID)
	if _, err := os.Stat(itemDir); err == nil {
		wlog.Warn("workshop: item already cached", "id", itemID, "dir", itemDir)
		return itemDir, nil
	}

	if details.FileURL == "" {
		return "", fmt.Errorf("workshop: no direct download URL for item %d; subscribe to it in Steam and import its project directory with \"wayvid import <project-dir>\"", itemID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, details.FileURL, nil)
	if err != nil {
		return "", fmt.Errorf("workshop: building download request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("workshop: downloading item %d: %w", itemID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("workshop: download of item %d failed: %s", itemID, resp.Status)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("workshop: reading item %d download: %w", itemID, err)
	}

	sourceFile, err := extractOrSave(content, itemDir)
	if err != nil {
		return "", err
	}
	if err := d.cache.Record(itemID, details.Title, sourceFile); err != nil {
		return "", err
	}
	wlog.Warn("workshop: downloaded Workshop item", "id", itemID, "title", details.Title, "dir", itemDir)
	return itemDir, nil
}

// extractOrSave unpacks content into dir if it is a zip archive (the
// common Workshop packaging), otherwise writes it verbatim as
// "wallpaper". It returns the path of the
// video file a subsequent Import should target, left empty when the
// caller must point Import at project.json discovered inside dir.
func extractOrSave(content []byte, dir string) (string, error) {
	if zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content))); err == nil {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("workshop: creating item dir: %w", err)
		}
		for _, f := range zr.File {
			target := filepath.Join(dir, filepath.Clean(f.Name))
			if !strings.HasPrefix(target, dir+string(os.PathSeparator)) {
				return "", fmt.Errorf("workshop: archive entry %s escapes the item directory", f.Name)
			}
			if f.FileInfo().IsDir() {
				if err := os.MkdirAll(target, 0o755); err != nil {
					return "", err
				}
				continue
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return "", err
			}
			rc, err := f.Open()
			if err != nil {
				return "", fmt.Errorf("workshop: opening archive entry %s: %w", f.Name, err)
			}
			out, err := os.Create(target)
			if err != nil {
				rc.Close()
				return "", fmt.Errorf("workshop: writing %s: %w", target, err)
			}
			_, copyErr := io.Copy(out, rc)
			rc.Close()
			out.Close()
			if copyErr != nil {
				return "", fmt.Errorf("workshop: extracting %s: %w", f.Name, copyErr)
			}
		}
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("workshop: creating item dir: %w", err)
	}
	target := filepath.Join(dir, "wallpaper")
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return "", fmt.Errorf("workshop: saving %s: %w", target, err)
	}
	return target, nil
}
