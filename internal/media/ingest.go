// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package media downloads remote images and registers them as managed
// assets: the original and an optional thumbnail go to object storage and a
// media row is recorded against the owning content item.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"os"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"articlegen/internal/imaging"
	"articlegen/internal/models"
)

// MaxDownloadSize is the largest remote file accepted (50 MB).
const MaxDownloadSize = 50 << 20

var (
	// ErrUnsupportedURL is returned for URLs that are not absolute http(s).
	ErrUnsupportedURL = errors.New("media: unsupported URL")

	// ErrTooLarge is returned when a download exceeds MaxDownloadSize.
	ErrTooLarge = errors.New("media: file too large")

	// ErrNotImage is returned when the downloaded file is not an allowed image type.
	ErrNotImage = errors.New("media: file is not a supported image")

	// ErrBlockedAddress is returned when a download would connect to a
	// loopback, private, link-local or unspecified address.
	ErrBlockedAddress = errors.New("media: address not allowed")
)

// allowedTypes defines MIME types accepted for registration.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Uploader stores objects in the public asset bucket.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
	Bucket() string
}

// Recorder persists media metadata.
type Recorder interface {
	Create(m *models.Media) (*models.Media, error)
}

// Downloaded is a remote file saved to a temporary location.
type Downloaded struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64
}

// Remove deletes the temporary file.
func (d *Downloaded) Remove() {
	if d == nil || d.Path == "" {
		return
	}
	if err := os.Remove(d.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove temporary download", "path", d.Path, "error", err)
	}
}

// Ingester downloads and registers images. It is safe for concurrent use.
type Ingester struct {
	client   *http.Client
	uploader Uploader
	recorder Recorder
	tempDir  string
	now      func() time.Time
}

// NewIngester creates an ingester. A nil client selects one with timeout
// that only connects to public addresses.
func NewIngester(client *http.Client, uploader Uploader, recorder Recorder, timeout time.Duration) *Ingester {
	if client == nil {
		client = publicOnlyClient(timeout)
	}
	return &Ingester{
		client:   client,
		uploader: uploader,
		recorder: recorder,
		now:      time.Now,
	}
}

// Ingest downloads rawURL and registers it against contentID. The temporary
// file is always removed. It returns the media record and its public URL.
func (i *Ingester) Ingest(ctx context.Context, rawURL string, contentID, uploaderID uuid.UUID, alt string) (*models.Media, string, error) {
	dl, err := i.Download(ctx, rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("download: %w", err)
	}
	defer dl.Remove()

	m, localURL, err := i.Register(ctx, dl, contentID, uploaderID, alt)
	if err != nil {
		return nil, "", fmt.Errorf("register: %w", err)
	}
	return m, localURL, nil
}

// Download fetches rawURL into a temporary file. The caller must call
// Remove on the result.
func (i *Ingester) Download(ctx context.Context, rawURL string) (*Downloaded, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: unexpected status %d", resp.StatusCode)
	}
	if resp.ContentLength > MaxDownloadSize {
		return nil, ErrTooLarge
	}

	f, err := os.CreateTemp(i.tempDir, "articlegen-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	dl := &Downloaded{Path: f.Name(), Filename: filenameFromURL(u)}

	n, err := io.Copy(f, io.LimitReader(resp.Body, MaxDownloadSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		dl.Remove()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if n > MaxDownloadSize {
		dl.Remove()
		return nil, ErrTooLarge
	}
	if n == 0 {
		dl.Remove()
		return nil, fmt.Errorf("fetch: empty body")
	}
	dl.Size = n
	return dl, nil
}

// Register uploads a downloaded image and records it as a media asset
// attached to contentID. The content type is sniffed from the file.
func (i *Ingester) Register(ctx context.Context, dl *Downloaded, contentID, uploaderID uuid.UUID, alt string) (*models.Media, string, error) {
	data, err := os.ReadFile(dl.Path)
	if err != nil {
		return nil, "", fmt.Errorf("read temp file: %w", err)
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrNotImage, contentType)
	}
	dl.ContentType = contentType

	now := i.now()
	fileID := uuid.New().String()
	key := fmt.Sprintf("media/%d/%02d/%s%s", now.Year(), now.Month(), fileID, ext)

	if err := i.uploader.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, "", err
	}

	var thumbKey *string
	if imaging.CanThumbnail(contentType) {
		thumb, err := imaging.Thumbnail(bytes.NewReader(data), imaging.ThumbMaxWidth)
		if err != nil {
			slog.Warn("thumbnail generation failed", "error", err, "key", key)
		} else if thumb != nil {
			tk := fmt.Sprintf("media/%d/%02d/%s_thumb.jpg", now.Year(), now.Month(), fileID)
			if err := i.uploader.Upload(ctx, tk, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
				slog.Warn("thumbnail upload failed", "error", err, "key", tk)
			} else {
				thumbKey = &tk
			}
		}
	}

	m := &models.Media{
		Filename:     fileID + ext,
		OriginalName: dl.Filename,
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		Bucket:       i.uploader.Bucket(),
		S3Key:        key,
		ThumbS3Key:   thumbKey,
		ContentID:    &contentID,
		UploaderID:   uploaderID,
	}
	if alt = strings.TrimSpace(alt); alt != "" {
		m.AltText = &alt
	}

	created, err := i.recorder.Create(m)
	if err != nil {
		i.discard(key, thumbKey)
		return nil, "", err
	}
	slog.Debug("asset registered", "media_id", created.ID, "key", key, "size", created.HumanSize())
	return created, i.uploader.FileURL(created.S3Key), nil
}

// discard removes uploaded objects whose metadata could not be recorded.
func (i *Ingester) discard(key string, thumbKey *string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := i.uploader.Delete(ctx, key); err != nil {
		slog.Warn("s3 delete failed", "error", err, "key", key)
	}
	if thumbKey != nil {
		if err := i.uploader.Delete(ctx, *thumbKey); err != nil {
			slog.Warn("s3 thumbnail delete failed", "error", err, "key", *thumbKey)
		}
	}
}

// filenameFromURL returns the last path element of u, or "image" when the
// path has none. Provider URLs carry signed query strings which are dropped.
func filenameFromURL(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "image"
	}
	if len(name) > 255 {
		name = name[len(name)-255:]
	}
	return name
}

// publicOnlyClient returns a client whose dialer refuses non-public
// addresses. The check runs on the resolved address of every connection,
// redirects included. Proxies are disabled so the check sees the real peer.
func publicOnlyClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: refusePrivate}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: timeout, Transport: transport}
}

func refusePrivate(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	ip = ip.Unmap()
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsMulticast() || ip.IsUnspecified() {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ip)
	}
	return nil
}
