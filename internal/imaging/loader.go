package imaging

import (
	"bytes"
	"container/list"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
)

// DefaultFrameCacheSize is the number of decoded frames a FrameCache keeps
// when no capacity is given.
const DefaultFrameCacheSize = 16

// FrameCache is the pixel source for file-backed frames. It keeps decoded
// images keyed by path and re-decodes a path whenever the file's size or
// modification time changes, which is what happens when a camera keeps
// writing preview frames to the same location.
//
// At most capacity paths are kept; loading a new path beyond that drops the
// least recently loaded one.
//
// FrameCache is safe for concurrent use. Cached images are shared and must
// be treated as read-only; every transform in this package returns a new
// buffer.
type FrameCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front is most recently used
}

type cacheEntry struct {
	path    string
	img     image.Image
	format  string
	size    int64
	modTime time.Time
}

// NewFrameCache creates an empty cache holding up to capacity frames.
// A capacity below 1 uses DefaultFrameCacheSize.
func NewFrameCache(capacity int) *FrameCache {
	if capacity < 1 {
		capacity = DefaultFrameCacheSize
	}
	return &FrameCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Load returns the decoded image at path, decoding it again if the file
// changed since it was cached.
//
// # Errors
//
//   - io kind if the file cannot be stat'd, opened or decoded
func (c *FrameCache) Load(path string) (image.Image, error) {
	entry, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return entry.img, nil
}

func (c *FrameCache) load(path string) (cacheEntry, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return cacheEntry{}, scanerr.NewIOError("failed to stat image", err)
	}

	c.mu.Lock()
	if el, ok := c.entries[path]; ok {
		entry := el.Value.(cacheEntry)
		if entry.size == stat.Size() && entry.modTime.Equal(stat.ModTime()) {
			c.order.MoveToFront(el)
			c.mu.Unlock()
			return entry, nil
		}
	}
	c.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return cacheEntry{}, scanerr.NewIOError("failed to open image", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return cacheEntry{}, scanerr.NewIOError("failed to decode image", err)
	}

	entry := cacheEntry{path: path, img: img, format: format, size: stat.Size(), modTime: stat.ModTime()}
	c.store(entry)
	return entry, nil
}

func (c *FrameCache) store(entry cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[entry.path]; ok {
		el.Value = entry
		c.order.MoveToFront(el)
		return
	}
	c.entries[entry.path] = c.order.PushFront(entry)
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(cacheEntry).path)
	}
}

// Evict removes one path from the cache. Unknown paths are ignored.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[path]; ok {
		c.order.Remove(el)
		delete(c.entries, path)
	}
}

// Clear drops every cached image.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *FrameCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the most frames the cache keeps.
func (c *FrameCache) Capacity() int {
	return c.capacity
}

// ImageInfo describes a frame file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder that recognised the data, e.g. "png", "jpeg" or "bmp".
	Format string `json:"format"`

	// Channels is 1 for grayscale buffers, 3 for opaque color, 4 with alpha.
	Channels int `json:"channels"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path through the cache and describes it.
func LoadImageInfo(cache *FrameCache, path string) (*ImageInfo, error) {
	entry, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	bounds := entry.img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        entry.format,
		Channels:      Channels(entry.img),
		FileSizeBytes: entry.size,
	}, nil
}

// DecodeBase64 decodes an image supplied inline, with or without a
// "data:image/...;base64," prefix.
func DecodeBase64(data string) (image.Image, error) {
	if i := strings.Index(data, ","); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, scanerr.NewIOError("failed to decode base64 image data", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, scanerr.NewIOError("failed to decode image", err)
	}
	return img, nil
}

// NormalizePath strips a file:// scheme, which mobile hosts put in front of
// captured image paths.
func NormalizePath(uri string) (string, error) {
	path := strings.TrimPrefix(uri, "file://")
	if path == "" {
		return "", scanerr.NewInvalidArgument("empty image path", nil)
	}
	if !filepath.IsAbs(path) {
		return "", scanerr.NewInvalidArgument(fmt.Sprintf("image path must be absolute: %s", uri), nil)
	}
	return filepath.Clean(path), nil
}
