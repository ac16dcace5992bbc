package termdraw

import (
	"fmt"
	"image"
	"sync"

	"github.com/nfnt/resize"
)

// Constants for image resizing
const (
	DefaultCacheSize = 32 // Maximum number of cached resized images
)

// ResizeCache caches resized still images so repeated renders of the same
// source at the same size skip resampling
type ResizeCache struct {
	cache       map[string]*cacheEntry
	accessOrder []string // LRU tracking
	mutex       sync.RWMutex
	maxSize     int
}

type cacheEntry struct {
	image image.Image
}

// NewResizeCache creates an LRU cache holding at most maxSize images
func NewResizeCache(maxSize int) *ResizeCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &ResizeCache{
		cache:       make(map[string]*cacheEntry),
		accessOrder: make([]string, 0),
		maxSize:     maxSize,
	}
}

var globalResizeCache = NewResizeCache(DefaultCacheSize)

// generateCacheKey creates a unique key for resize parameters
func generateCacheKey(width, height uint, key string, srcBounds image.Rectangle) string {
	return fmt.Sprintf("%dx%d_%s_%dx%d", width, height, key, srcBounds.Dx(), srcBounds.Dy())
}

// Resample scales img to exactly width x height pixels with nearest-neighbor
// sampling. Images already at the target size are returned unchanged.
func Resample(img image.Image, width, height uint) image.Image {
	bounds := img.Bounds()
	if uint(bounds.Dx()) == width && uint(bounds.Dy()) == height {
		return img
	}
	return resize.Resize(width, height, img, resize.NearestNeighbor)
}

// ResizeImage resamples img like Resample, memoizing the result in the global
// cache under key. An empty key bypasses the cache.
func ResizeImage(img image.Image, width, height uint, key string) image.Image {
	if key == "" {
		return Resample(img, width, height)
	}
	return globalResizeCache.Resize(img, width, height, key)
}

// Resize returns the cached resample of img or computes and stores it
func (rc *ResizeCache) Resize(img image.Image, width, height uint, key string) image.Image {
	bounds := img.Bounds()

	// Skip resize if already correct size
	if uint(bounds.Dx()) == width && uint(bounds.Dy()) == height {
		return img
	}

	cacheKey := generateCacheKey(width, height, key, bounds)
	if cached, ok := rc.get(cacheKey); ok {
		return cached
	}

	resized := Resample(img, width, height)
	rc.set(cacheKey, resized)
	return resized
}

// Len returns the number of cached images
func (rc *ResizeCache) Len() int {
	rc.mutex.RLock()
	defer rc.mutex.RUnlock()
	return len(rc.cache)
}

func (rc *ResizeCache) get(key string) (image.Image, bool) {
	rc.mutex.RLock()
	entry, exists := rc.cache[key]
	rc.mutex.RUnlock()
	if !exists {
		return nil, false
	}
	rc.mutex.Lock()
	if _, exists := rc.cache[key]; exists {
		rc.touch(key)
	}
	rc.mutex.Unlock()
	return entry.image, true
}

// touch moves key to the front of the access order (most recently used). It
// must be called with the write lock held.
func (rc *ResizeCache) touch(key string) {
	for i, k := range rc.accessOrder {
		if k == key {
			rc.accessOrder = append(rc.accessOrder[:i], rc.accessOrder[i+1:]...)
			break
		}
	}
	rc.accessOrder = append([]string{key}, rc.accessOrder...)
}

// set adds or updates an entry in the cache with LRU eviction
func (rc *ResizeCache) set(key string, img image.Image) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if entry, exists := rc.cache[key]; exists {
		entry.image = img
		rc.touch(key)
		return
	}

	for len(rc.cache) >= rc.maxSize {
		rc.evictLRU()
	}

	rc.cache[key] = &cacheEntry{image: img}
	rc.accessOrder = append([]string{key}, rc.accessOrder...)
}

// evictLRU removes the least recently used entry
func (rc *ResizeCache) evictLRU() {
	if len(rc.accessOrder) == 0 {
		return
	}

	lruKey := rc.accessOrder[len(rc.accessOrder)-1]
	rc.accessOrder = rc.accessOrder[:len(rc.accessOrder)-1]
	delete(rc.cache, lruKey)
}

// Clear empties the cache
func (rc *ResizeCache) Clear() {
	rc.mutex.Lock()
	rc.cache = make(map[string]*cacheEntry)
	rc.accessOrder = make([]string, 0)
	rc.mutex.Unlock()
}

// ClearResizeCache clears the global resize cache to free memory
func ClearResizeCache() {
	globalResizeCache.Clear()
}
