package render

import (
	"bytes"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Renderer serves planet images from memory, then disk, drawing them on a miss.
type Renderer struct {
	outputDir string
	size      int
	cache     *lru.Cache[string, []byte]
	logger    *zap.Logger
}

// NewRenderer 创建渲染器
func NewRenderer(outputDir string, size, cacheSize int, logger *zap.Logger) (*Renderer, error) {
	if size <= 0 {
		return nil, errors.New("image size must be positive")
	}
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		outputDir: outputDir,
		size:      size,
		cache:     cache,
		logger:    logger,
	}, nil
}

// Filename returns the file name an image is stored under. The hash suffix
// keeps names that sanitize to the same text apart.
func Filename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprintf("%s-%08x.png", strings.Trim(b.String(), "."), h.Sum32())
}

// Image returns the PNG for a planet. It returns ErrMissingData when the name,
// radius or temperature is missing, and a *RenderError when drawing or storing fails.
func (r *Renderer) Image(name string, radius, eqTemp *float64) ([]byte, error) {
	if strings.TrimSpace(name) == "" || radius == nil || eqTemp == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingData, name)
	}

	filename := Filename(name)
	if data, ok := r.cache.Get(filename); ok {
		return data, nil
	}

	path := filepath.Join(r.outputDir, filename)
	if data, err := os.ReadFile(path); err == nil {
		r.cache.Add(filename, data)
		return data, nil
	}

	var buf bytes.Buffer
	if err := Encode(&buf, Planet{Name: name, Radius: *radius, EqTemp: *eqTemp}, r.size); err != nil {
		return nil, err
	}
	data := buf.Bytes()

	if err := r.store(path, data); err != nil {
		// the image is still usable without the disk copy
		r.logger.Warn("failed to store planet image", zap.String("path", path), zap.Error(err))
	}
	r.cache.Add(filename, data)
	r.logger.Debug("planet image rendered", zap.String("planet", name), zap.Int("bytes", len(data)))
	return data, nil
}

func (r *Renderer) store(path string, data []byte) error {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return &RenderError{Name: path, Err: err}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &RenderError{Name: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &RenderError{Name: path, Err: err}
	}
	return nil
}

// Cached reports whether the image is in the in-memory cache.
func (r *Renderer) Cached(name string) bool {
	return r.cache.Contains(Filename(name))
}
