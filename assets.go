package easel

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"runtime"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// AssetLoader decodes images and atlas descriptions from a file system and
// keeps them by path. Loading happens before the engine starts ticking; a
// failed load is reported to the caller and nothing is cached for that path.
type AssetLoader struct {
	fsys fs.FS

	mu     sync.Mutex
	images map[string]*ebiten.Image
}

// NewAssetLoader creates a loader reading from fsys, typically an embed.FS or
// os.DirFS.
func NewAssetLoader(fsys fs.FS) *AssetLoader {
	return &AssetLoader{
		fsys:   fsys,
		images: make(map[string]*ebiten.Image),
	}
}

// LoadImages decodes every path in parallel. PNG, JPEG, BMP and WebP are
// supported. The first failure cancels the remaining decodes and is returned.
// Paths already loaded are skipped.
func (l *AssetLoader) LoadImages(ctx context.Context, paths ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, path := range paths {
		if _, ok := l.Image(path); ok {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := l.decode(path)
			if err != nil {
				return err
			}
			l.mu.Lock()
			l.images[path] = ebiten.NewImageFromImage(img)
			l.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// Image returns a previously loaded image.
func (l *AssetLoader) Image(path string) (*ebiten.Image, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	img, ok := l.images[path]
	return img, ok
}

// LoadAtlas reads TexturePacker JSON at jsonPath, loads the page images and
// returns the parsed atlas.
func (l *AssetLoader) LoadAtlas(ctx context.Context, jsonPath string, pagePaths ...string) (*Atlas, error) {
	data, err := fs.ReadFile(l.fsys, jsonPath)
	if err != nil {
		return nil, fmt.Errorf("easel: read atlas %s: %w", jsonPath, err)
	}
	if err := l.LoadImages(ctx, pagePaths...); err != nil {
		return nil, err
	}
	pages := make([]Image, len(pagePaths))
	for i, p := range pagePaths {
		img, _ := l.Image(p)
		pages[i] = img
	}
	return LoadAtlas(data, pages)
}

// Reload decodes path again and copies the new pixels into the already
// loaded image, so animations holding it see the change. An image that was
// never loaded is loaded fresh. A size change is rejected and the old pixels
// are kept.
func (l *AssetLoader) Reload(path string) error {
	img, err := l.decode(path)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	old, ok := l.images[path]
	if !ok {
		l.images[path] = ebiten.NewImageFromImage(img)
		return nil
	}
	if old.Bounds().Size() != img.Bounds().Size() {
		return fmt.Errorf("easel: reload %s: size changed from %v to %v", path, old.Bounds().Size(), img.Bounds().Size())
	}
	fresh := ebiten.NewImageFromImage(img)
	defer fresh.Deallocate()
	old.Clear()
	var op ebiten.DrawImageOptions
	op.Blend = ebiten.BlendCopy
	old.DrawImage(fresh, &op)
	return nil
}

// ReadFile returns the raw bytes at path.
func (l *AssetLoader) ReadFile(path string) ([]byte, error) {
	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("easel: read %s: %w", path, err)
	}
	return data, nil
}

// Release deallocates and forgets every loaded image.
func (l *AssetLoader) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for path, img := range l.images {
		img.Deallocate()
		delete(l.images, path)
	}
}

func (l *AssetLoader) decode(path string) (image.Image, error) {
	f, err := l.fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("easel: open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("easel: decode %s: %w", path, err)
	}
	return img, nil
}
