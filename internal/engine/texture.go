package engine

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/roach88/cooksync/internal/cook"
)

// TextureRenderer renders a material's upstream texture network to a flat
// image file.
type TextureRenderer interface {
	RenderTexture(fs afero.Fs, mat *cook.Material, path string) error
}

// TextureOptions controls texture resolution.
type TextureOptions struct {
	// Bake renders the texture on every sync.
	Bake bool
	// Reuse falls back to a previously baked file still on disk.
	Reuse bool
	// Dir is the scene's source-images folder.
	Dir string
}

// TextureBaker resolves the image file a material's file node should read.
type TextureBaker struct {
	fs       afero.Fs
	renderer TextureRenderer
	opts     TextureOptions
	logger   *slog.Logger
}

// NewTextureBaker creates a baker writing into opts.Dir on fs. A nil
// renderer disables baking; a nil logger uses slog.Default().
func NewTextureBaker(fs afero.Fs, renderer TextureRenderer, opts TextureOptions, logger *slog.Logger) *TextureBaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextureBaker{fs: fs, renderer: renderer, opts: opts, logger: logger}
}

// TexturePath returns where the material's baked texture lives:
// <dir>/<asset>_<material id>.png.
func (b *TextureBaker) TexturePath(asset string, mat *cook.Material) string {
	name := fmt.Sprintf("%s_%d.png", cook.SanitizeNodeName(asset, "asset"), mat.ID)
	return filepath.Join(b.opts.Dir, name)
}

// Resolve returns the texture file for mat, or "" when the material has no
// texture or no usable file exists.
//
// With Bake set the texture is rendered first. A failed render is logged,
// and with Reuse set an existing file at the same path is used instead.
func (b *TextureBaker) Resolve(asset string, mat *cook.Material) string {
	if mat.Texture() == "" {
		return ""
	}
	path := b.TexturePath(asset, mat)

	if b.opts.Bake && b.renderer != nil {
		err := b.render(mat, path)
		if err == nil {
			return path
		}
		b.logger.Error("texture render failed",
			"material", mat.Name,
			"path", path,
			"error", err,
		)
	}

	if b.opts.Reuse {
		if ok, _ := afero.Exists(b.fs, path); ok {
			b.logger.Debug("reusing baked texture",
				"material", mat.Name,
				"path", path,
			)
			return path
		}
	}
	return ""
}

func (b *TextureBaker) render(mat *cook.Material, path string) error {
	if err := b.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	return b.renderer.RenderTexture(b.fs, mat, path)
}

// CopyRenderer "renders" a texture by copying the image file the material's
// texture parameter names. It serves cooks whose texture networks were
// already flattened by the cook engine.
type CopyRenderer struct{}

// RenderTexture implements TextureRenderer.
func (CopyRenderer) RenderTexture(fs afero.Fs, mat *cook.Material, path string) error {
	src := mat.Texture()
	data, err := afero.ReadFile(fs, src)
	if err != nil {
		return fmt.Errorf("read texture source: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write texture: %w", err)
	}
	return nil
}
