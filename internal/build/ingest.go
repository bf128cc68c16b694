package build

import (
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"git.home.luguber.info/inful/sitekit/internal/asset"
	"git.home.luguber.info/inful/sitekit/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekit/internal/kit"
	"git.home.luguber.info/inful/sitekit/internal/logfields"
	"git.home.luguber.info/inful/sitekit/internal/media"
	"git.home.luguber.info/inful/sitekit/internal/processors"
)

// kitRoot is the placeholder root kit HTML is canonicalized against, turning
// relative URLs into root-relative ones under the kit's mount.
const kitRoot = "/"

// Inventory is the asset pool of one build.
type Inventory struct {
	// Pages are built and written, ordered by path.
	Pages []*asset.Asset
	// Parts are stored in the Context instead of being built, ordered by path.
	Parts []*asset.Asset
}

// IsPart reports whether any element of the logical path starts with "_".
func IsPart(logical string) bool {
	for _, elem := range strings.Split(logical, "/") {
		if strings.HasPrefix(elem, "_") {
			return true
		}
	}
	return false
}

// Ingester reads source and kit trees into an Inventory.
type Ingester struct {
	// CanonicalizeKits rewrites URLs in kit HTML to root-relative form.
	CanonicalizeKits bool
	Logger           *slog.Logger
}

// Ingest loads kits in order, then the source tree. Later trees replace
// assets with the same logical path.
func (in *Ingester) Ingest(sourceRoot string, kits []kit.Mounted) (*Inventory, error) {
	log := in.Logger
	if log == nil {
		log = slog.Default()
	}
	pool := map[string]*asset.Asset{}

	for _, k := range kits {
		assets, err := LoadTree(k.Dir, k.Mount)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryKit, "failed to read kit").
				WithContext("kit", k.Name).
				Build()
		}
		for _, a := range assets {
			a.SetOrigin(k.Name)
			if in.CanonicalizeKits {
				in.canonicalizeKitAsset(log, a, k)
			}
			if prev, ok := pool[a.Path()]; ok {
				log.Warn("Kit asset replaces earlier kit asset", logfields.Asset(a.Path()), logfields.Kit(k.Name), slog.String("replaced", prev.Origin()))
			}
			pool[a.Path()] = a
		}
	}

	sources, err := LoadTree(sourceRoot, "")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read source directory").
			WithContext("path", sourceRoot).
			Build()
	}
	for _, a := range sources {
		if prev, ok := pool[a.Path()]; ok {
			log.Warn("Source asset overrides kit asset", logfields.Asset(a.Path()), logfields.Kit(prev.Origin()))
		}
		pool[a.Path()] = a
	}

	inv := &Inventory{}
	for _, a := range pool {
		if IsPart(a.Path()) {
			inv.Parts = append(inv.Parts, a)
		} else {
			inv.Pages = append(inv.Pages, a)
		}
	}
	byPath := func(a, b *asset.Asset) int { return strings.Compare(a.Path(), b.Path()) }
	slices.SortFunc(inv.Pages, byPath)
	slices.SortFunc(inv.Parts, byPath)
	return inv, nil
}

func (in *Ingester) canonicalizeKitAsset(log *slog.Logger, a *asset.Asset, k kit.Mounted) {
	if a.MediaType() != media.HTML {
		return
	}
	text, err := a.Text()
	if err != nil {
		return
	}
	out, err := processors.CanonicalizeHTML(text, kitRoot, a.Path(), false)
	if err != nil {
		log.Warn("Failed to canonicalize kit asset", logfields.Asset(a.Path()), logfields.Kit(k.Name), logfields.Error(err))
		return
	}
	a.SetText(out)
}

// LoadTree reads every regular file under root. Logical paths are
// slash-separated, relative to root and prefixed with mount. Version control
// directories are skipped.
func LoadTree(root, mount string) ([]*asset.Asset, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, &fs.PathError{Op: "walk", Path: root, Err: fs.ErrInvalid}
	}

	var out []*asset.Asset
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out = append(out, readAsset(path.Join(mount, filepath.ToSlash(rel)), data))
		return nil
	})
	return out, err
}

// readAsset creates an asset and decodes it as text when its type is textual,
// or, for unregistered extensions, when its content sniffs as text. Textual
// files that are not valid UTF-8 stay binary.
func readAsset(logical string, data []byte) *asset.Asset {
	mt := media.ForPath(logical)
	a := asset.NewBinary(logical, mt, data)
	if looksTextual(mt, data) {
		_ = a.DecodeText()
	}
	return a
}

func looksTextual(mt media.MediaType, data []byte) bool {
	if !mt.IsUnknown() {
		return mt.IsTextual()
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
