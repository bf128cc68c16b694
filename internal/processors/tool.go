package processors

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitekit/internal/asset"
	"git.home.luguber.info/inful/sitekit/internal/buildctx"
	"git.home.luguber.info/inful/sitekit/internal/media"
)

// ErrCommandNotFound is wrapped when an external tool is not on PATH.
var ErrCommandNotFound = errors.New("command not found")

// runTool feeds input to an external command and returns its stdout.
func runTool(t ToolOptions, dir, input string, args ...string) (string, error) {
	bin, err := exec.LookPath(t.Command)
	if err != nil {
		return "", CompilationError(ErrCommandNotFound, "%s", t.Command)
	}
	cmd := exec.Command(bin, append(args, t.Args...)...)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = t.Command + " failed"
		}
		return "", CompilationError(err, "%s", msg)
	}
	return stdout.String(), nil
}

func assetDir(root string, a *asset.Asset) string {
	if root == "" {
		return ""
	}
	dir := filepath.Join(root, filepath.FromSlash(path.Dir(a.Path())))
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return root
	}
	return dir
}

// SCSS compiles text/x-scss assets with the sass command line.
type SCSS struct {
	Tool     ToolOptions
	LoadPath string
}

func (s *SCSS) Process(_ *buildctx.Context, a *asset.Asset) error {
	if a.MediaType() != media.SCSS {
		return nil
	}
	src, err := textOf(a)
	if err != nil {
		return err
	}
	args := []string{"--stdin", "--no-source-map"}
	if s.LoadPath != "" {
		args = append(args, "--load-path="+s.LoadPath)
	}
	if s.Tool.Minify {
		args = append(args, "--style=compressed")
	}
	out, err := runTool(s.Tool, assetDir(s.LoadPath, a), src, args...)
	if err != nil {
		return err
	}
	a.SetText(out)
	a.SetMediaType(media.CSS)
	return nil
}

// JSBundle bundles JavaScript entry points with esbuild, resolving imports
// relative to the asset's source directory.
type JSBundle struct {
	Tool       ToolOptions
	SourceRoot string
}

func (j *JSBundle) Process(_ *buildctx.Context, a *asset.Asset) error {
	if a.MediaType() != media.JavaScript {
		return nil
	}
	src, err := textOf(a)
	if err != nil {
		return err
	}
	args := []string{"--bundle", "--format=esm", "--sourcefile=" + path.Base(a.Path())}
	if j.Tool.Minify {
		args = append(args, "--minify")
	}
	out, err := runTool(j.Tool, assetDir(j.SourceRoot, a), src, args...)
	if err != nil {
		return err
	}
	a.SetText(out)
	return nil
}

// MinifyJS minifies final JavaScript with esbuild.
type MinifyJS struct {
	Tool ToolOptions
}

func (m *MinifyJS) Process(_ *buildctx.Context, a *asset.Asset) error {
	if a.MediaType() != media.JavaScript {
		return nil
	}
	src, err := textOf(a)
	if err != nil {
		return err
	}
	out, err := runTool(m.Tool, "", src, "--minify", "--loader=js")
	if err != nil {
		return err
	}
	a.SetText(out)
	return nil
}
