// Package dotfiles deploys a personal configuration tree into the home directory.
//
// Deployment has two stages. The source, a git remote or an archive, is fetched
// into a staging directory that is cleared first. The staged tree is then mirrored
// into the destination with version-control metadata left behind. A failed fetch
// fails the whole deployment before anything in the destination is touched.
package dotfiles

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/afero"

	"setup-ubuntu/internal/errors"
	"setup-ubuntu/internal/logger"
)

// Request describes one deployment.
type Request struct {
	Source     string // git remote, or archive path/URL
	Branch     string // git only; empty means the remote's default branch
	StagingDir string
	Dest       string
}

// Result summarizes a finished deployment.
type Result struct {
	Source string
	Root   string // staged tree that was mirrored
	MirrorStats
}

// Deployer fetches and mirrors dotfiles. Staging always happens on the host
// filesystem; mirroring goes through fs.
type Deployer struct {
	fs afero.Fs
}

// NewDeployer returns a Deployer mirroring through fs.
func NewDeployer(fs afero.Fs) *Deployer {
	return &Deployer{fs: fs}
}

// Deploy fetches req.Source into req.StagingDir and mirrors it into req.Dest.
func (d *Deployer) Deploy(ctx context.Context, req Request) (Result, error) {
	if req.Source == "" {
		return Result{}, errors.New(errors.ErrDeployFailed, "no dotfiles source configured")
	}

	root, err := d.fetch(ctx, req)
	if err != nil {
		return Result{}, errors.Wrapf(err, errors.ErrDeployFailed, "failed to fetch %s", req.Source)
	}

	stats, err := Mirror(d.fs, root, req.Dest)
	if err != nil {
		return Result{}, errors.Wrapf(err, errors.ErrDeployFailed, "failed to place dotfiles into %s", req.Dest)
	}

	logger.Info("[INFO] Placed %d files and %d directories into %s\n", stats.Files, stats.Dirs, req.Dest)
	return Result{Source: req.Source, Root: root, MirrorStats: stats}, nil
}

// fetch clears the staging directory and fills it from the source, returning the
// root of the staged tree.
func (d *Deployer) fetch(ctx context.Context, req Request) (string, error) {
	if err := os.RemoveAll(req.StagingDir); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(req.StagingDir), 0755); err != nil {
		return "", err
	}

	if IsArchive(req.Source) {
		return fetchArchive(req.Source, req.StagingDir)
	}
	return req.StagingDir, cloneRepository(ctx, req.Source, req.Branch, req.StagingDir)
}

// cloneRepository clones url into dir, shallow for network remotes.
func cloneRepository(ctx context.Context, url, branch, dir string) error {
	logger.Info("[INFO] Cloning %s\n", url)
	opts := &git.CloneOptions{URL: url}
	if isRemote(url) {
		opts.Depth = 1
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return err
	}
	if head, err := repo.Head(); err == nil {
		logger.Debug("[DEBUG] Cloned %s at %s\n", url, head.Hash().String()[:8])
	}
	return nil
}

// fetchArchive extracts a local or downloaded archive into dir.
func fetchArchive(source, dir string) (string, error) {
	archive := source
	if isRemote(source) {
		archive = filepath.Join(filepath.Dir(dir), filepath.Base(dir)+"-"+path.Base(source))
		logger.Info("[INFO] Downloading %s\n", source)
		if err := downloadFile(source, archive); err != nil {
			return "", err
		}
		defer os.Remove(archive)
	}
	logger.Info("[INFO] Extracting %s\n", archive)
	return ExtractArchive(archive, dir)
}

func isRemote(source string) bool {
	for _, prefix := range []string{"http://", "https://", "ssh://", "git://", "git@"} {
		if strings.HasPrefix(source, prefix) {
			return true
		}
	}
	return false
}
