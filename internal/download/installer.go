package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/bnema/modctl/internal/gamebanana"
	"github.com/bnema/modctl/internal/mods"
)

var (
	ErrInProgress = errors.New("download already in progress")
	ErrNotActive  = errors.New("no active download")
)

// Source is a remote mod archive to install
type Source struct {
	ModID        int64
	Name         string
	URL          string
	ThumbnailURL string
}

// FromCatalog builds a source from a catalog entry
func FromCatalog(m gamebanana.Mod) Source {
	return Source{
		ModID:        m.ID,
		Name:         m.Name,
		URL:          m.DownloadURL,
		ThumbnailURL: m.ThumbnailURL,
	}
}

// Loader turns an installed folder into a registry record
type Loader interface {
	Load(modDir string) (mods.ModInfo, error)
}

// Installer downloads archives into the install location and registers them
type Installer struct {
	tracker *Tracker
	fetcher *Fetcher
	loader  Loader
	root    string
	log     *log.Logger

	mu     sync.Mutex
	active map[int64]context.CancelFunc
	wg     sync.WaitGroup
}

// NewInstaller creates an installer writing mods under root
func NewInstaller(tracker *Tracker, fetcher *Fetcher, loader Loader, root string, logger *log.Logger) *Installer {
	if logger == nil {
		logger = log.Default()
	}
	return &Installer{
		tracker: tracker,
		fetcher: fetcher,
		loader:  loader,
		root:    root,
		log:     logger,
		active:  make(map[int64]context.CancelFunc),
	}
}

// Start installs src in the background. Only one download per mod id can be
// in flight.
func (i *Installer) Start(ctx context.Context, src Source) error {
	ctx, cancel, err := i.claim(ctx, src.ModID)
	if err != nil {
		return err
	}

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		defer i.release(src.ModID, cancel)
		if _, err := i.install(ctx, src); err != nil {
			i.log.Debug("Background install ended", "mod_id", src.ModID, "error", err)
		}
	}()
	return nil
}

// Install downloads and registers src, blocking until done
func (i *Installer) Install(ctx context.Context, src Source) (mods.ModInfo, error) {
	ctx, cancel, err := i.claim(ctx, src.ModID)
	if err != nil {
		return mods.ModInfo{}, err
	}
	defer i.release(src.ModID, cancel)
	return i.install(ctx, src)
}

// Cancel stops an in-flight download of modID
func (i *Installer) Cancel(modID int64) error {
	i.mu.Lock()
	cancel, ok := i.active[modID]
	i.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrNotActive, modID)
	}
	cancel()
	return nil
}

// CancelAll stops every in-flight download. Each one ends with a cancelled
// error event.
func (i *Installer) CancelAll() {
	i.mu.Lock()
	defer i.mu.Unlock()

	for modID, cancel := range i.active {
		i.log.Debug("Cancelling download", "mod_id", modID)
		cancel()
	}
}

// Active reports whether modID is being downloaded
func (i *Installer) Active(modID int64) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.active[modID]
	return ok
}

// Wait blocks until every background install has returned
func (i *Installer) Wait() {
	i.wg.Wait()
}

func (i *Installer) claim(ctx context.Context, modID int64) (context.Context, context.CancelFunc, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.active[modID]; ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrInProgress, modID)
	}
	ctx, cancel := context.WithCancel(ctx)
	i.active[modID] = cancel
	return ctx, cancel, nil
}

func (i *Installer) release(modID int64, cancel context.CancelFunc) {
	cancel()
	i.mu.Lock()
	delete(i.active, modID)
	i.mu.Unlock()
}

func (i *Installer) install(ctx context.Context, src Source) (mods.ModInfo, error) {
	if src.URL == "" {
		d := i.tracker.Begin(src.ModID, src.Name, 0, src.ThumbnailURL)
		err := errors.New("no download URL")
		_ = d.Fail(err)
		return mods.ModInfo{}, err
	}

	i.log.Info("Downloading mod", "mod_id", src.ModID, "name", src.Name, "url", src.URL)

	body, length, openErr := i.fetcher.Open(ctx, src.URL)
	d := i.tracker.Begin(src.ModID, src.Name, length, src.ThumbnailURL)
	if openErr != nil {
		return mods.ModInfo{}, i.abort(ctx, d, openErr)
	}

	if err := os.MkdirAll(i.root, 0755); err != nil {
		_ = body.Close()
		return mods.ModInfo{}, i.abort(ctx, d, fmt.Errorf("failed to create install location: %w", err))
	}

	tmp, err := os.CreateTemp(i.root, fmt.Sprintf(".download-%d-*.zip", src.ModID))
	if err != nil {
		_ = body.Close()
		return mods.ModInfo{}, i.abort(ctx, d, fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	written, err := copyWithProgress(ctx, tmp, body, length, func(n, total int64) {
		_ = d.Progress(n, total, StepDownloading)
	})
	_ = body.Close()
	_ = tmp.Close()
	if err != nil {
		return mods.ModInfo{}, i.abort(ctx, d, fmt.Errorf("failed to write file: %w", err))
	}
	i.log.Debug("Download complete", "mod_id", src.ModID, "bytes_written", written)

	staging, err := os.MkdirTemp(i.root, fmt.Sprintf(".staging-%d-*", src.ModID))
	if err != nil {
		return mods.ModInfo{}, i.abort(ctx, d, fmt.Errorf("failed to create staging dir: %w", err))
	}
	defer func() { _ = os.RemoveAll(staging) }()

	extracted, err := extractZip(tmpPath, staging, func(n, total int64) {
		_ = d.Progress(n, total, StepExtracting)
	})
	if err != nil {
		return mods.ModInfo{}, i.abort(ctx, d, err)
	}
	if err := ctx.Err(); err != nil {
		return mods.ModInfo{}, i.abort(ctx, d, err)
	}

	_ = d.Progress(extracted, extracted, StepInstalling)
	dest := i.destination(src)
	if err := os.Rename(contentRoot(staging), dest); err != nil {
		return mods.ModInfo{}, i.abort(ctx, d, fmt.Errorf("failed to move mod into place: %w", err))
	}

	info, err := i.loader.Load(dest)
	if err != nil {
		_ = os.RemoveAll(dest)
		return mods.ModInfo{}, i.abort(ctx, d, err)
	}

	if err := d.Finish(info); err != nil {
		_ = os.RemoveAll(dest)
		return mods.ModInfo{}, err
	}

	i.log.Info("Mod installed", "mod_id", src.ModID, "id", info.ID, "path", dest)
	return info, nil
}

// destination picks a free folder in the install location: the catalog
// name, then name-<mod_id>, then name-<mod_id>-2 and so on
func (i *Installer) destination(src Source) string {
	base := filepath.Join(i.root, folderName(src.Name, src.ModID))
	candidate := base
	for n := 1; ; n++ {
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
		if n == 1 {
			candidate = fmt.Sprintf("%s-%d", base, src.ModID)
		} else {
			candidate = fmt.Sprintf("%s-%d-%d", base, src.ModID, n)
		}
	}
}

// abort fails the download, reporting context cancellation as a cancel
func (i *Installer) abort(ctx context.Context, d *Download, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		_ = d.Cancel()
		return ErrCancelled
	}
	_ = d.Fail(err)
	return err
}
