package controls

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"product-viewer/internal/logger"
)

// ControlFile is the TOML document watched by FileBinding. Absent keys are
// left unchanged.
//
//	exposure = 1.2
//	metalness = 0.4
//	background = "#202020"
type ControlFile struct {
	Exposure   *float64 `toml:"exposure"`
	Metalness  *float64 `toml:"metalness"`
	Background *string  `toml:"background"`
}

// ReadControlFile decodes the control file at path.
func ReadControlFile(path string) (ControlFile, error) {
	var cf ControlFile
	data, err := os.ReadFile(path)
	if err != nil {
		return cf, err
	}
	if err := toml.Unmarshal(data, &cf); err != nil {
		return cf, fmt.Errorf("%s: %w", path, err)
	}
	return cf, nil
}

// Apply sets every present field on p.
func (cf ControlFile) Apply(p *Panel) error {
	if cf.Exposure != nil {
		p.SetExposure(*cf.Exposure)
	}
	if cf.Metalness != nil {
		p.SetMetalness(*cf.Metalness)
	}
	if cf.Background != nil {
		return p.SetBackgroundHex(*cf.Background)
	}
	return nil
}

// FileBinding re-reads a control file whenever it changes on disk and
// applies it to the panel.
type FileBinding struct {
	Path string
	Log  *zap.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewFileBinding(path string, log *zap.Logger) *FileBinding {
	return &FileBinding{Path: path, Log: log}
}

// Bind applies the file once if it exists and starts watching it. The
// parent directory is watched so that editors which replace the file are
// handled.
func (f *FileBinding) Bind(p *Panel) error {
	log := logger.Named(f.Log, "controlfile")
	path, err := filepath.Abs(f.Path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("control file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("control file watcher: %w", err)
	}
	f.watcher = watcher
	f.done = make(chan struct{})

	if err := f.reload(path, p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("control file not applied", zap.String("path", path), zap.Error(err))
	}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case <-f.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				err := f.reload(path, p)
				if err != nil {
					log.Warn("control file not applied", zap.String("path", path), zap.Error(err))
				} else {
					log.Debug("control file applied", zap.String("path", path))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error("control file watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

func (f *FileBinding) reload(path string, p *Panel) error {
	cf, err := ReadControlFile(path)
	if err != nil {
		return err
	}
	return cf.Apply(p)
}

// Close stops watching. It is safe to call on an unbound binding.
func (f *FileBinding) Close() error {
	if f.watcher == nil {
		return nil
	}
	close(f.done)
	err := f.watcher.Close()
	f.wg.Wait()
	f.watcher = nil
	return err
}
