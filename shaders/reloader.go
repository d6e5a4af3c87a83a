package shaders

import (
	"fmt"
	"sync"

	"github.com/bloeys/nrend/logging"
	"github.com/fsnotify/fsnotify"
)

// BuildFunc compiles a program from a loaded source. It is what Reloader calls on every change,
// so it should do all the setup the program needs (uniform blocks, texture units...)
type BuildFunc func(src Source) (*ShaderProgram, error)

type reloadEntry struct {
	program   *ShaderProgram
	build     BuildFunc
	callbacks []func(*ShaderProgram)
}

// Reloader recompiles shaders when their file in a DirSources directory changes.
//
// A fsnotify goroutine only queues the names of changed shaders; all GPU work happens in Poll,
// which must be called from the render thread. A program that fails to recompile is kept as is.
type Reloader struct {
	sources *DirSources
	watcher *fsnotify.Watcher

	// entries is only touched by the render thread
	entries map[string]*reloadEntry

	pendingLock sync.Mutex
	pending     map[string]struct{}

	wg sync.WaitGroup
}

// Watch registers program for reloading. On a successful reload the new program is moved into
// program (so existing pointers stay valid) and onReload is called so uniforms can be re-resolved
func (r *Reloader) Watch(name string, program *ShaderProgram, build BuildFunc, onReload func(*ShaderProgram)) {

	e, ok := r.entries[name]
	if !ok {
		e = &reloadEntry{program: program, build: build}
		r.entries[name] = e
	}

	if onReload != nil {
		e.callbacks = append(e.callbacks, onReload)
	}
}

// MarkChanged queues a shader for reloading on the next Poll. Safe to call from any goroutine
func (r *Reloader) MarkChanged(name string) {
	r.pendingLock.Lock()
	r.pending[name] = struct{}{}
	r.pendingLock.Unlock()
}

// Poll reloads every changed shader and returns the number of programs that were swapped
func (r *Reloader) Poll() int {

	r.pendingLock.Lock()
	if len(r.pending) == 0 {
		r.pendingLock.Unlock()
		return 0
	}

	changed := r.pending
	r.pending = make(map[string]struct{})
	r.pendingLock.Unlock()

	swapped := 0
	for name := range changed {

		e, ok := r.entries[name]
		if !ok {
			continue
		}

		if err := r.reload(name, e); err != nil {
			logging.ErrLog.Printf("Failed to reload shader '%s', keeping the previous version. Err: %v\n", name, err)
			continue
		}

		logging.InfoLog.Printf("Reloaded shader '%s'\n", name)
		swapped++
	}

	return swapped
}

func (r *Reloader) reload(name string, e *reloadEntry) error {

	src, err := r.sources.Load(name)
	if err != nil {
		return err
	}

	newProg, err := e.build(src)
	if err != nil {
		return err
	}

	e.program.Delete()
	*e.program = newProg.Move()

	for _, cb := range e.callbacks {
		cb(e.program)
	}

	return nil
}

func (r *Reloader) watch() {

	defer r.wg.Done()

	for {
		select {

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if name, isShader := r.sources.NameFromPath(event.Name); isShader {
				r.MarkChanged(name)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}

			logging.WarnLog.Println("Shader watcher error: ", err)
		}
	}
}

// Close stops watching the directory. Registered programs are not deleted
func (r *Reloader) Close() error {
	err := r.watcher.Close()
	r.wg.Wait()
	return err
}

func NewReloader(sources *DirSources) (*Reloader, error) {

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader watcher: %w", err)
	}

	if err := watcher.Add(sources.Dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch shader directory '%s': %w", sources.Dir, err)
	}

	r := &Reloader{
		sources: sources,
		watcher: watcher,
		entries: make(map[string]*reloadEntry),
		pending: make(map[string]struct{}),
	}

	r.wg.Add(1)
	go r.watch()

	return r, nil
}
