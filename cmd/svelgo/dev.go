package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/svelgo/svelgo/cmd/svelgo/internal/config"
	"github.com/svelgo/svelgo/cmd/svelgo/internal/livereload"
	"github.com/svelgo/svelgo/cmd/svelgo/internal/project"
)

func newDevCommand() *cobra.Command {
	var port int
	var host string

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server with live reload",
		Long:  `Compiles components in development mode, serves the project over HTTP, watches the source tree and pushes a reload to connected browsers on every change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port, host)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Server port (default from svelgo.yaml)")
	cmd.Flags().StringVar(&host, "host", "", "Server host (default from svelgo.yaml)")

	return cmd
}

type devServer struct {
	srcDir  string
	outDir  string
	cfg     *config.Config
	hub     *livereload.Hub
	watcher *fsnotify.Watcher
}

func runDev(port int, host string) error {
	cfg, err := config.Load(".")
	if err != nil {
		log.Printf("⚠️  Failed to load svelgo.yaml: %v (using defaults)", err)
		cfg = config.DefaultConfig()
	}
	if port == 0 {
		port = cfg.Dev.Port
	}
	if host == "" {
		host = cfg.Dev.Host
	}

	server := &devServer{
		srcDir: cfg.SrcDir,
		outDir: cfg.OutDir,
		cfg:    cfg,
		hub:    livereload.NewHub(),
	}

	log.Println("🚀 Starting svelgo dev server...")
	if err := server.buildAll(); err != nil {
		log.Printf("⚠️  Initial build: %v", err)
	}
	log.Printf("👀 Watching %d component(s) under %s", server.componentCount(), server.srcDir)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	server.watcher = watcher

	if err := server.setupWatcher(); err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}
	go server.watchFiles()

	mux := http.NewServeMux()
	mux.HandleFunc("/svelgo/livereload", server.hub.HandleWebSocket)
	mux.HandleFunc("/", server.serveStatic)

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Printf("🔌 Serving on http://%s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	server.hub.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

// buildAll compiles every component in dev mode.
func (s *devServer) buildAll() error {
	return runBuild(s.srcDir, s.outDir, true, true)
}

// serveStatic serves compiled output first, then project static files.
func (s *devServer) serveStatic(w http.ResponseWriter, r *http.Request) {
	name := filepath.Clean(strings.TrimPrefix(r.URL.Path, "/"))
	if name == "." || name == "" {
		name = "index.html"
	}

	for _, root := range []string{s.outDir, "public"} {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
	}
	http.NotFound(w, r)
}

// setupWatcher registers the source tree and static directories.
func (s *devServer) setupWatcher() error {
	watch := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != root {
					return filepath.SkipDir
				}
				if d.Name() == "node_modules" {
					return filepath.SkipDir
				}
				return s.watcher.Add(path)
			}
			return nil
		})
	}
	if err := watch(s.srcDir); err != nil {
		return err
	}
	if _, err := os.Stat("public"); err == nil {
		return watch("public")
	}
	return nil
}

func (s *devServer) watchFiles() {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	var pendingEvents []fsnotify.Event
	var mu sync.Mutex

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			// New directories need to be watched too
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					s.watcher.Add(event.Name)
					continue
				}
			}

			if !s.isRelevantFile(event.Name) {
				continue
			}

			mu.Lock()
			pendingEvents = append(pendingEvents, event)
			mu.Unlock()

			// Reset debounce timer
			debounce.Reset(100 * time.Millisecond)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Println("Watcher error:", err)

		case <-debounce.C:
			mu.Lock()
			events := pendingEvents
			pendingEvents = nil
			mu.Unlock()

			if len(events) > 0 {
				s.handleFileChanges(events)
			}
		}
	}
}

func (s *devServer) isRelevantFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".svelte" || ext == ".css" || ext == ".js" || ext == ".html"
}

func (s *devServer) handleFileChanges(events []fsnotify.Event) {
	var hasComponentChanges, hasStaticChanges bool
	for _, event := range events {
		if strings.ToLower(filepath.Ext(event.Name)) == ".svelte" {
			hasComponentChanges = true
		} else {
			hasStaticChanges = true
		}
	}

	if hasComponentChanges {
		log.Println("🔄 Components changed, rebuilding...")
		if err := s.buildAll(); err != nil {
			log.Printf("❌ Rebuild failed: %v", err)
			s.hub.Broadcast("error", map[string]interface{}{
				"message": err.Error(),
			})
			return
		}
		log.Println("✅ Rebuild complete")
	} else if hasStaticChanges {
		log.Println("🔄 Static files changed")
	}

	s.hub.Broadcast("reload", nil)
}

// componentCount is used for the startup log line.
func (s *devServer) componentCount() int {
	files, err := project.Scan(s.srcDir)
	if err != nil {
		return 0
	}
	return len(files)
}
