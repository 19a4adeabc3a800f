package main

import (
	"embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"seqview/internal/config"
	"seqview/internal/loader"
	"seqview/internal/logging"
	"seqview/internal/ncbi"
	"seqview/internal/render"
	"seqview/internal/section"
)

//go:embed templates/*.html
var embedded embed.FS

var templates *template.Template

func fsSubTemplates() (fs.FS, error) {
	return fs.Sub(embedded, "templates")
}

// loadTemplates parses every .html file in fsys; each template is named after
// its file.
func loadTemplates(fsys fs.FS) error {
	t := template.New("")
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		_, err = t.ParseFS(fsys, path)
		return err
	})
	if err != nil {
		return err
	}
	templates = t
	return nil
}

// sectionsView is what base.html and sections.html render.
type sectionsView struct {
	Name     string
	Sections []section.Section
	Error    string
}

// fragmentRenderer writes the sections fragment; htmx swaps it into
// #textZone, replacing the previous file's blocks.
type fragmentRenderer struct {
	w    io.Writer
	name string
}

func (f fragmentRenderer) Render(secs []section.Section) error {
	return templates.ExecuteTemplate(f.w, "sections.html", sectionsView{Name: f.name, Sections: secs})
}

// pageRenderer writes the whole page with the sections already in place.
type pageRenderer struct {
	w    io.Writer
	name string
}

func (p pageRenderer) Render(secs []section.Section) error {
	return templates.ExecuteTemplate(p.w, "base.html", &sectionsView{Name: p.name, Sections: secs})
}

// statusResponseWriter captures status and bytes written for logging
type statusResponseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// loggingMiddleware logs each request with method, path, status, size and duration
func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w}
		next.ServeHTTP(srw, r)
		if srw.status == 0 {
			srw.status = http.StatusOK
		}
		logger.Info("request",
			"remote", r.RemoteAddr, "method", r.Method, "uri", r.URL.RequestURI(),
			"status", srw.status, "bytes", srw.written, "duration", time.Since(start), "ua", r.UserAgent())
	})
}

func isFragment(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" || r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// statusFor maps loader errors to HTTP codes.
func statusFor(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case errors.Is(err, loader.ErrTooLarge), errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}

// writeFragmentError renders the error inside the sections fragment so htmx
// still swaps something visible into the page.
func writeFragmentError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_ = templates.ExecuteTemplate(w, "sections.html", sectionsView{Error: err.Error()})
}

// readUpload loads the multipart "file" field through ld.
func readUpload(ld *loader.Loader, maxBytes int64, w http.ResponseWriter, r *http.Request) (loader.Result, error) {
	if maxBytes > 0 {
		// multipart framing needs some headroom over the file itself
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return loader.Result{}, fmt.Errorf("invalid upload: %w", err)
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		return loader.Result{}, fmt.Errorf("missing file: %w", err)
	}
	defer file.Close()
	return ld.Load(r.Context(), hdr.Filename, file)
}

func indexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.ExecuteTemplate(w, "base.html", (*sectionsView)(nil)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// sectionsHandler parses an uploaded file and answers with the sections
// fragment.
func sectionsHandler(ld *loader.Loader, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		res, err := readUpload(ld, maxBytes, w, r)
		if err != nil {
			writeFragmentError(w, statusFor(err), err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ld.Render(r.Context(), fragmentRenderer{w: w, name: res.Name}, res); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// apiResult is the JSON body of /api/sections.
type apiResult struct {
	Name     string            `json:"name"`
	Ext      string            `json:"ext"`
	Kind     string            `json:"kind"`
	Sections []section.Section `json:"sections"`
}

func apiSectionsHandler(ld *loader.Loader, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		res, err := readUpload(ld, maxBytes, w, r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(statusFor(err))
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(apiResult{Name: res.Name, Ext: res.Ext, Kind: string(res.Kind), Sections: res.Sections})
	}
}

// fetchHandler downloads a GenBank record from NCBI and renders its sections.
func fetchHandler(ld *loader.Loader, client *ncbi.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc := strings.TrimSpace(r.URL.Query().Get("acc"))
		if acc == "" {
			writeFragmentError(w, http.StatusBadRequest, errors.New("missing accession"))
			return
		}
		text, err := client.FetchGenBank(r.Context(), acc)
		if err != nil {
			code := http.StatusBadGateway
			if errors.Is(err, ncbi.ErrNotFound) {
				code = http.StatusNotFound
			}
			writeFragmentError(w, code, err)
			return
		}
		res, err := ld.Parse(acc+".gb", text)
		if err != nil {
			writeFragmentError(w, http.StatusBadRequest, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		var out render.Renderer = pageRenderer{w: w, name: res.Name}
		if isFragment(r) {
			out = fragmentRenderer{w: w, name: res.Name}
		}
		if err := ld.Render(r.Context(), out, res); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func newMux(ld *loader.Loader, client *ncbi.Client, maxBytes int64) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", indexHandler())
	mux.HandleFunc("/sections", sectionsHandler(ld, maxBytes))
	mux.HandleFunc("/api/sections", apiSectionsHandler(ld, maxBytes))
	mux.HandleFunc("/fetch", fetchHandler(ld, client))
	return mux
}

func main() {
	configPath := flag.String("config", "", "path to config.json or config.yaml (optional)")
	addr := flag.String("addr", "", "HTTP address to serve (overrides config)")
	templatesDir := flag.String("templates", "", "directory of HTML templates (default: embedded)")
	logFile := flag.String("log", "", "path to write access logs (optional). If empty, logs go to stderr only")
	verbose := flag.Bool("verbose", false, "enable verbose (debug) logging")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	logger, closeLog := logging.New(logging.Options{Prefix: "seqview-web", Level: cfg.LogLevel, Verbose: *verbose, LogFile: cfg.LogFile})
	defer closeLog()

	var tfs fs.FS
	if *templatesDir != "" {
		tfs = os.DirFS(*templatesDir)
	} else if tfs, err = fsSubTemplates(); err != nil {
		logger.Fatal("failed to open embedded templates", "err", err)
	}
	if err := loadTemplates(tfs); err != nil {
		logger.Fatal("failed to load templates", "err", err)
	}

	ld := loader.New(loader.Options{
		Logger:   logger,
		FoldCase: cfg.FoldExtensionCase,
		MaxBytes: cfg.MaxUploadBytes,
	})
	client := ncbi.NewClient(cfg.NcbiApiKey)
	if cfg.NcbiBaseURL != "" {
		client.BaseURL = cfg.NcbiBaseURL
	}
	if cfg.NcbiCacheTTLSecs > 0 {
		client.TTL = time.Duration(cfg.NcbiCacheTTLSecs) * time.Second
	}

	handler := loggingMiddleware(logger, newMux(ld, client, cfg.MaxUploadBytes))
	srv := &http.Server{Addr: cfg.Addr, Handler: handler, ReadTimeout: 15 * time.Second, WriteTimeout: 30 * time.Second}
	logger.Info("serving UI", "url", "http://"+cfg.Addr+"/", "fold_extension_case", cfg.FoldExtensionCase, "max_upload_bytes", cfg.MaxUploadBytes)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", "err", err)
	}
}
