package main

import (
	"embed"
	"flag"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"proteinstruct/internal/config"
	"proteinstruct/internal/fasta"
	"proteinstruct/internal/logging"
	"proteinstruct/internal/session"
	"proteinstruct/internal/swissmodel"
	"proteinstruct/internal/uniprot"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// server bundles the collaborators every handler needs.
type server struct {
	cfg        *config.Config
	logger     *log.Logger
	fetcher    *uniprot.Fetcher
	structures *swissmodel.Client
	sessions   *session.Store
	templates  *template.Template
}

func templateFuncs(cfg *config.Config) template.FuncMap {
	return template.FuncMap{
		"wrap": func(seq string) string { return fasta.Wrap(seq, cfg.WrapWidth) },
		"pct":  func(v float64) string { return fmt.Sprintf("%.1f", v) },
	}
}

// loadTemplates parses every .html file under dir in fsys.
func loadTemplates(fsys fs.FS, dir string, funcs template.FuncMap) (*template.Template, error) {
	t := template.New("").Funcs(funcs)
	err := fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
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
		return nil, err
	}
	return t, nil
}

func newServer(cfg *config.Config, logger *log.Logger, tmpl *template.Template) (*server, error) {
	client := uniprot.NewClient(cfg.UniProtBaseURL, cfg.FetchTimeout())
	client.MinLength = cfg.MinLength
	client.Logger = logger
	fetcher, err := uniprot.NewFetcher(client, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	fetcher.Timeout = cfg.FetchTimeout()
	return &server{
		cfg:        cfg,
		logger:     logger,
		fetcher:    fetcher,
		structures: swissmodel.NewClient(cfg.SwissModelBaseURL, cfg.StructureTimeout()),
		sessions:   session.NewStore(cfg.MaxSessions),
		templates:  tmpl,
	}, nil
}

// loggingMiddleware logs each request with method, path, status, size and duration
func loggingMiddleware(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"remote", c.ClientIP(),
			"method", c.Request.Method,
			"uri", c.Request.URL.RequestURI(),
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"duration", time.Since(start),
			"ua", c.Request.UserAgent())
	}
}

func (s *server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), loggingMiddleware(s.logger), s.sessionMiddleware())
	r.SetHTMLTemplate(s.templates)

	r.GET("/", s.indexHandler)
	r.POST("/fetch", s.fetchHandler)
	r.GET("/proteins/:acc", s.proteinHandler)
	r.GET("/proteins/:acc/composition.svg", s.compositionHandler)
	r.GET("/structure/:acc", s.structureHandler)
	r.GET("/structure/:acc/pdb", s.structurePDBHandler)

	// API endpoints for SPA-like interactions
	api := r.Group("/api")
	api.GET("/species", s.apiSpeciesHandler)
	api.GET("/proteins", s.apiProteinsHandler)
	api.GET("/proteins/:acc", s.apiProteinHandler)
	return r
}

func main() {
	configPath := flag.String("config", "", "path to config.json (optional)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	templatesDir := flag.String("templates", "", "directory of HTML templates (defaults to the embedded set)")
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

	logger, closeLog, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Verbose: *verbose, Prefix: "proteinstruct"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	var tmplFS fs.FS = embeddedTemplates
	tmplDir := "templates"
	if *templatesDir != "" {
		tmplFS, tmplDir = os.DirFS(*templatesDir), "."
	}
	tmpl, err := loadTemplates(tmplFS, tmplDir, templateFuncs(cfg))
	if err != nil {
		logger.Fatal("failed to load templates", "err", err)
	}

	srv, err := newServer(cfg, logger, tmpl)
	if err != nil {
		logger.Fatal("failed to build server", "err", err)
	}

	gin.SetMode(gin.ReleaseMode)
	// write timeout covers a full proteome download
	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.FetchTimeout() + 10*time.Second,
	}
	logger.Info("serving UI", "url", "http://"+cfg.Addr+"/", "uniprot", cfg.UniProtBaseURL, "swissmodel", cfg.SwissModelBaseURL)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", "err", err)
	}
}
