package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pdf2deck/backend/internal/api"
	"github.com/pdf2deck/backend/internal/config"
	"github.com/pdf2deck/backend/internal/convert"
	"github.com/pdf2deck/backend/internal/storage"
	"github.com/pdf2deck/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "PDF2Deck.exe.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Check if running in embedded mode (frontend built into binary)
	embeddedMode := web.HasEmbeddedFiles()

	// Initialize storage. The metadata index survives restarts only
	// when persistence is enabled.
	indexDir := ""
	if cfg.Storage.EnablePersistence {
		indexDir = cfg.GetDataDir()
	}
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir(), cfg.GetOutputDir(), indexDir)
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	// Load the conversion profile; the page cap from the main config wins.
	profile, err := convert.LoadProfile(cfg.Conversion.ProfilePath)
	if err != nil {
		fmt.Printf("Failed to load conversion profile: %v\n", err)
		os.Exit(1)
	}
	if cfg.Conversion.MaxPages > 0 {
		profile.MaxPages = cfg.Conversion.MaxPages
	}

	jobs := convert.NewManager(fileStore, convert.NewConverter(profile))

	// Background cleanup: uploads and generated decks are transient,
	// finished jobs expire with them.
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Conversion.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			removed := fileStore.CleanupOlderThan(time.Duration(cfg.Conversion.FileMaxAgeMinutes) * time.Minute)
			if removed > 0 {
				fmt.Printf("[Cleanup] removed %d expired files\n", removed)
			}
			jobs.CleanupOldJobs(time.Duration(cfg.Conversion.JobMaxAgeMinutes) * time.Minute)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/status") || path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	// Compression middleware
	if cfg.Conversion.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Conversion.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				// Decks are already zip archives.
				return strings.HasSuffix(c.Request().URL.Path, "/download")
			},
		}))
	}

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration. The same origin list gates websocket upgrades.
	var allowOrigins []string
	if cfg.Server.EnableCORS {
		if embeddedMode {
			allowOrigins = strings.Split(cfg.Server.AllowOrigins, ",")
			for i := range allowOrigins {
				allowOrigins[i] = strings.TrimSpace(allowOrigins[i])
			}
			if len(allowOrigins) == 0 || (len(allowOrigins) == 1 && allowOrigins[0] == "") {
				allowOrigins = []string{"*"}
			}
		} else {
			// Development mode - only allow localhost
			allowOrigins = []string{
				"http://localhost:5173", "http://127.0.0.1:5173",
				"http://localhost:3000", "http://127.0.0.1:3000",
			}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: allowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	deps := &api.Dependencies{
		Store:             fileStore,
		Jobs:              jobs,
		Version:           Version,
		AllowFileDeletion: cfg.Security.AllowFileDeletion,
		AllowedOrigins:    allowOrigins,
	}
	api.RegisterRoutes(e, api.NewHandlers(deps), deps)

	// Register embedded frontend if available
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			fmt.Printf("Warning: failed to register static routes: %v\n", err)
		} else {
			fmt.Println("Serving embedded frontend from binary")
		}
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	mode := "Development"
	if embeddedMode {
		mode = "Self-Contained (Embedded)"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           PDF2Deck Converter Server                       ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embeddedMode {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}

	e.Logger.Fatal(e.StartServer(s))
}
