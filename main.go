package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/lotas/arxivgruppen/internal/applog"
	"github.com/lotas/arxivgruppen/internal/arxiv"
	"github.com/lotas/arxivgruppen/internal/cache"
	"github.com/lotas/arxivgruppen/internal/export"
	"github.com/lotas/arxivgruppen/internal/firefox"
	"github.com/lotas/arxivgruppen/internal/group"
	"github.com/lotas/arxivgruppen/internal/pipeline"
	"github.com/lotas/arxivgruppen/internal/prefs"
	"github.com/lotas/arxivgruppen/internal/server"
	"github.com/lotas/arxivgruppen/internal/storage"
	"github.com/lotas/arxivgruppen/internal/tui"
	"github.com/lotas/arxivgruppen/internal/types"
)

const defaultPort = 19292

func main() {
	// .env is optional; real env vars win.
	godotenv.Load()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "papers":
			runPapers()
			return
		case "prefs":
			runPrefs(os.Args[2:])
			return
		case "scan":
			runScan(os.Args[2:])
			return
		case "export":
			runExport(os.Args[2:])
			return
		case "cache":
			runCache(os.Args[2:])
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}

	fs := flag.NewFlagSet("arxivgruppen", flag.ExitOnError)
	port := fs.Int("port", resolvePort(), "WebSocket port for the extension bridge")
	dbPath := fs.String("db", "", "Database path (default: ~/.local/share/arxivgruppen/arxivgruppen.db)")
	fs.Parse(os.Args[1:])

	if dir, err := dataDir(); err == nil {
		applog.Init(dir)
		defer applog.Close()
	}

	// A broken database degrades to a memory-only session rather than
	// refusing to start.
	var db *sql.DB
	store := cache.Store(cache.NewMemStore())
	path := *dbPath
	if path == "" {
		var err error
		path, err = storage.DefaultDBPath()
		if err != nil {
			path = ""
		}
	}
	if path != "" {
		opened, err := storage.OpenDB(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: database unavailable, running memory-only: %v\n", err)
			applog.Error("db.open", err)
		} else {
			db = opened
			defer db.Close()
			store = storage.NewPaperStore(db)
		}
	}

	srv := server.New(*port)
	pipe := &pipeline.Pipeline{
		Cache:   cache.New(store),
		Prefs:   prefs.Load(db),
		Coord:   group.New(srv),
		Tabs:    srv,
		Fetcher: arxiv.NewClient(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.ListenAndServe(ctx)

	loadPapers := func() []*types.Paper {
		papers, err := store.All()
		if err != nil {
			applog.Error("papers.load", err)
			return nil
		}
		sort.Slice(papers, func(i, j int) bool {
			return papers[i].FetchedAt.After(papers[j].FetchedAt)
		})
		return papers
	}

	model := tui.NewModel(pipe, srv, loadPapers)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Print(`arxivgruppen — arXiv tab titler and author grouper

Usage:
  arxivgruppen                         Start the TUI and extension bridge (default)
    --port <n>         WebSocket port for the extension (default: 19292)
    --db <path>        Database path

  arxivgruppen papers                  List cached papers

  arxivgruppen prefs list              Show preferred authors (priority order)
  arxivgruppen prefs add <name>        Add a preferred author
  arxivgruppen prefs remove <name>     Remove a preferred author

  arxivgruppen scan                    List open arXiv tabs from the Firefox
    --profile <name>                   session file (no extension needed)

  arxivgruppen export                  Export cached papers grouped by author
    --json             Export as JSON instead of markdown
    --out <file>       Output file path (default: stdout)

  arxivgruppen cache clear             Delete all cached papers

Environment:
  ARXIVGRUPPEN_PORT      Default bridge port (overridden by --port)
  ARXIVGRUPPEN_PROFILE   Default Firefox profile for scan
  A .env file in the working directory is read if present.
`)
}

func dataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "arxivgruppen"), nil
}

func resolvePort() int {
	if v := os.Getenv("ARXIVGRUPPEN_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultPort
}

// resolveProfileName returns the flag value if set, otherwise the
// ARXIVGRUPPEN_PROFILE environment variable.
func resolveProfileName(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("ARXIVGRUPPEN_PROFILE")
}

func openDB() (*sql.DB, error) {
	dbPath, err := storage.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return storage.OpenDB(dbPath)
}

func runPapers() {
	db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	papers, err := storage.NewPaperStore(db).All()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing papers: %v\n", err)
		os.Exit(1)
	}
	if len(papers) == 0 {
		fmt.Println("No cached papers.")
		return
	}

	fmt.Printf("%-16s %-24s %s\n", "ID", "AUTHOR", "TITLE")
	for _, p := range papers {
		author := p.Author
		if author == "" {
			author = "-"
		}
		fmt.Printf("%-16s %-24s %s\n", p.ID, author, p.Title)
	}
}

func runPrefs(args []string) {
	db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "list":
		names, err := storage.ListPreferred(db)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(names) == 0 {
			fmt.Println("No preferred authors.")
			return
		}
		for i, name := range names {
			fmt.Printf("%2d. %s\n", i+1, name)
		}

	case "add":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: arxivgruppen prefs add <name>")
			os.Exit(1)
		}
		if err := storage.AddPreferred(db, args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added %q.\n", args[1])

	case "remove":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: arxivgruppen prefs remove <name>")
			os.Exit(1)
		}
		if err := storage.RemovePreferred(db, args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed %q.\n", args[1])

	default:
		fmt.Fprintf(os.Stderr, "Unknown prefs command %q. Use list, add, or remove.\n", sub)
		os.Exit(1)
	}
}

func runScan(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	profileName := fs.String("profile", "", "Firefox profile name")
	fs.Parse(args)

	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering Firefox profiles: %v\n", err)
		os.Exit(1)
	}
	if len(profiles) == 0 {
		fmt.Fprintln(os.Stderr, "No Firefox profiles found.")
		os.Exit(1)
	}

	profile, err := pickProfile(profiles, resolveProfileName(*profileName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tabs, err := firefox.ReadPaperTabs(profile.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading session: %v\n", err)
		os.Exit(1)
	}
	if len(tabs) == 0 {
		fmt.Println("No open arXiv tabs.")
		return
	}

	fmt.Printf("%d open arXiv tabs in profile %s:\n", len(tabs), profile.Name)
	for _, tab := range tabs {
		fmt.Printf("  %-16s %s\n", tab.ID, tab.Title)
	}
}

// pickProfile selects the named profile, or the default one, falling
// back to the first found.
func pickProfile(profiles []types.Profile, name string) (types.Profile, error) {
	if name != "" {
		for _, p := range profiles {
			if p.Name == name {
				return p, nil
			}
		}
		return types.Profile{}, fmt.Errorf("profile %q not found", name)
	}

	profile := profiles[0]
	for _, p := range profiles {
		if p.IsDefault {
			profile = p
			break
		}
	}
	return profile, nil
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	jsonFlag := fs.Bool("json", false, "Export as JSON instead of markdown")
	outFile := fs.String("out", "", "Output file path (default: stdout)")
	fs.Parse(args)

	db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	papers, err := storage.NewPaperStore(db).All()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing papers: %v\n", err)
		os.Exit(1)
	}

	var output string
	if *jsonFlag {
		output, err = export.JSON(papers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating JSON: %v\n", err)
			os.Exit(1)
		}
	} else {
		output = export.Markdown(papers)
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, []byte(output), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Print(output)
	}
}

func runCache(args []string) {
	if len(args) == 0 || args[0] != "clear" {
		fmt.Fprintln(os.Stderr, "Usage: arxivgruppen cache clear")
		os.Exit(1)
	}

	db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	store := storage.NewPaperStore(db)
	papers, err := store.All()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing papers: %v\n", err)
		os.Exit(1)
	}
	for _, p := range papers {
		if err := store.Delete(p.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting %s: %v\n", p.ID, err)
			os.Exit(1)
		}
	}
	fmt.Printf("Deleted %d cached papers.\n", len(papers))
}
