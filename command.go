package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	flag "github.com/spf13/pflag"
)

// Command is one fbdiary subcommand.
type Command struct {
	// Flags defines command-specific flags. Defaults come from the config.
	Flags *flag.FlagSet

	// Usage is shown after "fbdiary" in help; its first word is the name.
	Usage string

	// Short is a one-line description for the command listing.
	Short string

	// Long is shown in command help. If empty, Short is used.
	Long string

	Exec func(ctx context.Context, env *cmdEnv, args []string) error
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

func (c *Command) helpLine() string {
	return fmt.Sprintf("  %-16s %s", c.Name(), c.Short)
}

func (c *Command) printHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: fbdiary", c.Usage)
	fmt.Fprintln(w)
	desc := c.Long
	if desc == "" {
		desc = c.Short
	}
	fmt.Fprintln(w, desc)
	if c.Flags != nil && c.Flags.HasFlags() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		c.Flags.SetOutput(w)
		c.Flags.PrintDefaults()
		c.Flags.SetOutput(io.Discard)
	}
}

// cmdEnv is what every command sees: the loaded config and the directory
// relative paths are resolved against.
type cmdEnv struct {
	cfg     Config
	workDir string
}

func (e *cmdEnv) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.workDir, p)
}

// container returns the content container selector. The config was
// validated on load, so compiling cannot fail here.
func (e *cmdEnv) container() cascadia.Selector {
	return mustSelector(e.cfg.ContentSelector)
}

func (e *cmdEnv) openDB(path string) (*metadataStore, error) {
	return openMetadata(e.path(path))
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	return fs
}

// commands builds the command table with flag defaults taken from cfg.
func commands(cfg Config) []*Command {
	return []*Command{
		extractCmd(),
		importCmd(cfg),
		normalizeCmd(cfg),
		unwrapCmd(cfg),
		cleanEmptyCmd(cfg),
		refineCmd(cfg),
		headerCmd(cfg),
		syncExcerptsCmd(cfg),
		syncContentCmd(cfg),
		syncNewCmd(cfg),
		restoreCmd(cfg),
		homeCardsCmd(cfg),
		homeTimelineCmd(cfg),
		imagesCmd(),
		exportCmd(cfg),
		generateCmd(cfg),
	}
}

func findCommand(cmds []*Command, name string) *Command {
	for _, c := range cmds {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

func extractCmd() *Command {
	fs := newFlagSet("extract")
	src := fs.String("src", "", "exported posts HTML file (required)")
	out := fs.String("out", "facebook_posts_extracted", "output directory")
	order := fs.String("order", "asc", "post order by date: asc or desc")
	root := fs.String("archive-root", "", "export archive root for media (default: three levels above --src)")
	sections := fs.String("section-selector", "section._a6-g", "CSS selector of one post")
	dates := fs.String("date-selector", "div._a72d", "CSS selector of the post timestamp")
	return &Command{
		Flags: fs,
		Usage: "extract --src <posts.html> [flags]",
		Short: "Split an exported posts page into one file per post",
		Exec: func(ctx context.Context, env *cmdEnv, args []string) error {
			if *src == "" {
				return fmt.Errorf("%w: --src is required", errNoInput)
			}
			if *order != "asc" && *order != "desc" {
				return fmt.Errorf("--order must be asc or desc, got %q", *order)
			}
			rep, err := extractPosts(extractOpts{
				src:             env.path(*src),
				out:             env.path(*out),
				descending:      *order == "desc",
				archiveRoot:     env.path(*root),
				sectionSelector: *sections,
				dateSelector:    *dates,
			})
			if err != nil {
				return err
			}
			rep.print()
			return nil
		},
	}
}

func importCmd(cfg Config) *Command {
	fs := newFlagSet("import")
	extracted := fs.String("extracted", "facebook_posts_extracted", "directory written by extract")
	articles := fs.String("articles", cfg.ArticlesDir, "articles directory")
	return &Command{
		Flags: fs,
		Usage: "import [flags]",
		Short: "Copy extracted posts and their media into the articles directory",
		Exec: func(ctx context.Context, env *cmdEnv, args []string) error {
			dir := env.path(*articles)
			rep, err := importPosts(importOpts{
				extracted:   env.path(*extracted),
				articles:    newDirStore(dir),
				articlesDir: dir,
			})
			if err != nil {
				return err
			}
			rep.print()
			return nil
		},
	}
}

func normalizeCmd(cfg Config) *Command {
	fs := newFlagSet("normalize")
	articles := fs.String("articles", cfg.ArticlesDir, "articles directory")
	tmplPath := fs.String("template", "article_template.html", "article template with {{TITLE}}, {{DATE}} and {{CONTENT}}")
	return &Command{
		Flags: fs,
		Usage: "normalize [flags]",
		Short: "Rewrite imported posts through the article template",
		Exec: func(ctx context.Context, env *cmdEnv, args []string) error {
			tmpl, err := readInput(env.path(*tmplPath))
			if err != nil {
				return err
			}
			rep, err := normalizeArticles(newDirStore(env.path(*articles)), string(tmpl), env.container())
			if err != nil {
				return err
			}
			rep.print()
			return nil
		},
	}
}

func unwrapCmd(cfg Config) *Command {
	fs := newFlagSet("unwrap")
	articles := fs.String("articles", cfg.ArticlesDir, "articles directory")
	db := fs.String("db", cfg.DB, "SQLite database")
	noDB := fs.Bool("no-db", false, "do not refresh excerpts in the database")
	return &Command{
		Flags: fs,
		Usage: "unwrap [flags]",
		Short: "Replace whole documents nested in the content container with their body",
		Exec: func(ctx context.Context, env *cmdEnv, args []string) error {
			opts := unwrapOpts{container: env.container(), excerptLen: env.cfg.ExcerptLen}
			if !*noDB {
				meta, err := env.openDB(*db)
				if err != nil {
					return err
				}
				defer meta.Close()
				opts.meta = meta
			}
			rep, err := unwrapArticles(newDirStore(env.path(*articles)), opts)
			if err != nil {
				return err
			}
			rep.print()
			return nil
		},
	}
}

func cleanEmptyCmd(cfg Config) *Command {
	fs := newFlagSet("clean-empty")
	articles := fs.String("articles", cfg.ArticlesDir, "articles directory")
	phrase := fs.String("placeholder", cfg.PlaceholderPhrase, "title phrase marking a placeholder post")
	minLen := fs.Int("min-text", cfg.MinTextLen, "posts with fewer characters of text are empty")
	return &Command{
		Flags: fs,
		Usage: "clean-empty [flags]",
		Short: "Move empty imported posts to " + removedEmptyDir + "/",
		Exec: func(ctx context.Context, env *cmdEnv, args []string) error {
			rep, _, err := cleanEmpty(newDirStore(env.path(*articles)), emptyRule{
				container:   env.container(),
				placeholder: *phrase,
				minTextLen:  *minLen,
			})
			if err != nil {
				return err
			}
			rep.print()
			return nil
		},
	}
}

func refineCmd(cfg Config) *Command {
	fs := newFlagSet("refine")
	articles := fs.String("articles", cfg.ArticlesDir, "articles directory")
	db := fs.String("db", cfg.DB, "SQLite database")
	strategy := fs.String("strategy", "lca", "fragment strategy: "+strings.Join(strategyNames(), " or "))
	force := fs.Bool("force", false, "refine containers that were refined before")
	return &Command{
		Flags: fs,
		Usage: "refine [flags]",
		Short: "Narrow each content container to its gallery fragment",
		Exec: func(ctx context.Context, env *cmdEnv, args []string) error {
			s, err := lookupStrategy(*strategy)
			if err != nil {
				return err
			}
			meta, err := env.openDB(*db)
			if err != nil {
				return err
			}
			defer meta.Close()
			rep, err := refineArticles(newDirStore(env.path(*articles)), refineOpts{
				strategy:  s,
				container: env.container(),
				force:     *force,
				meta:      meta,
			})
			if err != nil {
				return err
			}
			rep.print()
			return nil
		},
	}
}

func headerCmd(cfg Config) *Command {
	fs := newFlagSet("header")
	articles := fs.String("articles", cfg.ArticlesDir, "articles directory")
	return &Command{
		Flags: fs,
		Usage: "header [flags]",
		Short: "Replace the legacy nav bar with the site header",
		Exec: func(ctx context.Context, env *cmdEnv, args []string) error {
			rep, err := replaceHeaders(newDirStore(env.path(*articles)))
			if err != nil {
				return err
			}
			rep.print()
			return nil
		},
	}
}

// syncFlags are shared by the sync-* commands.
func syncFlags(fs *flag.FlagSet, cfg Config) (articles, db *string) {
	articles = fs.String("articles", cfg.ArticlesDir, "articles directory")
	db = fs.String("db", cfg.DB, "SQLite database")
	return articles, db
}

type syncFunc func(ArticleStore, MetadataStore, syncOpts) (*report, error)

func syncCmd(name, short string, cfg Config, fn syncFunc) *Command {
	fs := newFlagSet(name)
	articles, db := syncFlags(fs, cfg)
	return &Command{
		Flags: fs,
		Usage: name + " [flags]",
		Short: short,
		Exec: func(ctx context.Context, env *cmdEnv, args []string) error {
			meta, err := env.openDB(*db)
			if err != nil {
				return err
			}
			defer meta.Close()
			rep, err := fn(newDirStore(env.path(*articles)), meta, syncOpts{
				container:  env.container(),
				excerptLen: env.cfg.ExcerptLen,
				now:        time.Now,
			})
			if err != nil {
				return err
			}
			rep.print()
			return nil
		},
	}
}

func syncExcerptsCmd(cfg Config) *Command {
	return syncCmd("sync-excerpts", "Recompute stored excerpts from the article files", cfg, syncExcerpts)
}

func syncContentCmd(cfg Config) *Command {
	return syncCmd("sync-content", "Store the content container markup of every article", cfg, syncContent)
}

func syncNewCmd(cfg Config) *Command {
	return syncCmd("sync-new", "Insert rows for imported articles missing from the database", cfg, syncNew)
}

func restoreCmd(cfg Config) *Command {
	fs := newFlagSet("restore")
	db := fs.String("db", cfg.DB, "SQLite database")
	backup := fs.String("backup", cfg.DB+".bak", "backup database to restore media content from")
	return &Command{
		Flags: fs,
		Usage: "restore [flags]",
		Short: "Restore content with images or videos from a backup database",
		Exec: func(ctx context.Context, env *cmdEnv, args []string) error {
			bak, err := openExistingMetadata(env.path(*backup))
			if err != nil {
				return err
			}
			defer bak.Close()
			meta, err := env.openDB(*db)
			if err != nil {
				return err
			}
			defer meta.Close()
			rep, err := restoreMedia(bak, meta, env.container())
			if err != nil {
				return err
			}
			rep.print()
			return nil
		},
	}
}

func homeCardsCmd(cfg Config) *Command {
	fs := newFlagSet("home-cards")
	articles := fs.String("articles", cfg.ArticlesDir, "articles directory")
	home := fs.String("home", cfg.Home, "home page")
	return &Command{
		Flags: fs,
		Usage: "home-cards [flags]",
		Short: "Regenerate the post cards of the home page",
		Exec: func(ctx context.Context, env *cmdEnv, args []string) error {
			rep, err := injectCards(newDirStore(env.path(*articles)), homeOpts{
				homePath:   env.path(*home),
				container:  env.container(),
				excerptLen: env.cfg.ExcerptLen,
			})
			if err != nil {
				return err
			}
			rep.print()
			return nil
		},
	}
}

func homeTimelineCmd(cfg Config) *Command {
	fs := newFlagSet("home-timeline")
	articles := fs.String("articles", cfg.ArticlesDir, "articles directory")
	home := fs.String("home", cfg.Home, "home page")
	return &Command{
		Flags: fs,
		Usage: "home-timeline [flags]",
		Short: "Merge article dates into the timeline of the home page",
		Exec: func(ctx context.Context, env *cmdEnv, args []string) error {
			found, err := injectTimeline(newDirStore(env.path(*articles)), env.path(*home))
			if err != nil {
				return err
			}
			for _, y := range found.years() {
				fmt.Fprintf(verboseOut, "  %d: %v\n", y, found.months(y))
			}
			return nil
		},
	}
}

func imagesCmd() *Command {
	fs := newFlagSet("images")
	return &Command{
		Flags: fs,
		Usage: "images <article.html>...",
		Short: "Download article images and group them into a thumbnail gallery",
		Exec: func(ctx context.Context, env *cmdEnv, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: no article files given", errNoInput)
			}
			paths := make([]string, len(args))
			for i, a := range args {
				paths[i] = env.path(a)
			}
			rep, err := processImageFiles(ctx, paths, imageOpts{
				container:     env.container(),
				themePrefixes: env.cfg.ThemePrefixes,
				thumbWidth:    env.cfg.ThumbWidth,
				fetch:         newFetcher(env.cfg.Fetch),
			})
			if err != nil {
				return err
			}
			rep.print()
			return nil
		},
	}
}

func exportCmd(cfg Config) *Command {
	fs := newFlagSet("export")
	articles := fs.String("articles", cfg.ArticlesDir, "articles directory")
	format := fs.String("format", formatEPUB, "output format: epub or markdown")
	output := fs.StringP("output", "o", "", "output file (default diary.epub or diary.md)")
	title := fs.String("title", "Diary", "book title")
	author := fs.String("author", "", "book author")
	return &Command{
		Flags: fs,
		Usage: "export [flags]",
		Short: "Export all articles as one EPUB or Markdown book",
		Exec: func(ctx context.Context, env *cmdEnv, args []string) error {
			dir := env.path(*articles)
			out := *output
			if out == "" {
				out = defaultExportName(*format)
			}
			rep, err := exportDiary(newDirStore(dir), exportOpts{
				format:     *format,
				output:     env.path(out),
				title:      *title,
				author:     *author,
				container:  env.container(),
				imageRoots: []string{dir, filepath.Dir(dir)},
			})
			if err != nil {
				return err
			}
			rep.print()
			return nil
		},
	}
}

func generateCmd(cfg Config) *Command {
	fs := newFlagSet("generate")
	db := fs.String("db", cfg.DB, "SQLite database")
	articles := fs.String("articles", cfg.ArticlesDir, "articles directory")
	home := fs.String("home", cfg.Home, "home page")
	articleTmpl := fs.String("article-template", "article_template.html", "article template with {{TITLE}}, {{DATE}}, {{CONTENT}}, {{PREV_LINK}} and {{NEXT_LINK}}")
	indexTmpl := fs.String("index-template", "index_sidebar_template.html", "home template with {{GRID_CONTENT}} and {{SIDEBAR_CONTENT}}")
	return &Command{
		Flags: fs,
		Usage: "generate [flags]",
		Short: "Rebuild every article page and the home page from the database",
		Long: "Rebuild every article page and the home page from the database.\n\n" +
			"Pages are ordered newest first and linked to their neighbours.\n" +
			"Existing pages are overwritten without a backup.",
		Exec: func(ctx context.Context, env *cmdEnv, args []string) error {
			articleT, err := readInput(env.path(*articleTmpl))
			if err != nil {
				return err
			}
			indexT, err := readInput(env.path(*indexTmpl))
			if err != nil {
				return err
			}
			dbPath := env.path(*db)
			if !fileExists(dbPath) {
				return fmt.Errorf("%w: %s", errNoInput, dbPath)
			}
			meta, err := env.openDB(*db)
			if err != nil {
				return err
			}
			defer meta.Close()
			rep, err := generateSite(meta, generateOpts{
				articlesDir:     env.path(*articles),
				homePath:        env.path(*home),
				articleTemplate: string(articleT),
				indexTemplate:   string(indexT),
			})
			if err != nil {
				return err
			}
			rep.print()
			return nil
		},
	}
}
