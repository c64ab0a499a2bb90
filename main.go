package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fanseek/backends"
	"fanseek/reader"
)

const version = "1.0.0"

var (
	config     *Config
	searchOpts SearchOptions
)

func main() {
	var err error
	config, err = loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "fanseek [query...]",
		Short:         "Search web, news, images and videos in one go",
		Long:          "fanseek fans a query out to several result categories of a search API and prints the merged results.",
		Version:       version,
		RunE:          runSearch,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&config.Engine, "engine", config.Engine, fmt.Sprintf("search engine to use: %s", validEngineNames()))
	flags.IntVarP(&config.ResultCount, "num", "n", config.ResultCount, "maximum results per category")
	flags.StringSliceVarP(&searchOpts.ContentTypes, "content-types", "c", nil, fmt.Sprintf("content types to search: %s", strings.Join(contentTypeNames, ", ")))
	flags.StringSliceVarP(&searchOpts.IncludeDomains, "site", "w", nil, "restrict results to these domains (repeatable)")
	flags.StringSliceVarP(&searchOpts.ExcludeDomains, "exclude-site", "X", nil, "exclude results from these domains (repeatable)")
	flags.StringVar(&searchOpts.SearchDepth, "depth", "", "search depth for engines that support it (basic, advanced)")
	flags.BoolVar(&searchOpts.JSON, "json", false, "output search results in JSON format")
	flags.BoolVar(&searchOpts.LinksOnly, "links", false, "print only result URLs")
	flags.StringVarP(&searchOpts.OutputFile, "output", "o", "", "write results to a file instead of stdout")
	flags.BoolVarP(&searchOpts.Expand, "expand", "x", config.Expand, "show complete URL in search results")
	flags.BoolVarP(&searchOpts.First, "first", "j", false, "open the first result in web browser and exit")
	flags.BoolVar(&searchOpts.Lucky, "lucky", false, "opens a random result in web browser and exit")
	flags.BoolVar(&searchOpts.NoPrompt, "np", false, "just search and exit, do not prompt")
	flags.Float64Var(&config.Timeout, "timeout", config.Timeout, "request timeout in seconds")
	flags.BoolVar(&config.NoColor, "nocolor", config.NoColor, "disable colored output")
	flags.BoolVar(&config.Debug, "debug", config.Debug, "show debug output")

	// Content type shortcuts
	flags.BoolP("news", "N", false, "include news results")
	flags.BoolP("videos", "V", false, "include video results")
	flags.BoolP("images", "I", false, "include image results")
	flags.BoolP("all", "A", false, "search every content type")

	rootCmd.AddCommand(newHistoryCmd(), newReadCmd())
	return rootCmd
}

func newHistoryCmd() *cobra.Command {
	var limit int
	var clear bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear search history",
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHistory(config)
			if clear {
				if err := h.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
				return nil
			}
			return h.Print(cmd.OutOrStdout(), limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of entries to show (0 for all)")
	cmd.Flags().BoolVar(&clear, "clear", false, "delete the history file")
	return cmd
}

func newReadCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "read <url>",
		Short: "Print the main content of a page as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return readPage(cmd.Context(), cmd.OutOrStdout(), args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the article as JSON")
	return cmd
}

func readPage(ctx context.Context, w io.Writer, url string, asJSON bool) error {
	article, err := reader.New(time.Duration(config.Timeout * float64(time.Second))).Fetch(ctx, url)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSONResults(w, article)
	}
	if article.Title != "" {
		fmt.Fprintf(w, "# %s\n\n", article.Title)
	}
	fmt.Fprintln(w, article.Markdown)
	return nil
}

func newLogger(debug bool) zerolog.Logger {
	setLogLevel(debug)
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    config.NoColor,
	}).With().Timestamp().Logger()
}

// setLogLevel uses the global level so the prompt can toggle debug output on
// an already built aggregator.
func setLogLevel(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	// Ensure config file exists for actual searches
	if err := ensureConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config: %v\n", err)
	}

	query := strings.Join(args, " ")

	if all, _ := cmd.Flags().GetBool("all"); all {
		searchOpts.ContentTypes = append([]string{}, contentTypeNames...)
	}
	for _, shortcut := range []string{"news", "videos", "images"} {
		if on, _ := cmd.Flags().GetBool(shortcut); on {
			if len(searchOpts.ContentTypes) == 0 {
				searchOpts.ContentTypes = []string{"web"}
			}
			searchOpts.ContentTypes = append(searchOpts.ContentTypes, shortcut)
		}
	}

	for _, ct := range searchOpts.ContentTypes {
		if !validateContentType(ct) {
			return fmt.Errorf("invalid content type '%s'. Supported content types are: %s",
				ct, strings.Join(contentTypeNames, ", "))
		}
	}
	if searchOpts.SearchDepth != "" && !validateSearchDepth(searchOpts.SearchDepth) {
		return fmt.Errorf("invalid search depth '%s'. Use: %s",
			searchOpts.SearchDepth, strings.Join(searchDepthOptions, ", "))
	}

	log := newLogger(config.Debug)
	agg, err := newAggregator(config, log)
	if err != nil {
		return err
	}
	history := newHistory(config)
	stdin := bufio.NewReader(os.Stdin)

	for {
		res, err := performSearch(cmd.Context(), agg, query, config, &searchOpts)
		if err != nil {
			var cfgErr *backends.ConfigurationError
			if errors.As(err, &cfgErr) {
				return fmt.Errorf("%w (set the API key in %s or the environment)", err, getConfigDir())
			}
			return fmt.Errorf("search error: %w", err)
		}

		if err := history.Append(query, searchOpts.ContentTypes, time.Now()); err != nil {
			log.Debug().Err(err).Msg("Failed to write history")
		}

		links := resultLinks(res)

		if searchOpts.First || searchOpts.Lucky {
			if len(links) == 0 {
				fmt.Println("No results found.")
				return nil
			}
			target := links[0]
			if searchOpts.Lucky {
				target = links[rand.Intn(len(links))]
			}
			return openURL(target)
		}

		if err := writeOutput(res, &searchOpts, config.NoColor); err != nil {
			return err
		}

		if searchOpts.NoPrompt || searchOpts.JSON || searchOpts.LinksOnly || searchOpts.OutputFile != "" {
			return nil
		}

		next, ok := handleInteractiveSession(stdin, os.Stdout, res, &searchOpts)
		if !ok {
			return nil
		}
		query = next
	}
}

// handleInteractiveSession reads commands until the user asks for a new
// search (returns the query and true) or quits (returns false).
func handleInteractiveSession(r *bufio.Reader, out io.Writer, res *backends.SearchResults, opts *SearchOptions) (string, bool) {
	links := resultLinks(res)

	resultAt := func(indexStr string) (string, bool) {
		index, err := strconv.Atoi(strings.TrimSpace(indexStr))
		if err != nil || index <= 0 || index > len(links) {
			fmt.Fprintln(out, "Invalid index specified.")
			return "", false
		}
		return links[index-1], true
	}

	for {
		fmt.Fprint(out, "fanseek (? for help): ")
		input, err := r.ReadString('\n')
		if err != nil && input == "" {
			return "", false
		}
		input = strings.TrimSpace(input)

		switch {
		case input == "q" || input == "quit" || input == "exit":
			return "", false

		case input == "?":
			printHelp(out)

		case input == "x":
			opts.Expand = !opts.Expand
			printResults(out, res, opts.Expand, config.NoColor)

		case input == "d":
			config.Debug = !config.Debug
			setLogLevel(config.Debug)
			fmt.Fprintf(out, "Debug mode %s\n", map[bool]string{true: "enabled", false: "disabled"}[config.Debug])

		case strings.HasPrefix(input, "site:"):
			site := strings.TrimSpace(input[5:])
			if site != "" {
				opts.IncludeDomains = append(opts.IncludeDomains, site)
			}
			return res.Query, true

		case strings.HasPrefix(input, "c "):
			if link, ok := resultAt(input[2:]); ok {
				fmt.Fprintf(out, "URL: %s\n", link)
			}

		case strings.HasPrefix(input, "r "):
			if link, ok := resultAt(input[2:]); ok {
				if err := readPage(context.Background(), out, link, false); err != nil {
					fmt.Fprintf(out, "Error reading page: %v\n", err)
				}
			}

		case input == "j":
			if err := printJSONResults(out, res); err != nil {
				fmt.Fprintf(out, "Error formatting JSON: %v\n", err)
			}

		case input == "":

		default:
			if _, err := strconv.Atoi(input); err == nil {
				if link, ok := resultAt(input); ok {
					if err := openURL(link); err != nil {
						fmt.Fprintf(out, "Error opening URL: %v\n", err)
					}
				}
				continue
			}
			return input, true
		}
	}
}

func printHelp(w io.Writer) {
	help := `
- Enter a search query to perform a new search.
- Type the index (1, 2, 3, etc) to open the result in a browser.
- Type 'c' plus the index ('c 1', 'c 2') to show the result URL.
- Type 'r' plus the index ('r 1') to read the result page as Markdown.
- Type 'site:example.com' to repeat the search restricted to a site.
- Type 'x' to toggle showing result URLs.
- Type 'd' to toggle debug output.
- Type 'j' to show the results as JSON.
- Type 'q', 'quit', or 'exit' to exit the program.
- Type '?' for this help message.
`
	fmt.Fprint(w, help)
}

func openURL(url string) error {
	var cmd *exec.Cmd

	if config != nil && config.URLHandler != "" {
		cmd = exec.Command(config.URLHandler, url)
		return cmd.Start()
	}

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("explorer", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}
