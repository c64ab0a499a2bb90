package main

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"

	"fanseek/backends"
)

const (
	maxContentWords = 128
	terminalWidth   = 80
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// resultLinks flattens the response into the order results are numbered on
// screen: web and news first, then videos, then images.
func resultLinks(res *backends.SearchResults) []string {
	links := make([]string, 0, len(res.Results)+len(res.Videos)+len(res.Images))
	for _, r := range res.Results {
		links = append(links, r.URL)
	}
	for _, v := range res.Videos {
		links = append(links, v.Link)
	}
	for _, img := range res.Images {
		links = append(links, img.Link)
	}
	return links
}

func printResults(w io.Writer, res *backends.SearchResults, expand bool, noColor bool) {
	if noColor {
		color.NoColor = true
	}

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow)
	dim := color.New(color.FgHiBlack)
	bold := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Query: %s\n\n", bold.Sprint(res.Query))

	index := 0
	for _, result := range res.Results {
		index++
		fmt.Fprintf(w, " %s %s %s\n",
			cyan.Sprintf("%2d.", index),
			green.Sprint(truncateTitle(result.Title)),
			yellow.Sprintf("[%s]", extractDomain(result.URL)),
		)
		if expand && result.URL != "" {
			fmt.Fprintf(w, "     %s\n", result.URL)
		}
		if result.Content != "" {
			for _, line := range wrapText(formatContent(result.Content), terminalWidth-5) {
				fmt.Fprintf(w, "     %s\n", line)
			}
		}
		fmt.Fprintln(w)
	}

	if len(res.Videos) > 0 {
		fmt.Fprintln(w, bold.Sprint("Videos"))
		for _, v := range res.Videos {
			index++
			fmt.Fprintf(w, " %s %s %s\n",
				cyan.Sprintf("%2d.", index),
				green.Sprint(truncateTitle(v.Title)),
				yellow.Sprintf("[%s]", extractDomain(v.Link)),
			)
			if expand && v.Link != "" {
				fmt.Fprintf(w, "     %s\n", v.Link)
			}
			var parts []string
			for _, p := range []string{v.Duration, v.Channel, v.Source, v.Date} {
				if p != "" {
					parts = append(parts, p)
				}
			}
			if len(parts) > 0 {
				fmt.Fprintf(w, "     %s\n", dim.Sprint(strings.Join(parts, " · ")))
			}
		}
		fmt.Fprintln(w)
	}

	if len(res.Images) > 0 {
		fmt.Fprintln(w, bold.Sprint("Images"))
		for _, img := range res.Images {
			index++
			fmt.Fprintf(w, " %s %s %s\n",
				cyan.Sprintf("%2d.", index),
				green.Sprint(truncateTitle(img.Title)),
				yellow.Sprintf("[%s]", extractDomain(img.Link)),
			)
			if expand && img.ThumbnailURL != "" {
				fmt.Fprintf(w, "     %s\n", dim.Sprint(img.ThumbnailURL))
			}
		}
		fmt.Fprintln(w)
	}

	if index == 0 {
		fmt.Fprintln(w, "No results found.")
	}
}

func truncateTitle(title string) string {
	if title == "" {
		return "No title"
	}
	runes := []rune(title)
	if len(runes) > 70 {
		return string(runes[:67]) + "..."
	}
	return title
}

func extractDomain(urlStr string) string {
	if urlStr == "" {
		return ""
	}

	parts := strings.Split(urlStr, "//")
	if len(parts) > 1 {
		return strings.Split(parts[1], "/")[0]
	}
	return strings.Split(parts[0], "/")[0]
}

func formatContent(content string) string {
	content = html.UnescapeString(content)
	content = htmlTagPattern.ReplaceAllString(content, "")

	words := strings.Fields(content)
	if len(words) > maxContentWords {
		return strings.Join(words[:maxContentWords], " ") + " ..."
	}
	return strings.Join(words, " ")
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		width = terminalWidth
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{}
	}

	var lines []string
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" " + word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}

	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return lines
}

func printJSONResults(w io.Writer, v any) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func printLinksOnly(w io.Writer, res *backends.SearchResults) {
	for _, link := range resultLinks(res) {
		if link != "" {
			fmt.Fprintln(w, link)
		}
	}
}

// writeOutput renders res to outputFile, or stdout when it is empty
func writeOutput(res *backends.SearchResults, opts *SearchOptions, noColor bool) error {
	var w io.Writer = os.Stdout
	if opts.OutputFile != "" {
		file, err := os.Create(opts.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		w = file
		noColor = true
	}

	switch {
	case opts.LinksOnly:
		printLinksOnly(w, res)
		return nil
	case opts.JSON:
		return printJSONResults(w, res)
	default:
		printResults(w, res, opts.Expand, noColor)
		return nil
	}
}
