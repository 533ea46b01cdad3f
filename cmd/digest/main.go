// Package main provides the doc-digest CLI: text statistics, document
// structure and model-backed summarization for PDF, text and Markdown files.
// Usage: digest [-info|-words|-vocab|-top-words N|-headers|-summarize|-report] [--output json] <file>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"doc-digest/internal/config"
	"doc-digest/internal/domain/entity"
	"doc-digest/internal/infra/extractor"
	"doc-digest/internal/infra/model"
	"doc-digest/internal/observability/logging"
	"doc-digest/internal/observability/metrics"
	"doc-digest/internal/observability/tracing"
	"doc-digest/internal/usecase/analyze"
	"doc-digest/internal/usecase/report"
	"doc-digest/internal/usecase/summarize"
)

// InfoOutput is the JSON shape of the -info operation.
type InfoOutput struct {
	File           string                  `json:"file"`
	Pages          int                     `json:"pages,omitempty"`
	Words          int                     `json:"words"`
	Bytes          int64                   `json:"bytes"`
	VocabularySize int                     `json:"vocabulary_size"`
	TopWords       []analyze.WordFrequency `json:"top_words"`
}

// SummaryOutput is the JSON shape of the -summarize operation.
type SummaryOutput struct {
	File             string `json:"file"`
	Summary          string `json:"summary"`
	SourceChunkCount int    `json:"source_chunk_count"`
}

func main() {
	var (
		showInfo     bool
		showWords    bool
		showVocab    bool
		topWords     int
		showHeaders  bool
		runSummarize bool
		runReport    bool
		outputFormat string
	)

	flag.BoolVar(&showInfo, "info", false, "Print general document information")
	flag.BoolVar(&showWords, "words", false, "Print the word count")
	flag.BoolVar(&showVocab, "vocab", false, "Print the vocabulary size")
	flag.IntVar(&topWords, "top-words", 0, "Print the N most frequent words")
	flag.BoolVar(&showHeaders, "headers", false, "Print the numbered document outline")
	flag.BoolVar(&runSummarize, "summarize", false, "Summarize the document with the configured model")
	flag.BoolVar(&runReport, "report", false, "Write the full Markdown report next to the input file")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.Parse()

	selected := 0
	for _, on := range []bool{showInfo, showWords, showVocab, topWords > 0, showHeaders, runSummarize, runReport} {
		if on {
			selected++
		}
	}
	if selected != 1 || flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	logger := initLogger()

	if os.Getenv("TRACING_ENABLED") == "true" {
		shutdown := tracing.InitProvider()
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("failed to shut down tracing", slog.Any("error", err))
			}
		}()
	}

	ext, err := extractor.ForPath(path)
	if err != nil {
		fail(logger, "unsupported input", err)
	}
	text, info, err := ext.Extract(path)
	if err != nil {
		fail(logger, "extraction failed", err)
	}

	ctx := context.Background()

	switch {
	case showInfo:
		stats := analyze.ComputeStats(text, analyze.DefaultTopWords)
		emitInfo(info, stats, outputFormat)

	case showWords:
		emitValue("words", analyze.ComputeStats(text, 1).WordCount, outputFormat)

	case showVocab:
		emitValue("vocabulary_size", analyze.ComputeStats(text, 1).VocabularySize, outputFormat)

	case topWords > 0:
		stats := analyze.ComputeStats(text, topWords)
		emitJSONOrText(stats.TopWords, outputFormat, func() {
			for _, entry := range stats.TopWords {
				fmt.Printf("%s: %d\n", entry.Word, entry.Count)
			}
		})

	case showHeaders:
		outline := analyze.Outline(text)
		emitJSONOrText(map[string]string{"outline": outline}, outputFormat, func() {
			fmt.Println(outline)
		})

	case runSummarize:
		final := summarizeText(ctx, logger, text)
		emitJSONOrText(SummaryOutput{
			File:             path,
			Summary:          final.Text,
			SourceChunkCount: final.SourceChunkCount,
		}, outputFormat, func() {
			fmt.Println(final.Text)
		})

	case runReport:
		final := summarizeText(ctx, logger, text)
		content := report.Build(report.Input{
			Info:    info,
			Stats:   analyze.ComputeStats(text, analyze.DefaultTopWords),
			Outline: analyze.Outline(text),
			Summary: final.Text,
		})
		outputPath, err := report.Save(path, content)
		if err != nil {
			fail(logger, "report failed", err)
		}
		fmt.Printf("Report saved to: %s\n", outputPath)
	}
}

// summarizeText wires the configured capability into the engine and runs it.
func summarizeText(ctx context.Context, logger *slog.Logger, text string) *entity.FinalSummary {
	capability, err := model.New(model.LoadConfig(), logger)
	if err != nil {
		fail(logger, "capability unavailable", err)
	}

	engineCfg, err := config.LoadEngineConfig()
	if err != nil {
		fail(logger, "invalid engine configuration", err)
	}

	engine, err := summarize.New(capability, engineCfg, logger, metrics.NewPrometheusEngineMetrics())
	if err != nil {
		fail(logger, "engine setup failed", err)
	}

	final, err := engine.Summarize(ctx, text)
	if err != nil {
		var chunkErr *entity.ChunkFailedError
		switch {
		case errors.As(err, &chunkErr):
			fail(logger, fmt.Sprintf("summarization failed at chunk %d", chunkErr.Index), err)
		case errors.Is(err, entity.ErrReductionDepthExceeded):
			fail(logger, "summarization exceeded the reduction depth", err)
		case errors.Is(err, entity.ErrCapabilityUnavailable):
			fail(logger, "model capability unavailable", err)
		default:
			fail(logger, "summarization failed", err)
		}
	}
	return final
}

func emitInfo(info extractor.Info, stats analyze.Stats, format string) {
	out := InfoOutput{
		File:           info.Path,
		Pages:          info.Pages,
		Words:          stats.WordCount,
		Bytes:          info.Bytes,
		VocabularySize: stats.VocabularySize,
		TopWords:       stats.TopWords,
	}
	emitJSONOrText(out, format, func() {
		fmt.Printf("File: %s\n", out.File)
		if out.Pages > 0 {
			fmt.Printf("Pages: %d\n", out.Pages)
		}
		fmt.Printf("Words: %d\n", out.Words)
		fmt.Printf("Bytes: %d\n", out.Bytes)
		fmt.Printf("Vocabulary size: %d\n", out.VocabularySize)
		fmt.Println("Most frequent words:")
		for _, entry := range out.TopWords {
			fmt.Printf("  %s: %d\n", entry.Word, entry.Count)
		}
	})
}

func emitValue(key string, value int, format string) {
	emitJSONOrText(map[string]int{key: value}, format, func() {
		fmt.Println(value)
	})
}

// emitJSONOrText writes v as indented JSON, or runs the text renderer.
func emitJSONOrText(v interface{}, format string, text func()) {
	if format != "json" {
		text()
		return
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}

func fail(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: digest [flags] <file.pdf|file.txt|file.md>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Exactly one operation flag is required:")
	fmt.Fprintln(os.Stderr, "  -info          general document information")
	fmt.Fprintln(os.Stderr, "  -words         word count")
	fmt.Fprintln(os.Stderr, "  -vocab         vocabulary size")
	fmt.Fprintln(os.Stderr, "  -top-words N   N most frequent words")
	fmt.Fprintln(os.Stderr, "  -headers       numbered document outline")
	fmt.Fprintln(os.Stderr, "  -summarize     model-generated summary")
	fmt.Fprintln(os.Stderr, "  -report        full Markdown report saved next to the input")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "  --output text|json")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, "  digest -info paper.pdf")
	fmt.Fprintln(os.Stderr, "  digest -top-words 15 notes.md")
	fmt.Fprintln(os.Stderr, "  MODEL_PROVIDER=claude digest -summarize paper.pdf")
	fmt.Fprintln(os.Stderr, "  digest -report --output json paper.pdf")
}

// initLogger initializes the process-wide structured logger.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}
