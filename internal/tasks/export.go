package tasks

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinedex/internal/catalog"
	"github.com/desertthunder/cinedex/internal/formatter"
	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/shared"
	"golang.org/x/time/rate"
)

// ManifestName is the file written at the root of every export.
const ManifestName = "export_manifest.json"

// Downloader fetches a remote image.
type Downloader func(ctx context.Context, url string) ([]byte, error)

// ExportOpts contains configuration for record exports.
type ExportOpts struct {
	Format     formatter.Format   // Per-record file format (default: json)
	OutputDir  string             // Base output directory (default: cinedex_export_{epoch})
	NumWorkers int                // Concurrent workers (default: 5)
	RateLimit  float64            // Remote image downloads per second (default: 5)
	Images     catalog.ImageStore // Local image side table, may be nil
	Download   Downloader         // Remote image fetcher; nil skips remote images
}

// RecordResult is the outcome of exporting one record.
type RecordResult struct {
	ID      models.ID `json:"id"`
	Title   string    `json:"title"`
	Success bool      `json:"success"`
	Image   string    `json:"image"`
	Files   []string  `json:"files"`
	Error   string    `json:"error,omitempty"`
	Err     error     `json:"-"`
}

// ExportResult summarizes an export run.
type ExportResult struct {
	Format            formatter.Format `json:"format"`
	TotalRecords      int              `json:"total_records"`
	SuccessfulExports int              `json:"successful_exports"`
	FailedExports     int              `json:"failed_exports"`
	OutputDirectory   string           `json:"output_directory"`
	ManifestPath      string           `json:"-"`
	Results           []RecordResult   `json:"results"`
}

// Exporter writes catalog records and their images to disk.
type Exporter struct {
	logger *log.Logger
}

// NewExporter returns an Exporter. A nil logger discards output.
func NewExporter(logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Exporter{logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fileExtension(f formatter.Format) (string, error) {
	switch f {
	case formatter.FormatJSON:
		return ".json", nil
	case formatter.FormatCSV:
		return ".csv", nil
	case formatter.FormatMarkdown:
		return ".md", nil
	case formatter.FormatText, formatter.FormatTable:
		return ".txt", nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// Export writes movies concurrently to opts.OutputDir and returns a summary.
//
// Individual failures are recorded in the result. The returned error is only
// set when the run could not start or the manifest could not be written.
func (e *Exporter) Export(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	movies []models.Movie,
	opts ExportOpts,
) (*ExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if _, err := fileExtension(opts.Format); err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("cinedex_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		Format:          opts.Format,
		TotalRecords:    len(movies),
		OutputDirectory: opts.OutputDir,
		Results:         make([]RecordResult, 0, len(movies)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan models.Movie, len(movies))
	results := make(chan RecordResult, len(movies))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, limiter, opts)
	}

	e.sendProgress(prog, queueRecordsUpdate(len(movies)))
	go func() {
		defer close(jobs)
		for _, m := range movies {
			select {
			case <-ctx.Done():
				return
			case jobs <- m:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(movies), res))
		} else {
			result.FailedExports++
			e.logger.Warn("record export failed", "id", res.ID, "error", res.Err)
			e.sendProgress(prog, exportFailedUpdate(completed, len(movies), res))
		}
	}

	slices.SortFunc(result.Results, func(a, b RecordResult) int {
		return cmp.Compare(a.ID, b.ID)
	})

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	e.sendProgress(prog, writeManifestUpdate(manifestPath))
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// exportWorker is a worker goroutine that exports records from the jobs channel.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan models.Movie,
	results chan<- RecordResult,
	limiter *rate.Limiter,
	opts ExportOpts,
) {
	defer wg.Done()

	for m := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		results <- e.exportRecord(ctx, m, limiter, opts)
	}
}

// exportRecord writes one record file and, when the record has one, its image.
func (e *Exporter) exportRecord(ctx context.Context, m models.Movie, limiter *rate.Limiter, opts ExportOpts) RecordResult {
	res := RecordResult{ID: m.ID, Title: m.Title, Files: []string{}}
	fail := func(err error) RecordResult {
		res.Err, res.Error = err, err.Error()
		return res
	}

	base := filepath.Join(opts.OutputDir, recordName(m))
	ext, _ := fileExtension(opts.Format)

	data, err := formatter.Export([]models.Movie{m}, opts.Format)
	if err != nil {
		return fail(fmt.Errorf("%s export failed: %w", opts.Format, err))
	}
	if err := os.WriteFile(base+ext, data, 0644); err != nil {
		return fail(fmt.Errorf("record write failed: %w", err))
	}
	res.Files = append(res.Files, base+ext)

	ref := catalog.ResolveImage(opts.Images, e.logger, m)
	res.Image = ref.Source.String()

	var image []byte
	var imageExt string
	switch ref.Source {
	case catalog.ImageLocal:
		mediaType, decoded, err := catalog.DecodeDataURL(ref.Value)
		if err != nil {
			return fail(err)
		}
		image, imageExt = decoded, catalog.ImageExtension(mediaType)
	case catalog.ImageRemote:
		if opts.Download == nil {
			break
		}
		if err := limiter.Wait(ctx); err != nil {
			return fail(err)
		}
		downloaded, err := opts.Download(ctx, ref.Value)
		if err != nil {
			return fail(fmt.Errorf("image download failed: %w", err))
		}
		image, imageExt = downloaded, remoteExtension(ref.Value)
	}

	if image != nil {
		imagePath := base + "-image" + imageExt
		if err := formatter.WriteImageFile(imagePath, image); err != nil {
			return fail(err)
		}
		res.Files = append(res.Files, imagePath)
	}

	res.Success = true
	return res
}

// recordName returns a file-safe name for m, falling back to its title.
func recordName(m models.Movie) string {
	name := m.ID.String()
	if name == "" {
		name = m.Title
	}
	return sanitize(name)
}

// sanitize replaces characters that are unsafe in file names with underscores.
func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			return '_'
		case r < 0x20:
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "record"
	}
	return name
}

func remoteExtension(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		switch ext := path.Ext(u.Path); ext {
		case ".jpg", ".jpeg", ".png", ".gif", ".webp":
			return ext
		}
	}
	return ".img"
}

func writeManifest(result *ExportResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
