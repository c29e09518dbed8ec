package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/desertthunder/cinedex/internal/catalog"
	"github.com/desertthunder/cinedex/internal/formatter"
	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/routes"
	"github.com/desertthunder/cinedex/internal/shared"
	"github.com/desertthunder/cinedex/internal/tasks"
	"github.com/urfave/cli/v3"
)

func (r *Runner) prepareMovies(ctx context.Context, cmd *cli.Command, path string) error {
	if err := r.connect(ctx, cmd); err != nil {
		return err
	}
	return r.requireSession(path)
}

func idArg(cmd *cli.Command) (models.ID, error) {
	id := models.ID(strings.TrimSpace(cmd.StringArg("id")))
	if !id.Truthy() {
		return "", fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	return id, nil
}

// MoviesList prints one page of records, or every page with --all.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.prepareMovies(ctx, cmd, routes.PathMovies); err != nil {
		return err
	}

	page := max(int(cmd.Int("page")), 1)
	search := strings.TrimSpace(cmd.String("search"))

	list := catalog.NewListController(r.deps(), catalog.ListOpts{PageSize: r.config.Catalog.PageSize})
	r.logger.Debug("listing movies", "page", page, "search", search, "all", cmd.Bool("all"))

	if err := list.Fetch(ctx, page, search); err != nil {
		return err
	}
	if cmd.Bool("all") {
		for list.HasMore() {
			if err := list.LoadMore(ctx); err != nil {
				return err
			}
		}
	}

	data, err := formatter.Export(list.Records(), format)
	if err != nil {
		return err
	}
	if err := r.writeBytes(data); err != nil {
		return err
	}

	if format == formatter.FormatTable && !cmd.Bool("all") && list.HasMore() {
		r.writePlain("More records: cinedex movies list --page %d%s\n", list.Page()+1, searchSuffix(search))
	}
	return nil
}

func searchSuffix(search string) string {
	if search == "" {
		return ""
	}
	return fmt.Sprintf(" --search %q", search)
}

// applyFieldFlags copies the field flags that were given onto the form.
func applyFieldFlags(cmd *cli.Command, form *catalog.FormController) error {
	var errs []error
	for _, name := range models.FieldNames {
		if !cmd.IsSet(name) {
			continue
		}
		if err := form.Set(name, strings.TrimSpace(cmd.String(name))); err != nil {
			errs = append(errs, fmt.Errorf("%w: --%s: %w", shared.ErrInvalidArgument, name, err))
		}
	}
	return errors.Join(errs...)
}

// MoviesAdd creates a record from the field flags. A --image file is stored
// locally under the id the server assigns.
func (r *Runner) MoviesAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepareMovies(ctx, cmd, routes.PathAdd); err != nil {
		return err
	}

	form := catalog.NewCreateForm(r.deps())
	if err := applyFieldFlags(cmd, form); err != nil {
		return err
	}
	if path := cmd.String("image"); path != "" {
		form.SelectImage(path)
	}

	movie, err := form.Submit(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("movie created", "id", movie.ID, "title", movie.Title)
	return r.writePlain("ID: %s\n", movie.ID)
}

// MoviesEdit loads a record, applies the given field flags and saves it.
func (r *Runner) MoviesEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd)
	if err != nil {
		return err
	}
	if err := r.prepareMovies(ctx, cmd, routes.EditPath(id)); err != nil {
		return err
	}

	form := catalog.NewEditForm(r.deps(), id, nil)
	if err := form.Load(ctx); err != nil {
		return err
	}
	if err := applyFieldFlags(cmd, form); err != nil {
		return err
	}
	if path := cmd.String("image"); path != "" {
		form.SelectImage(path)
	}

	movie, err := form.Submit(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("movie updated", "id", id, "title", movie.Title)
	return nil
}

// MoviesDelete removes a record after a y/N prompt, skipped with --yes.
func (r *Runner) MoviesDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd)
	if err != nil {
		return err
	}
	if err := r.prepareMovies(ctx, cmd, routes.PathMovies); err != nil {
		return err
	}

	list := catalog.NewListController(r.deps(), catalog.ListOpts{PageSize: r.config.Catalog.PageSize})
	list.ConfirmDelete(id)

	if !cmd.Bool("yes") {
		ok, err := r.confirm(fmt.Sprintf("Delete movie %s? This cannot be undone.", id))
		if err != nil {
			return err
		}
		if !ok {
			list.CancelDelete()
			return r.writePlain("Cancelled\n")
		}
	}

	return list.DeleteConfirmed(ctx)
}

// MoviesImage resolves a record's image (local first, then remote) and
// optionally saves or opens it.
func (r *Runner) MoviesImage(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd)
	if err != nil {
		return err
	}
	if err := r.prepareMovies(ctx, cmd, routes.PathMovies); err != nil {
		return err
	}

	all, err := r.movies().AllMovies(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(all, func(m models.Movie) bool { return m.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrRecordNotFound, id)
	}

	ref := catalog.ResolveImage(r.images, r.logger, all[i])
	r.writePlain("Source: %s\n", ref.Source)

	switch ref.Source {
	case catalog.ImagePlaceholder:
		return r.writePlain("No image for %q\n", all[i].Title)
	case catalog.ImageRemote:
		r.writePlain("URL: %s\n", ref.Value)
	}

	save := cmd.String("save")
	if save == "" && cmd.Bool("open") && ref.Source == catalog.ImageLocal {
		save = filepath.Join(os.TempDir(), "cinedex-"+id.String())
	}

	if save != "" {
		written, err := r.saveImage(ref, save)
		if err != nil {
			return err
		}
		r.writePlain("✓ Saved to %s\n", written)
		if cmd.Bool("open") {
			return shared.OpenBrowser(written)
		}
		return nil
	}

	if cmd.Bool("open") {
		return shared.OpenBrowser(ref.Value)
	}
	return nil
}

// saveImage writes ref to path, adding an extension for local images when path has none.
func (r *Runner) saveImage(ref catalog.ImageRef, path string) (string, error) {
	var data []byte
	switch ref.Source {
	case catalog.ImageLocal:
		mediaType, decoded, err := catalog.DecodeDataURL(ref.Value)
		if err != nil {
			return "", err
		}
		if filepath.Ext(path) == "" {
			path += catalog.ImageExtension(mediaType)
		}
		data = decoded
	case catalog.ImageRemote:
		downloaded, err := formatter.DownloadImage(ref.Value)
		if err != nil {
			return "", err
		}
		data = downloaded
	default:
		return "", fmt.Errorf("%w: no image to save", shared.ErrInvalidImage)
	}

	if err := formatter.WriteImageFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// MoviesExport writes every record, plus its local or downloaded image, to a directory.
func (r *Runner) MoviesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.prepareMovies(ctx, cmd, routes.PathMovies); err != nil {
		return err
	}

	all, err := r.movies().AllMovies(ctx)
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  r.config.API.RateLimit,
		Images:     r.images,
	}
	if cmd.Bool("download") {
		opts.Download = func(_ context.Context, url string) ([]byte, error) {
			return formatter.DownloadImage(url)
		}
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	result, err := tasks.NewExporter(r.logger).Export(ctx, progress, all, opts)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("✓ Exported %d of %d records to %s\n", result.SuccessfulExports, result.TotalRecords, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("✗ %d failed, see %s\n", result.FailedExports, result.ManifestPath)
	}
	return nil
}
