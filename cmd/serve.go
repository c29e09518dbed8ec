package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/server"
	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"
)

var sampleMovies = []models.Movie{
	{Title: "Dune", Type: models.TypeMovie, Director: "Denis Villeneuve", Budget: "$165M", Location: "Jordan, Abu Dhabi", Duration: "155 min", Year: "2021"},
	{Title: "Heat", Type: models.TypeMovie, Director: "Michael Mann", Budget: "$60M", Location: "Los Angeles", Duration: "170 min", Year: "1995"},
	{Title: "Breaking Bad", Type: models.TypeTVShow, Director: "Vince Gilligan", Budget: "$3M/ep", Location: "Albuquerque", Duration: "49 min/ep", Year: "2008-2013"},
	{Title: "Spirited Away", Type: models.TypeMovie, Director: "Hayao Miyazaki", Budget: "$19M", Location: "Tokyo", Duration: "125 min", Year: "2001"},
	{Title: "The Wire", Type: models.TypeTVShow, Director: "David Simon", Budget: "$2M/ep", Location: "Baltimore", Duration: "60 min/ep", Year: "2002-2008"},
}

// Serve runs the in-memory catalog backend until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	host, port := config.Server.Host, config.Server.Port
	if cmd.IsSet("host") {
		host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		port = int(cmd.Int("port"))
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	handler := server.NewCatalogHandler(r.logger, bcrypt.DefaultCost)
	if cmd.Bool("seed") {
		handler.Seed(sampleMovies...)
		r.logger.Info("seeded sample records", "count", len(sampleMovies))
	}

	r.writePlain("Serving catalog API on http://%s/ (ctrl+c to stop)\n", addr)
	return server.ListenAndServe(ctx, addr, server.NewCatalogRouter(handler, r.logger), r.logger)
}
