package batch

import (
	"context"
	"fmt"

	film "Annular/internal/calc/film"
)

// FilmBatchInput is a list of operating points sharing one channel and one
// set of phase properties.
type FilmBatchInput struct {
	film.Input
	Points []film.Point `json:"points"`
}

type FilmBatchResult struct {
	Summary film.Summary  `json:"summary"`
	Results []film.Record `json:"results"`
	Failed  int           `json:"failed"`
}

// CalculateFilm solves every point of in. Without an explicit policy failed
// points are kept as unsolved records.
func CalculateFilm(ctx context.Context, in FilmBatchInput, env film.Env) (FilmBatchResult, error) {
	if len(in.Points) == 0 {
		return FilmBatchResult{}, fmt.Errorf("%w: no points", film.ErrConfiguration)
	}
	calcIn := in.Input
	calcIn.Params.G, calcIn.Params.X = nil, nil
	calcIn.Params.LiquidVelocity = make(film.Values, len(in.Points))
	calcIn.Params.GasVelocity = make(film.Values, len(in.Points))
	for i, p := range in.Points {
		calcIn.Params.LiquidVelocity[i] = p.Jl
		calcIn.Params.GasVelocity[i] = p.Jg
	}
	if calcIn.Policy == "" {
		calcIn.Policy = film.PolicyRecord
	}

	c, err := film.NewCalculation(calcIn, env)
	if err != nil {
		return FilmBatchResult{}, err
	}
	// The imported points keep their x and G.
	c.Points = [][]film.Point{in.Points}
	res, err := c.Run(ctx, env.Options)
	if err != nil {
		return FilmBatchResult{}, err
	}
	return FilmBatchResult{
		Summary: c.Summary(),
		Results: res.Flat(),
		Failed:  film.CountFailed(res.Rows),
	}, nil
}
