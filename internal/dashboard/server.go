// Package dashboard renders a small operator view of the posting history.
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/qepting91/reddit-curator/internal/health"
	"github.com/qepting91/reddit-curator/internal/history"
)

// ListenAndServe serves the history charts until the context is cancelled.
func ListenAndServe(ctx context.Context, store history.Store, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		render(r.Context(), w, store)
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func render(ctx context.Context, w http.ResponseWriter, store history.Store) {
	// 1. Subreddit share of everything posted so far
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Posts per Subreddit"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)

	totals, err := store.PostedCounts(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	var pieItems []opts.PieData
	for sub, n := range totals {
		pieItems = append(pieItems, opts.PieData{Name: sub, Value: n})
	}
	pie.AddSeries("Posts", pieItems)

	// 2. Trailing 24h activity
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Posts in the last 24h"}))

	recent, err := store.UsageCountsSince(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	var barX []string
	var barY []opts.BarData
	for sub, n := range recent {
		barX = append(barX, sub)
		barY = append(barY, opts.BarData{Value: n})
	}
	bar.SetXAxis(barX).AddSeries("Posts", barY)

	report := health.Evaluate(ctx, store, time.Now())
	w.Write([]byte("<p>status: " + report.Status.String() + " — " + report.Reason + "</p>"))

	pie.Render(w)
	bar.Render(w)
}
