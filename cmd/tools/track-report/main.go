// track-report renders an HTML trajectory chart for one recorded
// tracking session: one scatter series per track, plotted in image
// coordinates (y inverted so the chart matches the video frame).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/platewatch/platewatch/internal/track"
)

var (
	dbPath    = flag.String("db", "platewatch.db", "SQLite results database")
	sessionID = flag.String("session", "", "Session id (default: most recent)")
	outPath   = flag.String("out", "track-report.html", "Output HTML path")
)

func main() {
	flag.Parse()

	store, err := track.OpenStore(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	session := *sessionID
	if session == "" {
		sessions, err := store.Sessions()
		if err != nil {
			log.Fatalf("list sessions: %v", err)
		}
		if len(sessions) == 0 {
			log.Fatalf("no sessions in %s", *dbPath)
		}
		session = sessions[0].ID
	}

	observations, err := store.Observations(session, 0)
	if err != nil {
		log.Fatalf("load observations: %v", err)
	}
	if len(observations) == 0 {
		log.Fatalf("session %s has no observations", session)
	}

	// Group centers per track; observations arrive ordered by track
	// then frame, so series points stay in temporal order.
	series := make(map[int64][]opts.ScatterData)
	var order []int64
	maxY := 0.0
	for _, obs := range observations {
		if _, seen := series[obs.TrackID]; !seen {
			order = append(order, obs.TrackID)
		}
		// Image y grows downward; plot -y so trajectories match the
		// video frame.
		series[obs.TrackID] = append(series[obs.TrackID], opts.ScatterData{
			Value: []interface{}{obs.CenterX, -obs.CenterY},
		})
		if obs.CenterY > maxY {
			maxY = obs.CenterY
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Track Trajectories",
			Width:     "1000px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Track trajectories",
			Subtitle: fmt.Sprintf("session=%s tracks=%d observations=%d", session, len(order), len(observations)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x (px)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "-y (px)", NameLocation: "middle", NameGap: 30, Min: -maxY * 1.05, Max: 0}),
	)

	for _, id := range order {
		scatter.AddSeries(fmt.Sprintf("track %d", id), series[id],
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	}

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	if err := scatter.Render(f); err != nil {
		f.Close()
		log.Fatalf("render chart: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("close output: %v", err)
	}

	log.Printf("wrote %s (%d tracks)", *outPath, len(order))
}
