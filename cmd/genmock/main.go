// Command genmock writes a synthetic incident export in the same shape as the
// real dataset, so the dashboard can be run and demoed without it. The output
// deliberately includes malformed dates and coordinates, padded state codes
// and rows with missing keys.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/Merged_Incident_Reports.csv -rows 2000 -end Mar-2025
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/incident-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/incident-dashboard/internal/domain"
	"github.com/couchcryptid/incident-dashboard/internal/pipeline"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	entities = []string{
		"Waymo LLC", "Cruise LLC", "Tesla Inc", "Zoox Inc", "Aurora Operations",
		"Nuro Inc", "Motional", "May Mobility", "Kodiak Robotics",
	}
	// Heavier weight on the states where most testing happens.
	states = []stateSpec{
		{"CA", 40, 37.77, -122.42},
		{"AZ", 20, 33.45, -112.07},
		{"TX", 15, 30.27, -97.74},
		{"FL", 8, 25.76, -80.19},
		{"NV", 6, 36.17, -115.14},
		{"GA", 4, 33.75, -84.39},
		{"MI", 4, 42.33, -83.05},
		{"PA", 3, 40.44, -79.99},
	}
	contactAreas = []string{
		"Front", "Front Left", "Front Right", "Left", "Right",
		"Rear", "Rear Left", "Rear Right", "Top", "Bottom", "Unknown",
	}
)

type stateSpec struct {
	code     string
	weight   int
	lat, lon float64
}

type options struct {
	out       string
	rows      int
	seed      uint64
	months    int
	end       time.Time
	malformed float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output CSV path")
	rows := flag.Int("rows", 1000, "number of incident rows")
	seed := flag.Uint64("seed", 42, "random seed")
	months := flag.Int("months", 24, "number of months the incidents span")
	end := flag.String("end", "Mar-2025", "latest incident month (Mon-YYYY)")
	malformed := flag.Float64("malformed", 0.02, "fraction of rows with a malformed date or coordinate")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return errors.New("missing required flag: -out")
	}
	endMonth, ok := domain.ParseIncidentDate(*end)
	if !ok {
		return fmt.Errorf("invalid -end %q: want Mon-YYYY", *end)
	}
	if *rows < 1 || *months < 1 {
		return errors.New("-rows and -months must be positive")
	}

	opts := options{
		out:       *out,
		rows:      *rows,
		seed:      *seed,
		months:    *months,
		end:       endMonth,
		malformed: *malformed,
	}

	df := generate(opts)
	if err := writeCSV(opts.out, df); err != nil {
		return fmt.Errorf("writing %s: %w", opts.out, err)
	}
	log.Printf("wrote %d rows to %s", df.Nrow(), opts.out)

	return printStats(opts.out)
}

// generate builds the dataset column by column.
func generate(opts options) dataframe.DataFrame {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))

	ids := make([]string, opts.rows)
	entityCol := make([]string, opts.rows)
	dateCol := make([]string, opts.rows)
	stateCol := make([]string, opts.rows)
	latCol := make([]string, opts.rows)
	lonCol := make([]string, opts.rows)
	areaCols := make([][]string, len(contactAreas))
	for i := range areaCols {
		areaCols[i] = make([]string, opts.rows)
	}

	totalWeight := 0
	for _, s := range states {
		totalWeight += s.weight
	}

	for i := 0; i < opts.rows; i++ {
		ids[i] = fmt.Sprintf("%d-%05d", 30000+i/50, i)
		entityCol[i] = entities[skewedIndex(rng, len(entities))]

		month := opts.end.AddDate(0, -rng.IntN(opts.months), 0)
		dateCol[i] = month.Format("Jan-2006")

		st := pickState(rng, totalWeight)
		stateCol[i] = st.code
		latCol[i] = strconv.FormatFloat(st.lat+rng.NormFloat64()*0.2, 'f', 5, 64)
		lonCol[i] = strconv.FormatFloat(st.lon+rng.NormFloat64()*0.2, 'f', 5, 64)

		// One or two damaged areas per incident; the rest are mostly "N" or blank.
		hits := 1 + rng.IntN(2)
		for j := range areaCols {
			if rng.Float64() < 0.5 {
				areaCols[j][i] = "N"
			}
		}
		for k := 0; k < hits; k++ {
			areaCols[rng.IntN(len(areaCols))][i] = domain.DamagedFlag
		}

		corrupt(rng, opts.malformed, i, dateCol, stateCol, entityCol, latCol, lonCol)
	}

	cols := []series.Series{
		series.New(ids, series.String, "Report ID"),
		series.New(entityCol, series.String, domain.ColumnReportingEntity),
		series.New(dateCol, series.String, domain.ColumnIncidentDate),
		series.New(stateCol, series.String, domain.ColumnState),
		series.New(latCol, series.String, domain.ColumnLatitude),
		series.New(lonCol, series.String, domain.ColumnLongitude),
	}
	for j, area := range contactAreas {
		cols = append(cols, series.New(areaCols[j], series.String, "SV Contact Area - "+area))
	}
	return dataframe.New(cols...)
}

// skewedIndex favours low indexes so a few entities dominate, like the real data.
func skewedIndex(rng *rand.Rand, n int) int {
	return min(int(rng.ExpFloat64()*float64(n)/4), n-1)
}

func pickState(rng *rand.Rand, totalWeight int) stateSpec {
	r := rng.IntN(totalWeight)
	for _, s := range states {
		if r < s.weight {
			return s
		}
		r -= s.weight
	}
	return states[0]
}

// corrupt injects the data quality problems the pipeline must tolerate.
func corrupt(rng *rand.Rand, rate float64, i int, dates, stateCol, entityCol, lat, lon []string) {
	if rng.Float64() < rate {
		dates[i] = []string{"", "N/A", "2024-03", "Foo-2024", "Mar 2024"}[rng.IntN(5)]
	}
	if rng.Float64() < rate {
		lat[i] = []string{"", "unknown", "37,77"}[rng.IntN(3)]
	}
	if rng.Float64() < rate {
		lon[i] = ""
	}
	if rng.Float64() < rate {
		stateCol[i] = " " + stateCol[i] + " "
	}
	if rng.Float64() < rate/2 {
		stateCol[i] = ""
	}
	if rng.Float64() < rate/2 {
		entityCol[i] = ""
	}
}

func writeCSV(path string, df dataframe.DataFrame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printStats loads the file back through the dashboard's own reader and
// prints the table sizes, for updating test assertions and demo notes.
func printStats(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := csvfile.Decode(f)
	if err != nil {
		return fmt.Errorf("reading back %s: %w", path, err)
	}

	incidents, failures := pipeline.Normalize(records)
	report := pipeline.Aggregate(incidents)

	fmt.Println("\n=== Generated dataset ===")
	fmt.Printf("Rows: %d\n", report.SourceRows)
	fmt.Printf("Coercion failures: incident_date=%d, latitude=%d, longitude=%d\n",
		failures[domain.FieldIncidentDate], failures[domain.FieldLatitude], failures[domain.FieldLongitude])
	if report.Window != nil {
		fmt.Printf("Window: %s .. %s (%d rows, %d months)\n",
			domain.MonthLabel(report.Window.Start), domain.MonthLabel(report.Window.End),
			report.Window.Rows, len(report.Monthly))
	}
	fmt.Printf("States: %d, entities: %d, state/entity pairs: %d\n",
		len(report.States), len(report.Entities), len(report.StateEntities))
	fmt.Printf("Damage locations: %d states x %d locations\n",
		len(report.DamagePivot.States), len(report.DamagePivot.Locations))
	return nil
}
