package synth

import (
	"fmt"
	"math/rand/v2"
	"time"

	"custlens/domain/core"
	"custlens/domain/customer"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution parameters of the synthetic customer table.
const (
	IncomeMean   = 50000.0
	IncomeStdDev = 15000.0
	PurchaseMin  = 10.0
	PurchaseMax  = 500.0
)

// GeneratorConfig configures the customer data generator
type GeneratorConfig struct {
	NumRows int   `json:"num_rows"`
	Seed    int64 `json:"seed"` // 0 seeds from the clock
}

// DefaultGeneratorConfig returns the dashboard's default dataset size, unseeded.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{NumRows: customer.DefaultRows}
}

// Validate rejects non-positive row counts.
func (c GeneratorConfig) Validate() error {
	if c.NumRows <= 0 {
		return fmt.Errorf("%w: got %d", core.ErrInvalidRowCount, c.NumRows)
	}
	return nil
}

// Generator draws customer records from a single seeded stream.
type Generator struct {
	config   GeneratorConfig
	rng      *rand.Rand
	income   distuv.Normal
	purchase distuv.Uniform
}

// NewGenerator creates a generator. A zero seed is replaced by a clock-derived
// one so the dataset's Params still record a reproducible seed.
func NewGenerator(config GeneratorConfig) *Generator {
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
	src := rand.NewPCG(uint64(config.Seed), uint64(config.Seed)^0x9e3779b97f4a7c15)
	return &Generator{
		config:   config,
		rng:      rand.New(src),
		income:   distuv.Normal{Mu: IncomeMean, Sigma: IncomeStdDev, Src: src},
		purchase: distuv.Uniform{Min: PurchaseMin, Max: PurchaseMax, Src: src},
	}
}

// Generate produces the full dataset.
func (g *Generator) Generate() (*customer.Dataset, error) {
	if err := g.config.Validate(); err != nil {
		return nil, err
	}

	records := make([]customer.Record, g.config.NumRows)
	for i := range records {
		records[i] = g.record(i + 1)
	}

	return customer.NewDataset(customer.Params{
		NumRows: g.config.NumRows,
		Seed:    g.config.Seed,
		Source:  customer.SourceSynthetic,
	}, records)
}

func (g *Generator) record(id int) customer.Record {
	return customer.Record{
		CustomerID:      id,
		Age:             customer.MinAge + g.rng.IntN(customer.MaxAge-customer.MinAge),
		Income:          g.income.Rand(),
		PurchaseAmount:  g.purchase.Rand(),
		City:            customer.Cities[g.rng.IntN(len(customer.Cities))],
		ProductCategory: customer.Categories[g.rng.IntN(len(customer.Categories))],
	}
}

// Synthesize generates a dataset in one call.
func Synthesize(config GeneratorConfig) (*customer.Dataset, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return NewGenerator(config).Generate()
}
