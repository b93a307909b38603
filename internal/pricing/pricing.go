package pricing

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownHomeType  = errors.New("unknown home type")
	ErrNegativeDistance = errors.New("distance cannot be negative")
	ErrUnknownCompany   = errors.New("unknown company")
)

const (
	StrategyFlatRate     = "flat_rate"
	StrategyUnitDistance = "unit_distance"
	StrategyMultiCompany = "multi_company"
)

// HomeTypeRates maps a home type (Bedsitter, Studio, ...) to a base cost.
type HomeTypeRates map[string]float64

// CompanyRates is one competitor's rate schedule.
type CompanyRates struct {
	Name         string  `yaml:"name"`
	BaseRate     float64 `yaml:"base_rate"`
	DistanceRate float64 `yaml:"distance_rate"`
}

// FlatRateConfig parameterizes the single-company fixed-cost scheme:
// total = packing + assembly + insurance + (distance/unit_km)*distance_rate + home_type_base[home].
type FlatRateConfig struct {
	Company       string        `yaml:"company"`
	PackingCost   float64       `yaml:"packing_cost"`
	AssemblyCost  float64       `yaml:"assembly_cost"`
	InsuranceCost float64       `yaml:"insurance_cost"`
	UnitKM        float64       `yaml:"unit_km"`
	DistanceRate  float64       `yaml:"distance_rate"`
	HomeTypeBase  HomeTypeRates `yaml:"home_type_base"`
}

// Config selects and parameterizes a pricing strategy. It is loaded once
// at startup and treated as immutable afterwards.
type Config struct {
	Strategy      string         `yaml:"strategy"`
	FlatRate      FlatRateConfig `yaml:"flat_rate"`
	SingleCompany CompanyRates   `yaml:"single_company"`
	Companies     []CompanyRates `yaml:"companies"`
	HomeTypeRates HomeTypeRates  `yaml:"home_type_rates"`
}

// Estimate is one company's priced offer for a move.
type Estimate struct {
	CompanyName string  `json:"company_name"`
	Amount      float64 `json:"amount"`
	Distance    float64 `json:"distance"`
	HomeType    string  `json:"house_type"`
}

// Strategy computes estimates from move parameters. Implementations are
// pure: no side effects, same inputs always produce the same output.
type Strategy interface {
	Name() string
	Estimates(distance float64, homeType string) ([]Estimate, error)
}

// Engine wraps the configured strategy and validates inputs before any
// arithmetic runs.
type Engine struct {
	strategy Strategy
}

func NewEngine(cfg Config) (*Engine, error) {
	var s Strategy
	switch cfg.Strategy {
	case "", StrategyUnitDistance:
		if len(cfg.HomeTypeRates) == 0 {
			return nil, errors.New("pricing: home_type_rates is empty")
		}
		s = &unitDistanceStrategy{company: cfg.SingleCompany, homeRates: cfg.HomeTypeRates}
	case StrategyFlatRate:
		if len(cfg.FlatRate.HomeTypeBase) == 0 {
			return nil, errors.New("pricing: flat_rate.home_type_base is empty")
		}
		if cfg.FlatRate.UnitKM <= 0 {
			return nil, errors.New("pricing: flat_rate.unit_km must be positive")
		}
		s = &flatRateStrategy{cfg: cfg.FlatRate}
	case StrategyMultiCompany:
		if len(cfg.Companies) == 0 {
			return nil, errors.New("pricing: companies is empty")
		}
		if len(cfg.HomeTypeRates) == 0 {
			return nil, errors.New("pricing: home_type_rates is empty")
		}
		s = &multiCompanyStrategy{companies: cfg.Companies, homeRates: cfg.HomeTypeRates}
	default:
		return nil, fmt.Errorf("pricing: unknown strategy %q", cfg.Strategy)
	}
	return &Engine{strategy: s}, nil
}

func (e *Engine) StrategyName() string {
	return e.strategy.Name()
}

// Estimates returns one estimate per configured company, validated.
func (e *Engine) Estimates(distance float64, homeType string) ([]Estimate, error) {
	if distance < 0 {
		return nil, ErrNegativeDistance
	}
	return e.strategy.Estimates(distance, homeType)
}

// EstimateFor recomputes the estimate for a specific company, used when
// a stored quote is recalculated. An empty company selects the first
// (or only) configured schedule.
func (e *Engine) EstimateFor(company string, distance float64, homeType string) (Estimate, error) {
	estimates, err := e.Estimates(distance, homeType)
	if err != nil {
		return Estimate{}, err
	}
	if company == "" {
		return estimates[0], nil
	}
	for _, est := range estimates {
		if est.CompanyName == company {
			return est, nil
		}
	}
	return Estimate{}, fmt.Errorf("%w: %s", ErrUnknownCompany, company)
}

// DefaultConfig returns the canonical single-company rate tables.
func DefaultConfig() Config {
	return Config{
		Strategy: StrategyUnitDistance,
		SingleCompany: CompanyRates{
			Name:         "Company A",
			BaseRate:     200,
			DistanceRate: 700,
		},
		HomeTypeRates: HomeTypeRates{
			"Bedsitter":   50,
			"One Bedroom": 100,
			"Studio":      80,
			"Two Bedroom": 120,
		},
	}
}
