package pricing

import "fmt"

// unitDistanceStrategy is the canonical single-company scheme:
// amount = base_rate + home_type_rate[home] + distance * distance_rate.
type unitDistanceStrategy struct {
	company   CompanyRates
	homeRates HomeTypeRates
}

func (s *unitDistanceStrategy) Name() string { return StrategyUnitDistance }

func (s *unitDistanceStrategy) Estimates(distance float64, homeType string) ([]Estimate, error) {
	homeRate, ok := s.homeRates[homeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHomeType, homeType)
	}

	amount := s.company.BaseRate + homeRate + distance*s.company.DistanceRate
	return []Estimate{{
		CompanyName: s.company.Name,
		Amount:      amount,
		Distance:    distance,
		HomeType:    homeType,
	}}, nil
}

// flatRateStrategy prices with fixed packing/assembly/insurance costs
// plus a per-unit-distance transport charge and a home type base cost.
type flatRateStrategy struct {
	cfg FlatRateConfig
}

func (s *flatRateStrategy) Name() string { return StrategyFlatRate }

func (s *flatRateStrategy) Estimates(distance float64, homeType string) ([]Estimate, error) {
	base, ok := s.cfg.HomeTypeBase[homeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHomeType, homeType)
	}

	transport := (distance / s.cfg.UnitKM) * s.cfg.DistanceRate
	total := s.cfg.PackingCost + s.cfg.AssemblyCost + s.cfg.InsuranceCost + transport + base

	return []Estimate{{
		CompanyName: s.cfg.Company,
		Amount:      total,
		Distance:    distance,
		HomeType:    homeType,
	}}, nil
}

// multiCompanyStrategy produces one estimate per configured competitor
// so the client can compare offers.
type multiCompanyStrategy struct {
	companies []CompanyRates
	homeRates HomeTypeRates
}

func (s *multiCompanyStrategy) Name() string { return StrategyMultiCompany }

func (s *multiCompanyStrategy) Estimates(distance float64, homeType string) ([]Estimate, error) {
	homeRate, ok := s.homeRates[homeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHomeType, homeType)
	}

	estimates := make([]Estimate, 0, len(s.companies))
	for _, c := range s.companies {
		estimates = append(estimates, Estimate{
			CompanyName: c.Name,
			Amount:      c.BaseRate + homeRate + distance*c.DistanceRate,
			Distance:    distance,
			HomeType:    homeType,
		})
	}
	return estimates, nil
}
