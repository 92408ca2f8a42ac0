package entity

import "strings"

// DealTier is a coarse company-size classification. Each tier maps to a
// fixed monthly revenue value from the product catalog.
type DealTier string

const (
	TierCorporateSponsor DealTier = "corporateSponsor"
	TierFeatureVoter     DealTier = "featureVoter"
	TierFoundersClub     DealTier = "foundersClub"
)

// Monthly values: corporate sponsor is $1000/year, feature voter $200/year,
// founders club is a one-off annualized to the lowest monthly figure.
var tierMonthlyValue = map[DealTier]float64{
	TierCorporateSponsor: 83.33,
	TierFeatureVoter:     16.67,
	TierFoundersClub:     8.33,
}

func (t DealTier) MonthlyValue() float64 {
	if v, ok := tierMonthlyValue[t]; ok {
		return v
	}
	return tierMonthlyValue[TierFoundersClub]
}

func HighestTierMonthlyValue() float64 {
	return tierMonthlyValue[TierCorporateSponsor]
}

// ClassifyDealTier maps company size to a tier. Unknown size defaults to
// the lowest tier.
func ClassifyDealTier(employeeCount int, companyType string) DealTier {
	switch strings.ToLower(companyType) {
	case "fintech", "agency", "enterprise":
		return TierCorporateSponsor
	}
	if employeeCount >= 10 {
		return TierCorporateSponsor
	}
	if employeeCount >= 5 {
		return TierFeatureVoter
	}
	return TierFoundersClub
}
