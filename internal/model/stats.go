package model

// FarmerStats counts farmers per certification status. Total is always the
// sum of the three buckets.
type FarmerStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Certified int64 `json:"certified"`
	Declined  int64 `json:"declined"`
}

// NewFarmerStats builds stats from a per-status count snapshot. Unknown
// statuses are ignored so the sum invariant holds.
func NewFarmerStats(counts map[CertificationStatus]int64) FarmerStats {
	s := FarmerStats{
		Pending:   counts[StatusPending],
		Certified: counts[StatusCertified],
		Declined:  counts[StatusDeclined],
	}
	s.Total = s.Pending + s.Certified + s.Declined
	return s
}
