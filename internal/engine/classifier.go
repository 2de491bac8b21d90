package engine

import (
	"time"

	"github.com/lending-office/backoffice/internal/models"
)

// Bucket is the regulatory asset-classification label derived from days past
// due. It is computed on demand and never persisted.
type Bucket string

const (
	BucketStandard    Bucket = "STANDARD"
	BucketSubStandard Bucket = "SUB_STANDARD"
	BucketDoubtful    Bucket = "DOUBTFUL"
	BucketLoss        Bucket = "LOSS"
)

// IRAC day thresholds, half-open: [90,365) sub-standard, [365,730) doubtful,
// 730 and beyond loss.
const (
	subStandardDays = 90
	doubtfulDays    = 365
	lossDays        = 730
)

// Severity orders buckets from safest (0) to worst. Classification is
// monotonic in DPD under this ordering.
func (b Bucket) Severity() int {
	switch b {
	case BucketSubStandard:
		return 1
	case BucketDoubtful:
		return 2
	case BucketLoss:
		return 3
	default:
		return 0
	}
}

// IsNPA reports whether the bucket counts toward gross NPA.
func (b Bucket) IsNPA() bool {
	return b != BucketStandard
}

// Classification is the result of classifying a single loan.
type Classification struct {
	DPD    int    `json:"dpd"`
	Bucket Bucket `json:"bucket"`
}

// Classify computes days past due from the oldest unpaid installment and maps
// it to a bucket. A loan with no unpaid entries, or whose oldest unpaid entry
// is not yet due, is STANDARD. Pure function, safe to call concurrently.
func Classify(asOf time.Time, entries []models.ScheduleEntry) Classification {
	var oldest *models.ScheduleEntry
	for i := range entries {
		e := &entries[i]
		if e.Status == models.EMIPaid {
			continue
		}
		if oldest == nil || e.DueDate.Before(oldest.DueDate) {
			oldest = e
		}
	}
	if oldest == nil {
		return Classification{DPD: 0, Bucket: BucketStandard}
	}

	dpd := wholeDays(oldest.DueDate, asOf)
	if dpd < 0 {
		dpd = 0
	}
	return Classification{DPD: dpd, Bucket: BucketForDPD(dpd)}
}

// BucketForDPD maps days past due to its regulatory bucket.
func BucketForDPD(dpd int) Bucket {
	switch {
	case dpd >= lossDays:
		return BucketLoss
	case dpd >= doubtfulDays:
		return BucketDoubtful
	case dpd >= subStandardDays:
		return BucketSubStandard
	default:
		return BucketStandard
	}
}

// wholeDays counts calendar days from a to b, ignoring time of day.
func wholeDays(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
