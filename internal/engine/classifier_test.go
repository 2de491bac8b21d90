package engine

import (
	"testing"
	"time"

	"github.com/lending-office/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

var asOf = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func pendingEntry(dueDaysAgo int) models.ScheduleEntry {
	return models.ScheduleEntry{
		EMIAmount: decimal.NewFromInt(10000),
		DueDate:   asOf.AddDate(0, 0, -dueDaysAgo),
		Status:    models.EMIPending,
	}
}

func TestClassify_NoUnpaidEntries(t *testing.T) {
	t.Parallel()

	entries := []models.ScheduleEntry{
		{DueDate: asOf.AddDate(0, -2, 0), Status: models.EMIPaid},
		{DueDate: asOf.AddDate(0, -1, 0), Status: models.EMIPaid},
	}
	c := Classify(asOf, entries)
	if c.DPD != 0 || c.Bucket != BucketStandard {
		t.Errorf("Expected DPD 0 STANDARD, got DPD %d %s", c.DPD, c.Bucket)
	}

	c = Classify(asOf, nil)
	if c.DPD != 0 || c.Bucket != BucketStandard {
		t.Errorf("Empty schedule: expected DPD 0 STANDARD, got DPD %d %s", c.DPD, c.Bucket)
	}
}

func TestClassify_NotYetDue(t *testing.T) {
	t.Parallel()

	entries := []models.ScheduleEntry{pendingEntry(-20)} // due 20 days out
	c := Classify(asOf, entries)
	if c.DPD != 0 || c.Bucket != BucketStandard {
		t.Errorf("Expected DPD 0 STANDARD, got DPD %d %s", c.DPD, c.Bucket)
	}
}

func TestClassify_OldestUnpaidDrivesDPD(t *testing.T) {
	t.Parallel()

	entries := []models.ScheduleEntry{
		{DueDate: asOf.AddDate(0, 0, -200), Status: models.EMIPaid},
		pendingEntry(120),
		pendingEntry(30),
	}
	c := Classify(asOf, entries)
	if c.DPD != 120 {
		t.Errorf("Expected DPD 120 from oldest unpaid installment, got %d", c.DPD)
	}
	if c.Bucket != BucketSubStandard {
		t.Errorf("Expected SUB_STANDARD, got %s", c.Bucket)
	}
}

func TestClassify_BucketBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		dpd    int
		bucket Bucket
	}{
		{0, BucketStandard},
		{89, BucketStandard},
		{90, BucketSubStandard},
		{364, BucketSubStandard},
		{365, BucketDoubtful},
		{729, BucketDoubtful},
		{730, BucketLoss},
		{2000, BucketLoss},
	}
	for _, tc := range cases {
		c := Classify(asOf, []models.ScheduleEntry{pendingEntry(tc.dpd)})
		if c.DPD != tc.dpd {
			t.Errorf("DPD %d: computed %d", tc.dpd, c.DPD)
		}
		if c.Bucket != tc.bucket {
			t.Errorf("DPD %d: expected %s, got %s", tc.dpd, tc.bucket, c.Bucket)
		}
	}
}

func TestClassify_MonotonicInDPD(t *testing.T) {
	t.Parallel()

	prev := BucketStandard
	for dpd := 0; dpd <= 800; dpd++ {
		b := BucketForDPD(dpd)
		if b.Severity() < prev.Severity() {
			t.Fatalf("DPD %d bucket %s is safer than previous %s", dpd, b, prev)
		}
		prev = b
	}
}

func TestClassify_IgnoresTimeOfDay(t *testing.T) {
	t.Parallel()

	due := time.Date(2026, 3, 9, 23, 55, 0, 0, time.UTC)
	entries := []models.ScheduleEntry{{DueDate: due, Status: models.EMIPending}}
	c := Classify(asOf, entries)
	if c.DPD != 1 {
		t.Errorf("Expected 1 whole day past due, got %d", c.DPD)
	}
}
