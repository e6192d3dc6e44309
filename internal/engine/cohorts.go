package engine

import (
	"math"
	"sort"

	"github.com/growtheasy/metrics-manager/internal/entity"
)

// cohortBucket groups the customers acquired in one calendar month.
type cohortBucket struct {
	size     int
	retained map[string]struct{}
}

// buildCohorts buckets customers into acquisition-month cohorts and marks
// a customer retained for its origin cohort when it placed at least one
// order in a strictly later month. Cohorts are reported sorted by month
// ascending.
func buildCohorts(orders []entity.Order, st customerStats) []entity.CohortRetention {
	if len(st.aggregates) == 0 {
		return nil
	}

	firstMonth := make(map[string]string, len(st.aggregates))
	buckets := make(map[string]*cohortBucket)
	for id, a := range st.aggregates {
		month := a.firstOrder.Format("2006-01")
		firstMonth[id] = month
		b, ok := buckets[month]
		if !ok {
			b = &cohortBucket{retained: make(map[string]struct{})}
			buckets[month] = b
		}
		b.size++
	}

	// second pass over orders: any order in a later month than the
	// customer's cohort month marks that customer retained
	for _, o := range orders {
		if !o.CustomerID.Valid || o.CustomerID.String == "" {
			continue
		}
		month, ok := firstMonth[o.CustomerID.String]
		if !ok {
			continue
		}
		if o.CreatedAt.Format("2006-01") > month {
			buckets[month].retained[o.CustomerID.String] = struct{}{}
		}
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]entity.CohortRetention, 0, len(months))
	for _, m := range months {
		b := buckets[m]
		rate := 0.0
		if b.size > 0 {
			rate = math.Round(float64(len(b.retained))/float64(b.size)*1000) / 10
		}
		out = append(out, entity.CohortRetention{
			CohortMonth: m,
			Size:        b.size,
			Retained:    len(b.retained),
			Rate:        rate,
		})
	}
	return out
}

// topChannel tallies orders by acquisition channel and returns the channel
// with the highest order count. Ties break in favor of the channel first
// encountered while iterating the normalized feed; callers must not rely
// on a particular winner across reorderings of the input.
func topChannel(orders []entity.Order) string {
	counts := make(map[string]int)
	var seen []string
	for _, o := range orders {
		ch := o.Channel()
		if _, ok := counts[ch]; !ok {
			seen = append(seen, ch)
		}
		counts[ch]++
	}

	top := ""
	best := 0
	for _, ch := range seen {
		if counts[ch] > best {
			top = ch
			best = counts[ch]
		}
	}
	return top
}
