package finance

import "time"

// Installment is one month's share of a contract fee.
type Installment struct {
	Date   time.Time `json:"date"` // first day of the month
	Amount float64   `json:"amount"`
}

// MonthsSpan counts the months a date range touches, inclusive of both
// boundary months: Jan 15 to Mar 2 spans 3 months.
func MonthsSpan(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
}

// ComputeMonthlySchedule prorates a total fee evenly across the months the
// contract spans, one installment dated the 1st of each month. The amount is
// fee divided by the span; the last installment does not absorb the division
// remainder, so the installments may not sum exactly to the fee.
func ComputeMonthlySchedule(start, end time.Time, totalFee float64) []Installment {
	span := MonthsSpan(start, end)
	if span <= 0 {
		return nil
	}
	monthly := totalFee / float64(span)
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]Installment, 0, span)
	for i := 0; i < span; i++ {
		out = append(out, Installment{Date: first.AddDate(0, i, 0), Amount: monthly})
	}
	return out
}
