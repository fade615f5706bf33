package hiring

import "time"

// Quarters is the number of calendar quarters in a year.
const Quarters = 4

// QuarterOf returns the calendar quarter (1-4) containing month m.
func QuarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}

// QuarterBounds returns the first and last month of quarter q (1-4).
func QuarterBounds(q int) (first, last time.Month) {
	first = time.Month((q-1)*3 + 1)
	return first, first + 2
}

// Add counts one hire in the quarter containing m.
func (q *QuarterlyHires) Add(m time.Month) {
	switch QuarterOf(m) {
	case 1:
		q.Q1++
	case 2:
		q.Q2++
	case 3:
		q.Q3++
	case 4:
		q.Q4++
	}
}
