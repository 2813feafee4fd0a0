package models

import "time"

// TripEvent is a single scheduled item inside a day plan.
type TripEvent struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Time        string  `json:"time"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Cost        float64 `json:"cost"`
	Duration    string  `json:"duration"`
}

// TripDay groups the events of one itinerary day.
type TripDay struct {
	Day       int         `json:"day"`
	Date      string      `json:"date"`
	Title     string      `json:"title"`
	Events    []TripEvent `json:"events"`
	TotalCost float64     `json:"totalCost"`
}

// BudgetBreakdown splits spending by category.
type BudgetBreakdown struct {
	Food     float64 `json:"food"`
	Activity float64 `json:"activity"`
	Travel   float64 `json:"travel"`
}

// TripBudget tracks the planned budget and what the itinerary spends.
type TripBudget struct {
	Currency  string          `json:"currency"`
	Total     float64         `json:"total"`
	Spent     float64         `json:"spent"`
	Breakdown BudgetBreakdown `json:"breakdown"`
}

// TripLog is one line of trip change history.
type TripLog struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Trip is the canonical trip document.
type Trip struct {
	ID          string      `json:"id" db:"id"`
	UserID      string      `json:"userId" db:"user_id"`
	Destination string      `json:"destination" db:"destination"`
	Title       string      `json:"title" db:"title"`
	Summary     string      `json:"summary" db:"summary"`
	Duration    string      `json:"duration"`
	TotalBudget float64     `json:"totalBudget"`
	Currency    string      `json:"currency"`
	Days        []TripDay   `json:"days" db:"days"`
	Budget      *TripBudget `json:"budget,omitempty" db:"budget"`
	Logs        []TripLog   `json:"logs" db:"logs"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// SpentTotal sums the day totals of the itinerary.
func (t *Trip) SpentTotal() float64 {
	var total float64
	for _, d := range t.Days {
		total += d.TotalCost
	}
	return total
}
