package schedule

// Day is a weekday key of the fixed weekly grid.
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"

	// SlotsPerDay is the fixed number of session slots per day.
	SlotsPerDay = 5
)

// Days lists the grid's weekdays in order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

// TimeSlot describes one of the 5 daily session slots. Each slot covers an
// early and a late 20-minute session.
type TimeSlot struct {
	Label string `json:"label"`
	Early string `json:"early"`
	Late  string `json:"late"`
}

// TimeSlots are the cabinet's fixed session times.
var TimeSlots = [SlotsPerDay]TimeSlot{
	{Label: "I", Early: "08:00 - 08:20", Late: "08:20 - 08:40"},
	{Label: "II", Early: "08:45 - 09:05", Late: "09:05 - 09:25"},
	{Label: "III", Early: "09:40 - 10:00", Late: "10:00 - 10:20"},
	{Label: "IV", Early: "10:25 - 10:45", Late: "10:45 - 11:05"},
	{Label: "V", Early: "11:10 - 11:30", Late: "11:30 - 11:50"},
}

// Grid is the full weekly schedule: per day, SlotsPerDay cells of ordered
// student ids. A student appears at most once per cell.
type Grid map[Day][][]string

// NewGrid returns an empty 5×5 grid with every cell initialized.
func NewGrid() Grid {
	g := make(Grid, len(Days))
	for _, day := range Days {
		cells := make([][]string, SlotsPerDay)
		for i := range cells {
			cells[i] = []string{}
		}
		g[day] = cells
	}
	return g
}

// ValidDay reports whether d is one of the grid's weekdays.
func ValidDay(d Day) bool {
	for _, day := range Days {
		if day == d {
			return true
		}
	}
	return false
}

// ValidSlot reports whether idx addresses one of the daily slots.
func ValidSlot(idx int) bool {
	return 0 <= idx && idx < SlotsPerDay
}

// Sessions counts all student assignments in the grid.
func (g Grid) Sessions() int {
	var n int
	for _, cells := range g {
		for _, cell := range cells {
			n += len(cell)
		}
	}
	return n
}
