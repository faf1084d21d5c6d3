package plan

// The cabinet works with 6 fixed plan slots; each holds an ordered activity list.
// An activity's identity for progress purposes is its index within the list.
const (
	MinPlanType = 1
	MaxPlanType = 6
)

// Activity is one line of a plan template.
type Activity struct {
	PlanType int    `json:"plan_type"`
	Index    int    `json:"order_index"`
	Text     string `json:"activity_text"`
}

// ValidPlanType reports whether pt addresses one of the 6 fixed plan slots.
func ValidPlanType(pt int) bool {
	return MinPlanType <= pt && pt <= MaxPlanType
}

// Texts flattens activities to their ordered text lines.
func Texts(activities []Activity) []string {
	texts := make([]string, 0, len(activities))
	for _, a := range activities {
		texts = append(texts, a.Text)
	}
	return texts
}
