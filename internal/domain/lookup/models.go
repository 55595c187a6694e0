package lookup

// Item is one option of a reference list. Positions come back with a title
// instead of a name; both decode into Name.
type Item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type wireItem struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

func (w wireItem) item() Item {
	name := w.Name
	if name == "" {
		name = w.Title
	}
	return Item{ID: w.ID, Name: name}
}

// Set bundles every reference list a placement form needs.
type Set struct {
	Departments     []Item `json:"departments"`
	Positions       []Item `json:"positions"`
	JobLevels       []Item `json:"jobLevels"`
	EmploymentTypes []Item `json:"employmentTypes"`
	TimeTypes       []Item `json:"timeTypes"`
}

// NameOf returns the display name for id, or an empty string.
func NameOf(items []Item, id int) string {
	for _, it := range items {
		if it.ID == id {
			return it.Name
		}
	}
	return ""
}
