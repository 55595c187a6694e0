package export

// Table is the neutral shape both exporters render.
type Table struct {
	Title    string
	Subtitle []string
	Headers  []string
	Rows     [][]string
}
