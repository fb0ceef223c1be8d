package model

// Row is one unit of work read from the spreadsheet. Index is the 1-based
// sheet row including the header offset, so the first data row is 2.
type Row struct {
	Index     int
	Phone     string
	Message   string
	Name      string
	ImageURL  string
	Time      string
	Run       string
	HandledBy string
	Status    string
}

// Outcome describes how a single delivery attempt ended.
type Outcome int

const (
	Failed Outcome = iota
	SentTextOnly
	SentWithImage
)

func (o Outcome) String() string {
	switch o {
	case SentTextOnly:
		return "sent_text"
	case SentWithImage:
		return "sent_with_image"
	default:
		return "failed"
	}
}

// PassSummary aggregates the result of one full pass over a sheet.
type PassSummary struct {
	Sent    int
	Failed  int
	Skipped int
	Total   int
}
