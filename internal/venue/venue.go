package venue

// Columns is the ordered output schema shared by every row writer
var Columns = []string{
	"name",
	"description",
	"address",
	"phone",
	"website",
	"opening_hours",
	"source_link",
}

// Candidate represents a venue read off the list article before enrichment
type Candidate struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Address      string `json:"address"`
	OpeningHours string `json:"opening_hours"`
	SourceLink   string `json:"source_link"`
}

// Valid reports whether the candidate carries both a name and a description.
// Candidates failing this check are dropped without logging.
func (c Candidate) Valid() bool {
	return c.Name != "" && c.Description != ""
}

// MissingFields lists the optional fields that did not resolve
func (c Candidate) MissingFields() []string {
	missing := make([]string, 0, 3)
	if c.Address == "" {
		missing = append(missing, "address")
	}
	if c.OpeningHours == "" {
		missing = append(missing, "opening_hours")
	}
	if c.SourceLink == "" {
		missing = append(missing, "source_link")
	}
	return missing
}

// Detail holds contact fields recovered from a venue's own page
type Detail struct {
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Address string `json:"address"`
}

// IsZero reports whether no contact field was recovered
func (d Detail) IsZero() bool {
	return d.Phone == "" && d.Website == "" && d.Address == ""
}

// Row is the final venue record emitted by the pipeline
type Row struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Website      string `json:"website"`
	OpeningHours string `json:"opening_hours"`
	SourceLink   string `json:"source_link"`
}

// Merge combines a candidate with its enrichment detail.
// The detail address only fills a gap; a non-empty candidate address always wins.
func Merge(c Candidate, d Detail) Row {
	address := c.Address
	if address == "" {
		address = d.Address
	}
	return Row{
		Name:         c.Name,
		Description:  c.Description,
		Address:      address,
		Phone:        d.Phone,
		Website:      d.Website,
		OpeningHours: c.OpeningHours,
		SourceLink:   c.SourceLink,
	}
}

// Record returns the row's values in Columns order
func (r Row) Record() []string {
	return []string{
		r.Name,
		r.Description,
		r.Address,
		r.Phone,
		r.Website,
		r.OpeningHours,
		r.SourceLink,
	}
}
