package domain

// ProcedureRecord is one row of a raw surgical-volume source table.
// Records are immutable once loaded; a reload replaces the whole set.
type ProcedureRecord struct {
	FacilityCode  string `json:"facility_code"`
	FacilityName  string `json:"facility_name,omitempty"`
	District      string `json:"district"`
	Region        string `json:"region"`
	Year          int    `json:"year"`
	Category      string `json:"category,omitempty"`
	Procedures    int64  `json:"procedures"`
	FacilityLevel string `json:"facility_level,omitempty"`
	Ownership     string `json:"ownership,omitempty"`
}

// PopulationEntry is one row of the census population workbook.
type PopulationEntry struct {
	District   string `json:"district"`
	Region     string `json:"region,omitempty"`
	Population int64  `json:"population"`
}

// Facility is one row of the master facility list survey.
type Facility struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	District  string `json:"district"`
	Region    string `json:"region"`
	Level     string `json:"level"`
	Ownership string `json:"ownership,omitempty"`
}
