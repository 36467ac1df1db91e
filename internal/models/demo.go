package models

type Dessert struct {
	Name     string `json:"postre"`
	Rating   int    `json:"rating"`
	IsWidget bool   `json:"is_widget"`
}

type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

type CategoryValue struct {
	Category string `json:"categoria"`
	Value    int    `json:"valor"`
}

type BasicTable struct {
	Columns []string `json:"columns"`
	Rows    [][]int  `json:"rows"`
}

type DemoPanels struct {
	Table     BasicTable      `json:"table"`
	Histogram []HistogramBin  `json:"histogram"`
	Bars      []CategoryValue `json:"bars"`
	Desserts  []Dessert       `json:"desserts"`
	Favorite  string          `json:"favorite"`
}
