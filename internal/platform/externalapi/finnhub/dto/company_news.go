// Package dto defines data transfer objects for the Finnhub API responses.
package dto

// CompanyNews is one element of the /company-news response array.
type CompanyNews struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"` // Unix seconds
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}
