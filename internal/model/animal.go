package model

import "time"

// ShelterAnimal is a rescued animal listed on the public adoption pages.
// Rows are written by an external crawler; this service only reads them.
type ShelterAnimal struct {
	ID             int64     `json:"id"`
	DesertionNo    string    `json:"desertionNo"`
	Species        string    `json:"species"`
	Breed          string    `json:"breed"`
	Sex            string    `json:"sex"`
	RescueDate     string    `json:"rescueDate"`
	RescueLocation string    `json:"rescueLocation"`
	ShelterName    string    `json:"shelterName"`
	ShelterPhone   string    `json:"shelterPhone"`
	ImageURL       string    `json:"imageUrl"`
	CreatedAt      time.Time `json:"createdAt"`
}
