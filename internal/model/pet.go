package model

import "time"

// Lost-pet post status values. The frontend submits "0" on creation and the
// owner flips the post to closed once the pet is found.
const (
	StatusOpen   = 0
	StatusClosed = 1
)

// LostPetPost is a missing-animal posting created by a pet owner.
//
// UserNum is the owner key — mutation and deletion compare it against the
// authenticated caller. PhotoURL points at the public object-storage copy of
// the uploaded photo and is empty when the owner submitted no photo (or the
// upload degraded, see service.PetService.Create).
type LostPetPost struct {
	ID           int64     `json:"id"`
	UserNum      int64     `json:"userNum"`
	PetName      string    `json:"petName"`
	Species      string    `json:"species"`
	Gender       string    `json:"petGender"`
	Age          string    `json:"petAge"`
	Features     string    `json:"features"`
	LostDate     string    `json:"lostDate"`
	LostLocation string    `json:"lostLocation"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	Contact      string    `json:"contactNumber"`
	PhotoURL     string    `json:"photoUrl"`
	Status       int       `json:"status"`
	NotifyOnSeen bool      `json:"notifyOnSeen"` // subscribe to sighting-match notifications
	CreatedAt    time.Time `json:"createdAt"`
}

// SightingReport is a community submission about an animal seen in the wild.
// Unlike lost-pet posts, a photo is part of the contract — the map page has
// nothing to render without one.
type SightingReport struct {
	ID             int64     `json:"id"`
	UserNum        int64     `json:"userNum"`
	Title          string    `json:"title"`
	Species        string    `json:"species"`
	ReportDate     string    `json:"reportDate"`
	ReportLocation string    `json:"reportLocation"`
	Lat            float64   `json:"lat"`
	Lon            float64   `json:"lon"`
	Content        string    `json:"content"`
	Contact        string    `json:"contact"`
	PhotoURL       string    `json:"photoUrl"`
	CreatedAt      time.Time `json:"createdAt"`
}
