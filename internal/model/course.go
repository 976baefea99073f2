// Package model defines the data structures used throughout the application.
// Entities mirror the relational tables; CourseStatistic is derived and never stored.
package model

import "time"

// Course is a purchasable course published by exactly one instructor.
//
// Prices are integer minor units (cents) so that sums and comparisons stay exact.
type Course struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	PriceCents   int64     `json:"priceCents"`
	InstructorID string    `json:"instructorId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Review is a learner's rating of a course. Several reviews per course are allowed.
type Review struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"courseId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	MinRating = 1
	MaxRating = 5
)

// Purchase records that a user bought a course. (UserID, CourseID) is unique.
type Purchase struct {
	UserID    string    `json:"userId"`
	CourseID  string    `json:"courseId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PurchaseCount is one row of the purchases grouped by course.
type PurchaseCount struct {
	CourseID string
	Count    int
}

// SavedCourse is a learner's bookmark. (UserID, CourseID) is unique; the joined
// Course is filled in by list queries.
type SavedCourse struct {
	UserID    string    `json:"userId"`
	CourseID  string    `json:"courseId"`
	CreatedAt time.Time `json:"savedAt"`
	Course    Course    `json:"course"`
}

// CourseStatistic is the per-course analytics record shown on the admin dashboard.
//
// AverageRating is nil when the course has no reviews. It encodes as JSON null,
// never as 0, so "unrated" and "rated zero" cannot be confused.
type CourseStatistic struct {
	CourseID      string   `json:"courseId"`
	Title         string   `json:"courseTitle"`
	PurchaseCount int      `json:"purchaseCount"`
	AverageRating *float64 `json:"avgRating"`
	PriceCents    int64    `json:"coursePriceCents"`
}
