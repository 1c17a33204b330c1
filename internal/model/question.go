package model

import "time"

// Question is a Q&A thread opener within a class
type Question struct {
	ID         string    `db:"id" json:"id"`
	ClassID    string    `db:"class_id" json:"class_id"`
	AuthorID   string    `db:"author_id" json:"author_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	Title      string    `db:"title" json:"title"`
	Body       string    `db:"body" json:"body"`
	Answers    []Answer  `json:"answers"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Answer replies to a question
type Answer struct {
	ID         string    `db:"id" json:"id"`
	QuestionID string    `db:"question_id" json:"question_id"`
	ClassID    string    `db:"class_id" json:"class_id"`
	AuthorID   string    `db:"author_id" json:"author_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	Body       string    `db:"body" json:"body"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
