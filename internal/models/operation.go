package models

import (
	"fmt"
	"time"
)

// MaxAdditionalExecutors bounds Operation.AdditionalExecutors.
const MaxAdditionalExecutors = 2

// MaxCommentLength bounds Operation.Comment, in characters.
const MaxCommentLength = 40

// Operation is one step of a card's route.
type Operation struct {
	ID                  string     `json:"id"`
	OpID                string     `json:"opId"`
	OpCode              string     `json:"opCode"`
	OpName              string     `json:"opName"`
	AutoCode            bool       `json:"autoCode"`
	CenterID            string     `json:"centerId"`
	CenterName          string     `json:"centerName"`
	Executor            string     `json:"executor"`
	AdditionalExecutors []string   `json:"additionalExecutors"`
	PlannedMinutes      int        `json:"plannedMinutes"`
	Quantity            Quantity   `json:"quantity"`
	Order               int        `json:"order"`
	Status              Status     `json:"status"`
	FirstStartedAt      *time.Time `json:"firstStartedAt"`
	StartedAt           *time.Time `json:"startedAt"`
	LastPausedAt        *time.Time `json:"lastPausedAt"`
	FinishedAt          *time.Time `json:"finishedAt"`
	ElapsedSeconds      *float64   `json:"elapsedSeconds"`
	ActualSeconds       *float64   `json:"actualSeconds"`
	Comment             string     `json:"comment"`
	GoodCount           int        `json:"goodCount"`
	ScrapCount          int        `json:"scrapCount"`
	HoldCount           int        `json:"holdCount"`
	Items               []*Item    `json:"items"`
}

// Label renders "[code] name" for logs and listings.
func (o *Operation) Label() string {
	switch {
	case o.OpCode != "" && o.OpName != "":
		return fmt.Sprintf("[%s] %s", o.OpCode, o.OpName)
	case o.OpName != "":
		return o.OpName
	default:
		return o.OpCode
	}
}

// FindItem returns the item with the given id, or nil.
func (o *Operation) FindItem(id string) *Item {
	for _, it := range o.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Item is one unit tracked individually in per-item mode. Quantity is always 1.
type Item struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	GoodCount  int    `json:"goodCount"`
	ScrapCount int    `json:"scrapCount"`
	HoldCount  int    `json:"holdCount"`
}

// Seconds returns a pointer to v, for the optional time fields.
func Seconds(v float64) *float64 { return &v }

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time { return &t }
