package models

import "time"

// Card is a route card, or a group card holding child cards.
// A group card has no operations; its status is derived from its children.
type Card struct {
	ID              string        `json:"id"`
	Barcode         string        `json:"barcode"`
	Name            string        `json:"name"`
	OrderNo         string        `json:"orderNo"`
	ContractNumber  string        `json:"contractNumber"`
	Desc            string        `json:"desc"`
	Drawing         string        `json:"drawing"`
	Material        string        `json:"material"`
	Quantity        Quantity      `json:"quantity"`
	UseItemList     bool          `json:"useItemList"`
	Status          Status        `json:"status"`
	Archived        bool          `json:"archived"`
	IsGroup         bool          `json:"isGroup,omitempty"`
	GroupID         string        `json:"groupId,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	Operations      []*Operation  `json:"operations"`
	Attachments     []*Attachment `json:"attachments"`
	Logs            []LogEntry    `json:"logs"`
	InitialSnapshot *Card         `json:"initialSnapshot,omitempty"`
}

// FindOperation returns the operation with the given id or op code.
func (c *Card) FindOperation(ref string) *Operation {
	for _, op := range c.Operations {
		if op.ID == ref {
			return op
		}
	}
	for _, op := range c.Operations {
		if ref != "" && op.OpCode == ref {
			return op
		}
	}
	return nil
}

// LogEntry is one append-only audit record. Values are stored as strings.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"ts"`
	Action    string    `json:"action"`
	Object    string    `json:"object"`
	Field     string    `json:"field,omitempty"`
	TargetID  string    `json:"targetId,omitempty"`
	OldValue  string    `json:"oldValue"`
	NewValue  string    `json:"newValue"`
	Actor     string    `json:"actor,omitempty"`
}

// Attachment is a file stored inline with its card as a data URL.
type Attachment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Size      int64     `json:"size"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
