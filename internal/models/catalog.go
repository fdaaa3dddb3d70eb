package models

// OpCatalogEntry is a reusable operation definition.
type OpCatalogEntry struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Desc    string `json:"desc"`
	RecTime int    `json:"recTime"`
}

// WorkCenter is a place where operations are carried out.
type WorkCenter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// User is an account that can log in to the HTTP API.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	PasswordHash string `json:"passwordHash"`
	PasswordSalt string `json:"passwordSalt"`
}

// Collection is the whole persisted document.
type Collection struct {
	Cards   []*Card           `json:"cards"`
	Ops     []*OpCatalogEntry `json:"ops"`
	Centers []*WorkCenter     `json:"centers"`
	Users   []*User           `json:"users,omitempty"`
}

// FindCard returns the card with the given id or barcode.
func (c *Collection) FindCard(ref string) *Card {
	for _, card := range c.Cards {
		if card.ID == ref {
			return card
		}
	}
	for _, card := range c.Cards {
		if ref != "" && card.Barcode == ref {
			return card
		}
	}
	return nil
}

// FindOp returns the catalog entry with the given id, code or name.
func (c *Collection) FindOp(ref string) *OpCatalogEntry {
	for _, op := range c.Ops {
		if op.ID == ref || op.Code == ref {
			return op
		}
	}
	for _, op := range c.Ops {
		if ref != "" && op.Name == ref {
			return op
		}
	}
	return nil
}

// FindCenter returns the work center with the given id or name.
func (c *Collection) FindCenter(ref string) *WorkCenter {
	for _, wc := range c.Centers {
		if wc.ID == ref || (ref != "" && wc.Name == ref) {
			return wc
		}
	}
	return nil
}
