package models

// Clone returns a deep copy of the card, including logs and snapshot.
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Operations = make([]*Operation, 0, len(c.Operations))
	for _, op := range c.Operations {
		cp.Operations = append(cp.Operations, op.Clone())
	}
	cp.Attachments = make([]*Attachment, 0, len(c.Attachments))
	for _, a := range c.Attachments {
		ac := *a
		cp.Attachments = append(cp.Attachments, &ac)
	}
	cp.Logs = append([]LogEntry(nil), c.Logs...)
	cp.InitialSnapshot = c.InitialSnapshot.Clone()
	return &cp
}

// Clone returns a deep copy of the operation.
func (o *Operation) Clone() *Operation {
	if o == nil {
		return nil
	}
	cp := *o
	cp.AdditionalExecutors = append([]string(nil), o.AdditionalExecutors...)
	cp.FirstStartedAt = clonePtr(o.FirstStartedAt)
	cp.StartedAt = clonePtr(o.StartedAt)
	cp.LastPausedAt = clonePtr(o.LastPausedAt)
	cp.FinishedAt = clonePtr(o.FinishedAt)
	cp.ElapsedSeconds = clonePtr(o.ElapsedSeconds)
	cp.ActualSeconds = clonePtr(o.ActualSeconds)
	cp.Items = make([]*Item, 0, len(o.Items))
	for _, it := range o.Items {
		ic := *it
		cp.Items = append(cp.Items, &ic)
	}
	return &cp
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	cp := &Collection{
		Cards:   make([]*Card, 0, len(c.Cards)),
		Ops:     make([]*OpCatalogEntry, 0, len(c.Ops)),
		Centers: make([]*WorkCenter, 0, len(c.Centers)),
	}
	for _, card := range c.Cards {
		cp.Cards = append(cp.Cards, card.Clone())
	}
	for _, op := range c.Ops {
		oc := *op
		cp.Ops = append(cp.Ops, &oc)
	}
	for _, wc := range c.Centers {
		wcc := *wc
		cp.Centers = append(cp.Centers, &wcc)
	}
	if c.Users != nil {
		cp.Users = make([]*User, 0, len(c.Users))
		for _, u := range c.Users {
			uc := *u
			cp.Users = append(cp.Users, &uc)
		}
	}
	return cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
