package records

import (
	"errors"
	"fmt"
)

// ErrMissingField is returned when a record lacks an identifier or a
// required status, stage or market.
var ErrMissingField = errors.New("missing required field")

func missing(kind string, i int, id, field string) error {
	if id == "" {
		return fmt.Errorf("%s #%d: %w: %s", kind, i, ErrMissingField, field)
	}
	return fmt.Errorf("%s %s: %w: %s", kind, id, ErrMissingField, field)
}

// Validate checks that every record carries its identifier, owner and
// enum fields. Enum values themselves are checked while decoding, so only
// absent values are caught here.
func (d *Dataset) Validate() error {
	var errs []error
	for i, c := range d.Clients {
		switch {
		case c.ID == "":
			errs = append(errs, missing("client", i, c.ID, "id"))
		case c.Status == "":
			errs = append(errs, missing("client", i, c.ID, "status"))
		case c.Market == "":
			errs = append(errs, missing("client", i, c.ID, "market"))
		}
	}
	for i, del := range d.Deliverables {
		switch {
		case del.ID == "":
			errs = append(errs, missing("deliverable", i, del.ID, "id"))
		case del.ClientID == "":
			errs = append(errs, missing("deliverable", i, del.ID, "client_id"))
		case del.Status == "":
			errs = append(errs, missing("deliverable", i, del.ID, "status"))
		}
	}
	for i, inv := range d.Invoices {
		switch {
		case inv.ID == "":
			errs = append(errs, missing("invoice", i, inv.ID, "id"))
		case inv.ClientID == "":
			errs = append(errs, missing("invoice", i, inv.ID, "client_id"))
		case inv.Status == "":
			errs = append(errs, missing("invoice", i, inv.ID, "status"))
		}
	}
	for i, t := range d.Tasks {
		switch {
		case t.ID == "":
			errs = append(errs, missing("task", i, t.ID, "id"))
		case t.ClientID == "" && t.DeliverableID == "":
			errs = append(errs, missing("task", i, t.ID, "client_id or deliverable_id"))
		case t.Status == "":
			errs = append(errs, missing("task", i, t.ID, "status"))
		}
	}
	for i, ci := range d.Content {
		switch {
		case ci.ID == "":
			errs = append(errs, missing("content item", i, ci.ID, "id"))
		case ci.ClientID == "":
			errs = append(errs, missing("content item", i, ci.ID, "client_id"))
		case ci.Stage == "":
			errs = append(errs, missing("content item", i, ci.ID, "stage"))
		}
	}
	return errors.Join(errs...)
}
