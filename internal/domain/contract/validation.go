package contract

import "github.com/google/uuid"

// ValidateBasicInfo checks the header fields. When refs is not nil, the
// referenced client, event and location must exist.
func ValidateBasicInfo(h Header, refs *ReferenceData) ValidationErrors {
	errs := make(ValidationErrors)

	if h.ClientID == uuid.Nil {
		errs.Add(string(HeaderFieldClientID), "Client is required")
	} else if refs != nil {
		if _, ok := refs.FindClient(h.ClientID); !ok {
			errs.Add(string(HeaderFieldClientID), "Selected client does not exist")
		}
	}

	if refs != nil && h.EventID != nil {
		if _, ok := refs.FindEvent(*h.EventID); !ok {
			errs.Add(string(HeaderFieldEventID), "Selected event does not exist")
		}
	}
	if refs != nil && h.LocationID != nil {
		if _, ok := refs.FindLocation(*h.LocationID); !ok {
			errs.Add(string(HeaderFieldLocationID), "Selected location does not exist")
		}
	}

	if !h.Status.IsValid() {
		errs.Add(string(HeaderFieldStatus), "Invalid status")
	}

	if h.PickupDate.IsZero() {
		errs.Add(string(HeaderFieldPickupDate), "Pickup date is required")
	}
	if h.ReturnDate.IsZero() {
		errs.Add(string(HeaderFieldReturnDate), "Return date is required")
	}

	if !h.PickupDate.IsZero() && !h.ReturnDate.IsZero() && !h.ReturnDate.After(h.PickupDate) {
		errs.Add(string(HeaderFieldReturnDate), "Return date must be after the pickup date")
	}
	if h.FittingDate != nil && !h.PickupDate.IsZero() && h.FittingDate.After(h.PickupDate) {
		errs.Add(string(HeaderFieldFittingDate), "Fitting date must not be after the pickup date")
	}

	return errs
}

// ValidateItems checks the items list. When options is not nil, every
// product must be one of the offered options.
func ValidateItems(items *ItemsLedger, options ProductOptions) ValidationErrors {
	errs := make(ValidationErrors)

	if items.Len() == 0 {
		errs.Add("items", "Add at least one item to the contract")
		return errs
	}

	for i, item := range items.items {
		switch {
		case item.ProductID == uuid.Nil:
			errs.Add(ItemKey(i, ItemFieldProductID), "Select a product")
		case options != nil && !options.Contains(item.ProductID):
			errs.Add(ItemKey(i, ItemFieldProductID), "Selected product is not available")
		}
		if item.Quantity <= 0 {
			errs.Add(ItemKey(i, ItemFieldQuantity), "Quantity must be greater than zero")
		}
		if !item.UnitValue.IsPositive() {
			errs.Add(ItemKey(i, ItemFieldUnitValue), "Unit value must be greater than zero")
		}
	}
	return errs
}
