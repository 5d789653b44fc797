package http

import (
	"time"

	"github.com/n0madsky/profile-api-assignment/internal/contracts"
	"github.com/n0madsky/profile-api-assignment/internal/domain"
)

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func optionalMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func toProfile(p domain.Profile) contracts.Profile {
	return contracts.Profile{
		ID:                   p.ID,
		Email:                p.Email,
		Firstname:            p.Firstname,
		Lastname:             p.Lastname,
		ProductRegistrations: []contracts.ProductRegistration{},
	}
}

func toRegistration(rec domain.ProductRegistrationRecord) contracts.ProductRegistration {
	root := rec.Registration
	out := contracts.ProductRegistration{
		ID:                             root.ID,
		PurchaseDate:                   millis(root.PurchaseDate),
		ExpiryAt:                       optionalMillis(root.ExpiryAt),
		Product:                        contracts.Product{SKU: root.Product},
		SerialCode:                     root.SerialCode,
		AdditionalProductRegistrations: make([]contracts.AdditionalRegistration, 0, len(rec.Children)),
	}
	for _, child := range rec.Children {
		out.AdditionalProductRegistrations = append(out.AdditionalProductRegistrations, contracts.AdditionalRegistration{
			ID:           child.ID,
			PurchaseDate: millis(child.PurchaseDate),
			ExpiryAt:     optionalMillis(child.ExpiryAt),
			Product:      contracts.Product{SKU: child.Product},
			SerialCode:   child.SerialCode,
		})
	}
	return out
}

func toRegistrations(recs []domain.ProductRegistrationRecord) []contracts.ProductRegistration {
	out := make([]contracts.ProductRegistration, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRegistration(rec))
	}
	return out
}
