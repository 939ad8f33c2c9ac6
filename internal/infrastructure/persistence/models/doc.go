// Package models contains GORM persistence models for the rental store.
// They are kept apart from the domain types so the domain stays free of
// ORM tags; each model carries ToDomain/FromDomain mappers.
package models
