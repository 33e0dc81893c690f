// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"

	"studyhub/internal/models"

	"gorm.io/gorm"
)

// notFound converts gorm.ErrRecordNotFound into a NOT_FOUND AppError and passes other errors through.
func notFound(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}

// authorColumns selects the joined profile display fields with the given fallback name.
func authorColumns(prefix, fallback string) string {
	return "COALESCE(profiles.full_name, '" + fallback + "') AS " + prefix + "_name, " +
		"COALESCE(profiles.avatar_url, '') AS " + prefix + "_avatar"
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
