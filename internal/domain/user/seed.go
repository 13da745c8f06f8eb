package user

import (
	"context"
	"time"
)

var seedCreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// SeedUsers returns the records loaded into an empty store at startup.
func SeedUsers() []User {
	return []User{
		{Name: "Wes", Email: "wes@example.com", Department: "Engineering", CreatedAt: seedCreatedAt},
		{Name: "John", Email: "john@example.com", Department: "Marketing", CreatedAt: seedCreatedAt},
		{Name: "Jane", Email: "jane@example.com", Department: "HR", CreatedAt: seedCreatedAt},
	}
}

// Seed adds SeedUsers to repo when it holds no users. It reports how many were added.
func Seed(ctx context.Context, repo Repository) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	added := 0
	for _, u := range SeedUsers() {
		if _, err := repo.Add(ctx, u); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
