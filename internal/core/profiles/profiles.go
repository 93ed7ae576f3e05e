package profiles

import "github.com/JonMunkholm/movieloader/internal/core"

// registerStandard covers exports with PascalCase headers:
// Title,ReleaseYear,Genre,Rating,Director,Actors
func registerStandard() {
	core.Register(core.Profile{
		Key:   "standard",
		Label: "PascalCase headers",
		Order: 0,
		Columns: map[string]core.Field{
			"Title":       core.FieldTitle,
			"ReleaseYear": core.FieldReleaseYear,
			"Genre":       core.FieldGenre,
			"Rating":      core.FieldRating,
			"Director":    core.FieldDirector,
			"Actors":      core.FieldActors,
		},
	})
}

// registerSnake covers spreadsheets with lower snake_case headers.
func registerSnake() {
	core.Register(core.Profile{
		Key:   "snake",
		Label: "snake_case headers",
		Order: 1,
		Columns: map[string]core.Field{
			"title":        core.FieldTitle,
			"release_year": core.FieldReleaseYear,
			"genre":        core.FieldGenre,
			"rating":       core.FieldRating,
			"director":     core.FieldDirector,
			"actors":       core.FieldActors,
		},
	})
}
