// Package core provides the business logic for loading and exporting the
// movie catalog.
//
// The package holds all domain logic independent of any transport. The web
// server and the moviectl CLI both drive it through [Service].
//
// # Architecture
//
// The package is organized around a few concepts:
//
//   - Profiles: column naming conventions registered via [Register] that map
//     file headers onto canonical [Field] values.
//   - Reconciler: turns canonical rows into deduplicated directors, movies,
//     actors and movie/actor links.
//   - Projector: flattens the catalog back into one row per movie and actor.
//   - Service: the entry point that ties parsing, profiles, the load limiter
//     and the store together.
//
// # Profiles
//
// Profiles are registered at init time, typically by importing
// internal/core/profiles for its side effect:
//
//	core.Register(core.Profile{
//	    Key:   "standard",
//	    Label: "PascalCase headers",
//	    Columns: map[string]core.Field{
//	        "Title":    core.FieldTitle,
//	        "Director": core.FieldDirector,
//	        // ...
//	    },
//	})
//
// With [ProfileAuto] the first profile whose columns all appear in the
// header is used.
//
// # Reconciliation
//
// Each row runs in its own transaction:
//
//  1. The director is resolved by name, or created
//  2. The movie is resolved by (title, director), or created with the row's
//     year, genre and rating
//  3. Each actor named in the row is resolved by name, or created
//  4. Each movie/actor pair is linked unless already linked
//
// Natural keys are matched exactly. A movie that already exists keeps its
// stored attributes. The first failing row is rolled back and stops the load
// with a [RowError]; rows before it stay committed.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
//   - VAL001-VAL002: Row value errors
//   - FILE001-FILE007: File errors (size, encoding, format)
//   - ING001-ING004: Load errors (profile, concurrency, cancellation)
//
// # Thread Safety
//
// [Service] is safe for concurrent use. The profile registry is guarded by
// a RWMutex. Concurrent loads are bounded by [LoadLimiter].
package core
