// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package database

import (
	"github.com/musehub-io/musehub/internal/recommend"
)

// DB is the production recommend.Store: the engine reads ratings,
// interactions, and ranked content straight from DuckDB.
var _ recommend.Store = (*DB)(nil)
