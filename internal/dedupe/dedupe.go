package dedupe

// Package dedupe provides shared singleflight groups used to collapse
// concurrent requests that must run at most once per key. Pack opens and
// battle starts are deduplicated per user subject so a double-clicked
// button cannot grant two packs or spawn two sessions.

import "golang.org/x/sync/singleflight"

// PackGroup deduplicates pack-open requests keyed by user subject.
var PackGroup singleflight.Group

// BattleGroup deduplicates battle-start requests keyed by user subject.
var BattleGroup singleflight.Group
