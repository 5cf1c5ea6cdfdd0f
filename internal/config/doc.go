// Package config provides the configuration for listsync.
//
// Settings are loaded in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority (applied by cmd)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← LISTSYNC_STORE_REPLACE_MODE=naive
//	├─────────────────────────────┤
//	│  2. Config Files            │  ← listsync.toml / listsync.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Each source is read into a nested map by the loader sub-package, the maps
// are deep-merged, and the result is decoded into a typed Config.
//
// # Basic Usage
//
//	cfg, err := config.Load("listsync.toml")
//	if err != nil {
//	    return err
//	}
//	logger, err := cfg.Logger(os.Stderr)
//	if err != nil {
//	    return err
//	}
//	s := store.New(matcher, cfg.StoreOptions(store.WithLogger(logger))...)
//
// # Settings
//
//	[store]
//	name = "people"            # log name of the store
//	replaceMode = "smart"      # smart | naive
//	absentItems = "allow"      # allow | reject
//	detectMoves = true
//	maxEditDistance = 2000     # 0 disables the limit
//
//	[logging]
//	level = "info"             # zerolog level name
//	format = "console"         # console | json
//
//	[watch]
//	delay = "100ms"            # debounce delay for file watching
//
//	[source]
//	idPath = "id"              # gjson path of the item identity
package config
