package input

import (
	"fmt"
	"sort"
	"strings"
)

// KeyMap binds key names to intents.
type KeyMap map[string]Intent

// DefaultKeyMap returns the standard presenter bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		"right":  IntentNext,
		"l":      IntentNext,
		"n":      IntentNext,
		"pgdown": IntentNext,

		"left":  IntentPrevious,
		"h":     IntentPrevious,
		"p":     IntentPrevious,
		"pgup":  IntentPrevious,

		" ":     IntentAdvance,
		"space": IntentAdvance,
		"enter": IntentAdvance,
		"j":     IntentAdvance,
		"down":  IntentAdvance,
	}
}

// Lookup returns the intent bound to key.
func (k KeyMap) Lookup(key string) (Intent, bool) {
	intent, ok := k[key]
	return intent, ok
}

// Keys returns the keys bound to intent, sorted.
func (k KeyMap) Keys(intent Intent) []string {
	var keys []string
	for key, in := range k {
		if in == intent && key != " " {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// ParseBindings overrides bindings from "intent=key1,key2" specs.
func (k KeyMap) ParseBindings(specs []string) error {
	for _, binding := range specs {
		name, keys, ok := strings.Cut(binding, "=")
		if !ok {
			return fmt.Errorf("invalid key binding %q: want intent=key[,key]", binding)
		}
		intent, err := ParseIntent(name)
		if err != nil {
			return fmt.Errorf("invalid key binding %q: %w", binding, err)
		}
		for _, key := range strings.Split(keys, ",") {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			k[key] = intent
		}
	}
	return nil
}
